package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/GriffinCanCode/weaverest/internal/codec"
	"github.com/GriffinCanCode/weaverest/internal/infrastructure/monitoring"
)

// TimeFormat renders mtime and ctime: UTC, ISO-8601, second resolution.
const TimeFormat = "2006-01-02T15:04:05"

// Default permission bits for PUT when the request carries no mode.
const (
	DefaultFileMode os.FileMode = 0o664
	DefaultDirMode  os.FileMode = 0o775
)

// ServerConfig is the process-wide view of the served tree. It is built once
// at startup and never modified.
type ServerConfig struct {
	Root     string
	Encoding string
	MaxSize  int64

	codec *codec.Codec
}

// NewServerConfig canonicalizes root and resolves the encoding. Root must be
// an existing directory.
func NewServerConfig(root, encoding string, maxSize int64) (*ServerConfig, error) {
	c, err := codec.Lookup(encoding)
	if err != nil {
		return nil, fmt.Errorf("invalid encoding: %w", err)
	}
	if maxSize < 0 {
		return nil, fmt.Errorf("invalid max size %d", maxSize)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory", root)
	}

	return &ServerConfig{
		Root:     abs,
		Encoding: c.Name(),
		MaxSize:  maxSize,
		codec:    c,
	}, nil
}

// Codec returns the codec for the configured encoding.
func (c *ServerConfig) Codec() *codec.Codec {
	return c.codec
}

// FileType names the kind of filesystem object.
type FileType string

const (
	TypeFile        FileType = "file"
	TypeDirectory   FileType = "directory"
	TypeSymlink     FileType = "symlink"
	TypeCharDevice  FileType = "char-device"
	TypeBlockDevice FileType = "block-device"
	TypeNamedPipe   FileType = "named-pipe"
	TypeSocket      FileType = "socket"
	TypeUnknown     FileType = "unknown"
)

// FileNode is the metadata and content of one object, derived from fstat on
// an open handle.
type FileNode struct {
	Type  FileType
	Mode  string
	UID   uint32
	GID   uint32
	MTime time.Time
	CTime time.Time
	Size  int64

	// Data holds file content; TooLong is set instead when Size exceeds the
	// configured maximum.
	Data    codec.Text
	TooLong bool

	// Children holds directory entry names in code point order.
	Children []codec.Text
}

// MarshalJSON renders the GET response body.
func (n *FileNode) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"type":  n.Type,
		"mode":  n.Mode,
		"uid":   n.UID,
		"gid":   n.GID,
		"mtime": n.MTime.UTC().Format(TimeFormat),
		"ctime": n.CTime.UTC().Format(TimeFormat),
	}

	switch n.Type {
	case TypeFile:
		out["size"] = n.Size
		if n.TooLong {
			out["data"] = nil
			out["message"] = "file too long"
		} else {
			data := n.Data
			if data == nil {
				data = codec.Text{}
			}
			out["data"] = data
		}
	case TypeDirectory:
		children := n.Children
		if children == nil {
			children = []codec.Text{}
		}
		out["children"] = children
	}

	return json.Marshal(out)
}

// AppendRequest is the POST body.
type AppendRequest struct {
	Data codec.Text `json:"data"`
}

// PutRequest is the PUT body. Zero values mean: regular file, default mode,
// empty content.
type PutRequest struct {
	Directory bool       `json:"directory"`
	Mode      *string    `json:"mode,omitempty"`
	Data      codec.Text `json:"data"`
}

// FileMode returns the requested permission bits or the default for the
// object type.
func (r *PutRequest) FileMode() (os.FileMode, error) {
	if r.Mode == nil {
		if r.Directory {
			return DefaultDirMode, nil
		}
		return DefaultFileMode, nil
	}
	bits, err := strconv.ParseUint(*r.Mode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", *r.Mode, err)
	}
	return os.FileMode(bits) & os.ModePerm, nil
}

// Executor performs the filesystem side of each request against a
// ServerConfig.
type Executor struct {
	config  *ServerConfig
	metrics *monitoring.Metrics
}

// NewExecutor creates an executor for cfg.
func NewExecutor(cfg *ServerConfig) *Executor {
	return &Executor{config: cfg}
}

// WithMetrics records transferred bytes into m.
func (e *Executor) WithMetrics(m *monitoring.Metrics) *Executor {
	e.metrics = m
	return e
}

// Config returns the executor's server configuration.
func (e *Executor) Config() *ServerConfig {
	return e.config
}

func (e *Executor) recordBytes(direction string, n int) {
	if e.metrics != nil && n > 0 {
		e.metrics.AddFSBytes(direction, n)
	}
}
