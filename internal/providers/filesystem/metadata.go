package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/GriffinCanCode/weaverest/internal/shared/apperrors"
)

// Read opens fullPath and describes it. Regular files carry their content
// unless larger than MaxSize; directories carry their entry names.
func (e *Executor) Read(fullPath string) (*FileNode, error) {
	// O_NONBLOCK keeps a FIFO without writers from stalling the open.
	f, err := os.OpenFile(fullPath, os.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, apperrors.FromOS(err)
	}
	defer f.Close()

	st, err := fstat(f)
	if err != nil {
		return nil, apperrors.FromOS(err)
	}
	node := nodeFromStat(st)

	switch node.Type {
	case TypeFile:
		if node.Size > e.config.MaxSize {
			node.TooLong = true
			return node, nil
		}
		raw, err := readAll(f, node.Size)
		if err != nil {
			return nil, apperrors.FromOS(err)
		}
		e.recordBytes("read", len(raw))
		node.Data = e.config.codec.Decode(raw)
	case TypeDirectory:
		children, err := e.listChildren(f)
		if err != nil {
			return nil, apperrors.FromOS(err)
		}
		node.Children = children
	}

	return node, nil
}

// fstat stats the open descriptor without switching it to blocking mode.
func fstat(f *os.File) (*unix.Stat_t, error) {
	conn, err := f.SyscallConn()
	if err != nil {
		return nil, err
	}
	var st unix.Stat_t
	var statErr error
	if err := conn.Control(func(fd uintptr) {
		statErr = unix.Fstat(int(fd), &st)
	}); err != nil {
		return nil, err
	}
	if statErr != nil {
		return nil, &os.PathError{Op: "fstat", Path: f.Name(), Err: statErr}
	}
	return &st, nil
}

func nodeFromStat(st *unix.Stat_t) *FileNode {
	mode := uint32(st.Mode)
	return &FileNode{
		Type:  fileTypeOf(mode),
		Mode:  fmt.Sprintf("%03o", mode&0o777),
		UID:   st.Uid,
		GID:   st.Gid,
		MTime: time.Unix(st.Mtim.Unix()).UTC(),
		CTime: time.Unix(st.Ctim.Unix()).UTC(),
		Size:  int64(st.Size),
	}
}

func fileTypeOf(mode uint32) FileType {
	switch mode & unix.S_IFMT {
	case unix.S_IFREG:
		return TypeFile
	case unix.S_IFDIR:
		return TypeDirectory
	case unix.S_IFLNK:
		return TypeSymlink
	case unix.S_IFCHR:
		return TypeCharDevice
	case unix.S_IFBLK:
		return TypeBlockDevice
	case unix.S_IFIFO:
		return TypeNamedPipe
	case unix.S_IFSOCK:
		return TypeSocket
	default:
		return TypeUnknown
	}
}

// readAll reads up to size bytes. A file that shrank since fstat yields what
// is left.
func readAll(f *os.File, size int64) ([]byte, error) {
	buf := make([]byte, size)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}
