package filesystem

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/weaverest/internal/codec"
	"github.com/GriffinCanCode/weaverest/internal/shared/apperrors"
)

// MsgCannotEncodePath is returned when a request path has no representation
// in the configured encoding.
const MsgCannotEncodePath = "cannot encode character in path"

// Resolve maps a percent-decoded request path to an absolute filesystem path
// under the root. The path is normalized against a virtual "/" first, so ".."
// can never climb above the root.
func (e *Executor) Resolve(requestPath string) (string, error) {
	virtual := path.Clean("/" + requestPath)
	if virtual == "/" {
		return e.config.Root, nil
	}

	rel, err := e.config.codec.Encode(codec.FromPath(virtual[1:]))
	if err != nil {
		return "", apperrors.BadRequest(MsgCannotEncodePath, err)
	}
	if strings.IndexByte(string(rel), 0) >= 0 {
		return "", apperrors.BadRequest(MsgCannotEncodePath, nil)
	}

	full := filepath.Join(e.config.Root, string(rel))
	if !within(e.config.Root, full) {
		return "", apperrors.BadRequest(MsgCannotEncodePath, nil)
	}
	return full, nil
}

// within reports whether p is root or lies below it.
func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// IsRoot reports whether a resolved path is the served root itself.
func (e *Executor) IsRoot(fullPath string) bool {
	return fullPath == e.config.Root
}
