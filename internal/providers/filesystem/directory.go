package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"slices"

	"golang.org/x/sys/unix"

	"github.com/GriffinCanCode/weaverest/internal/codec"
	"github.com/GriffinCanCode/weaverest/internal/shared/apperrors"
)

// Conflict messages for directory operations.
const (
	MsgFileExists        = "file already exists"
	MsgDirectoryNotEmpty = "directory not empty"
	MsgDeleteRoot        = "refusing to delete root directory"
)

// listChildren reads the entry names of an open directory, decoded and sorted
// by code point.
func (e *Executor) listChildren(dir *os.File) ([]codec.Text, error) {
	names, err := dir.Readdirnames(-1)
	if err != nil {
		return nil, err
	}

	children := make([]codec.Text, 0, len(names))
	for _, name := range names {
		children = append(children, e.config.codec.DecodeString(name))
	}
	slices.SortFunc(children, codec.Compare)
	return children, nil
}

// mkdir creates a single directory. The parent must exist.
func (e *Executor) mkdir(fullPath string, mode os.FileMode) error {
	if err := os.Mkdir(fullPath, mode); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return apperrors.Conflict(MsgFileExists, err)
		}
		return apperrors.FromOS(err)
	}
	return nil
}

// Delete removes a file or an empty directory. The root itself is never
// removed.
func (e *Executor) Delete(fullPath string) error {
	if e.IsRoot(fullPath) {
		return apperrors.Conflict(MsgDeleteRoot, nil)
	}

	err := unix.Unlink(fullPath)
	if err == nil {
		return nil
	}
	// Linux reports EISDIR for directories; POSIX allows EPERM.
	if errors.Is(err, unix.EISDIR) || (errors.Is(err, unix.EPERM) && isDirectory(fullPath)) {
		return e.rmdir(fullPath)
	}
	return apperrors.FromOS(&fs.PathError{Op: "unlink", Path: fullPath, Err: err})
}

func (e *Executor) rmdir(fullPath string) error {
	err := unix.Rmdir(fullPath)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ENOTEMPTY), errors.Is(err, unix.EEXIST):
		return apperrors.Conflict(MsgDirectoryNotEmpty, err)
	default:
		return apperrors.FromOS(&fs.PathError{Op: "rmdir", Path: fullPath, Err: err})
	}
}

func isDirectory(fullPath string) bool {
	info, err := os.Lstat(fullPath)
	return err == nil && info.IsDir()
}
