package filesystem

import (
	"errors"
	"os"
	"syscall"

	"github.com/GriffinCanCode/weaverest/internal/shared/apperrors"
)

// Messages for write operations.
const (
	MsgCannotEncodeData  = "cannot encode 'data'"
	MsgCannotAppendToDir = "cannot append to directory"
	MsgCannotWriteToDir  = "cannot write to directory"
)

// Append writes req.Data at the end of an existing file.
func (e *Executor) Append(fullPath string, req *AppendRequest) error {
	raw, err := e.config.codec.Encode(req.Data)
	if err != nil {
		return apperrors.BadRequest(MsgCannotEncodeData, err)
	}

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		if errors.Is(err, syscall.EISDIR) {
			return apperrors.Conflict(MsgCannotAppendToDir, err)
		}
		return apperrors.FromOS(err)
	}
	return e.writeAndClose(f, raw)
}

// Put creates a directory, or creates or truncates a file and writes
// req.Data. The mode only applies when the object is created.
func (e *Executor) Put(fullPath string, req *PutRequest) error {
	mode, err := req.FileMode()
	if err != nil {
		return apperrors.BadRequest("invalid mode", err)
	}
	if req.Directory {
		return e.mkdir(fullPath, mode)
	}

	raw, err := e.config.codec.Encode(req.Data)
	if err != nil {
		return apperrors.BadRequest(MsgCannotEncodeData, err)
	}

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		if errors.Is(err, syscall.EISDIR) {
			return apperrors.Conflict(MsgCannotWriteToDir, err)
		}
		return apperrors.FromOS(err)
	}
	return e.writeAndClose(f, raw)
}

func (e *Executor) writeAndClose(f *os.File, raw []byte) (err error) {
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = apperrors.FromOS(cerr)
		}
	}()

	n, err := f.Write(raw)
	e.recordBytes("written", n)
	if err != nil {
		return apperrors.FromOS(err)
	}
	return nil
}
