// Package apperrors provides the error taxonomy shared by the request
// pipeline. Every failure that reaches a client is an *Error; its Message is
// sent verbatim, so it must never carry paths, causes or other internals.
package apperrors

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"syscall"
)

// Kind classifies an error for status mapping and metrics.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindPermissionDenied
	KindBadRequest
	KindConflict
	KindTooLarge
	KindMethodNotAllowed
	KindRateLimited
)

// Client-facing messages.
const (
	MsgNotFound          = "file not found"
	MsgPermissionDenied  = "permission denied"
	MsgInternal          = "internal server error"
	MsgTooLarge          = "request body too large"
	MsgMethodNotAllowed  = "method not allowed"
	MsgRateLimitExceeded = "rate limit exceeded"
)

var kindNames = map[Kind]string{
	KindInternal:         "internal",
	KindNotFound:         "not_found",
	KindPermissionDenied: "permission_denied",
	KindBadRequest:       "bad_request",
	KindConflict:         "conflict",
	KindTooLarge:         "too_large",
	KindMethodNotAllowed: "method_not_allowed",
	KindRateLimited:      "rate_limited",
}

var kindStatus = map[Kind]int{
	KindInternal:         http.StatusInternalServerError,
	KindNotFound:         http.StatusNotFound,
	KindPermissionDenied: http.StatusUnprocessableEntity,
	KindBadRequest:       http.StatusBadRequest,
	KindConflict:         http.StatusUnprocessableEntity,
	KindTooLarge:         http.StatusRequestEntityTooLarge,
	KindMethodNotAllowed: http.StatusMethodNotAllowed,
	KindRateLimited:      http.StatusTooManyRequests,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Status returns the HTTP status for the kind.
func (k Kind) Status() int {
	if status, ok := kindStatus[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the default status for kind.
func New(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Status:  kind.Status(),
		Cause:   cause,
	}
}

func NotFound(cause error) *Error {
	return New(KindNotFound, MsgNotFound, cause)
}

func PermissionDenied(cause error) *Error {
	return New(KindPermissionDenied, MsgPermissionDenied, cause)
}

func BadRequest(message string, cause error) *Error {
	return New(KindBadRequest, message, cause)
}

func Conflict(message string, cause error) *Error {
	return New(KindConflict, message, cause)
}

func Internal(cause error) *Error {
	return New(KindInternal, MsgInternal, cause)
}

func TooLarge(cause error) *Error {
	return New(KindTooLarge, MsgTooLarge, cause)
}

// FromOS classifies an operating system error. Missing objects and
// non-directory path components are NotFound, EACCES and EPERM are
// PermissionDenied, and anything else is Internal. An error that already
// carries an *Error is returned as is.
func FromOS(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return NotFound(err)
	case errors.Is(err, fs.ErrPermission):
		return PermissionDenied(err)
	default:
		return Internal(err)
	}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
