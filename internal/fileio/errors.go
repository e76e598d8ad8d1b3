package fileio

import (
	"context"
	"fmt"

	"github.com/containerd/errdefs"

	"github.com/spin-stack/streamio/internal/descriptor"
)

// Sentinel errors returned by File operations.
// Use errors.Is() to check for these error types; the containerd errdefs
// helpers (errdefs.IsNotImplemented etc.) classify them as well.
// End of stream is reported as io.EOF.
var (
	// ErrBadHandle indicates an operation on a closed or never-opened handle.
	ErrBadHandle = fmt.Errorf("file handle is not open: %w", errdefs.ErrFailedPrecondition)

	// ErrTimeout indicates a bounded wait for pipe data expired.
	ErrTimeout = fmt.Errorf("timed out waiting for pipe data: %w", context.DeadlineExceeded)

	// ErrNotSupported indicates timeout control was requested on a handle that is not a pipe.
	ErrNotSupported = fmt.Errorf("operation requires a pipe handle: %w", errdefs.ErrInvalidArgument)

	// ErrNotImplemented indicates the pipe cannot be switched to non-blocking mode.
	ErrNotImplemented = fmt.Errorf("pipe blocking mode cannot be changed: %w", errdefs.ErrNotImplemented)

	// ErrNotSeekable is returned when repositioning a pipe.
	ErrNotSeekable = descriptor.ErrNotSeekable
)

// IOError reports a failed read, write or seek on the underlying descriptor.
// The platform error is kept as is and available through Unwrap.
type IOError struct {
	Op   string // "read", "write", "flush", "seek", "close"
	Name string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (f *File) ioError(op string, err error) error {
	return &IOError{Op: op, Name: f.name, Err: err}
}
