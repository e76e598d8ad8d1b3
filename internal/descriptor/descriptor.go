// Package descriptor defines the OS-level primitives a stream handle is built on.
//
// Implementations follow raw system call conventions rather than io.Reader ones:
// a Read returning (0, nil) means end of stream, and a non-blocking pipe with no
// data ready reports ErrNoData instead of blocking.
package descriptor

import (
	"errors"
	"fmt"
	"time"

	"github.com/containerd/errdefs"
)

var (
	// ErrNoData is returned by Read on a non-blocking pipe that has nothing buffered.
	ErrNoData = fmt.Errorf("no data ready: %w", errdefs.ErrUnavailable)

	// ErrNotSeekable is returned by Seek on pipes and FIFOs.
	ErrNotSeekable = fmt.Errorf("descriptor is not seekable: %w", errdefs.ErrInvalidArgument)

	// ErrModeNotSupported is returned by SetBlocking when the descriptor cannot
	// switch between blocking and non-blocking mode.
	ErrModeNotSupported = fmt.Errorf("blocking mode cannot be changed: %w", errdefs.ErrNotImplemented)

	errClosed = errors.New("descriptor already closed")
)

// Descriptor is a file or pipe the caller exclusively owns.
type Descriptor interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Close() error
}

// Pipe is a Descriptor whose reads can be made non-blocking and waited on.
type Pipe interface {
	Descriptor

	// SetBlocking switches between waiting for data and returning ErrNoData.
	SetBlocking(blocking bool) error

	// WaitReadable waits until data may be available. A negative timeout
	// waits forever, zero only checks. It reports false when the wait expired.
	WaitReadable(timeout time.Duration) (bool, error)

	// ResetReadable clears a pending readiness signal before a read attempt.
	ResetReadable()
}
