package fileio

import (
	"errors"
	"time"

	"github.com/spin-stack/streamio/internal/descriptor"
)

// pipeMode is the blocking-mode controller of a pipe handle. Pipes start out
// blocking with a negative (infinite) timeout.
type pipeMode struct {
	timeout  time.Duration
	blocking bool
}

func newPipeMode() pipeMode {
	return pipeMode{timeout: -1, blocking: true}
}

// next returns the descriptor mode a new timeout needs and whether
// SetBlocking must be called to reach it. A bounded wait cannot be honoured
// precisely on pipes, so a positive timeout always selects blocking mode.
func (m pipeMode) next(timeout time.Duration) (blocking, change bool) {
	switch {
	case timeout > 0:
		return true, true
	case timeout == 0:
		return false, m.blocking
	default:
		return true, !m.blocking
	}
}

// SetPipeTimeout sets how long an unbuffered read waits for pipe data.
// A negative timeout blocks indefinitely, zero returns immediately with
// ErrTimeout when nothing is ready, and a positive timeout puts the pipe in
// blocking mode.
//
// It fails with ErrNotSupported on non-pipe handles and ErrNotImplemented
// when the pipe cannot change its blocking mode.
func (f *File) SetPipeTimeout(timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrBadHandle
	}
	if f.pipe == nil {
		return ErrNotSupported
	}

	blocking, change := f.mode.next(timeout)
	if change {
		if err := f.pipe.SetBlocking(blocking); err != nil {
			if errors.Is(err, descriptor.ErrModeNotSupported) {
				return ErrNotImplemented
			}
			return f.ioError("set blocking", err)
		}
		if blocking != f.mode.blocking {
			f.log.WithField("blocking", blocking).Debug("changed pipe mode")
		}
		f.mode.blocking = blocking
	}
	f.mode.timeout = timeout
	return nil
}

// IsPipe reports whether the handle wraps a pipe.
func (f *File) IsPipe() bool {
	return f.pipe != nil
}

// PipeTimeout returns the current pipe timeout; -1 for non-pipe handles.
func (f *File) PipeTimeout() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pipe == nil {
		return -1
	}
	return f.mode.timeout
}

// CheckRead reports whether a read would find data without waiting. Non-pipe
// handles are always ready. A pipe with nothing pending returns ErrTimeout.
func (f *File) CheckRead() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrBadHandle
	}
	if f.pipe == nil {
		return nil
	}
	if f.dir == Reading && f.pos < f.valid {
		return nil
	}

	ready, err := f.pipe.WaitReadable(0)
	if err != nil {
		return f.ioError("poll", err)
	}
	if !ready {
		return ErrTimeout
	}
	return nil
}
