package fileio

import (
	"errors"
	"io"

	"github.com/spin-stack/streamio/internal/descriptor"
)

// Read reads up to len(p) bytes.
//
// A buffered handle refills its buffer with one descriptor read whenever it
// runs dry and stops early at end of stream; a short count with a nil error
// is normal. Zero bytes at end of stream is io.EOF. On any other error the
// count is 0, even if bytes were already copied into p.
//
// A pipe handle, buffered or not, returns once it has any data. If no data is
// ready and the pipe timeout is not zero, it waits once on the readiness
// signal and retries once; no data after that is ErrTimeout.
func (f *File) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return 0, ErrBadHandle
	}
	if len(p) == 0 {
		return 0, nil
	}
	if f.buf == nil {
		return f.readDirectLocked(p)
	}
	return f.readBufferedLocked(p)
}

func (f *File) readBufferedLocked(p []byte) (int, error) {
	if f.dir == Writing {
		if err := f.flushLocked(); err != nil {
			return 0, err
		}
		f.pos, f.valid = 0, 0
	}
	f.dir = Reading

	n := 0
	for n < len(p) {
		if f.pos >= f.valid {
			// a pipe hands back what it has instead of waiting to fill p
			if n > 0 && f.pipe != nil {
				break
			}
			m, err := f.sysReadLocked(f.buf)
			if err != nil {
				f.pos, f.valid = 0, 0
				return 0, err
			}
			if m == 0 {
				f.pos, f.valid = 0, 0
				f.eof = true
				break
			}
			f.pos, f.valid = 0, m
		}
		c := copy(p[n:], f.buf[f.pos:f.valid])
		f.pos += c
		n += c
	}

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (f *File) readDirectLocked(p []byte) (int, error) {
	n, err := f.sysReadLocked(p)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		f.eof = true
		return 0, io.EOF
	}
	return n, nil
}

// sysReadLocked issues one descriptor read and advances the physical
// position. A pipe with nothing ready is waited on once, unless the timeout
// is zero, and read again; no data after that is ErrTimeout.
func (f *File) sysReadLocked(p []byte) (int, error) {
	if f.pipe != nil {
		f.pipe.ResetReadable()
	}

	n, err := f.fd.Read(p)
	if f.pipe != nil && errors.Is(err, descriptor.ErrNoData) && f.mode.timeout != 0 {
		ready, werr := f.pipe.WaitReadable(f.mode.timeout)
		if werr != nil {
			return 0, f.ioError("read", werr)
		}
		if !ready {
			return 0, ErrTimeout
		}
		n, err = f.fd.Read(p)
	}
	if err != nil {
		if f.pipe != nil && errors.Is(err, descriptor.ErrNoData) {
			return 0, ErrTimeout
		}
		return 0, f.ioError("read", err)
	}
	f.filePtr += int64(n)
	return n, nil
}
