package fileio

import (
	"fmt"
	"io"

	"github.com/containerd/errdefs"
)

// Write writes len(p) bytes.
//
// A buffered handle absorbs writes into its buffer and only issues a
// descriptor write when the buffer fills; use Flush or Close to make the data
// durable. On error the count is 0, even if part of p was buffered.
//
// An unbuffered handle issues exactly one descriptor write and reports a short
// count as is, with io.ErrShortWrite.
func (f *File) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return 0, ErrBadHandle
	}

	if f.buf == nil {
		n, err := f.fd.Write(p)
		if err != nil {
			return 0, f.ioError("write", err)
		}
		f.filePtr += int64(n)
		if n < len(p) {
			return n, io.ErrShortWrite
		}
		return n, nil
	}

	if f.dir != Writing {
		if err := f.beginWriteLocked(); err != nil {
			return 0, err
		}
	}

	n := 0
	for n < len(p) {
		if f.pos == len(f.buf) {
			if err := f.flushLocked(); err != nil {
				return 0, err
			}
		}
		c := copy(f.buf[f.pos:], p[n:])
		f.pos += c
		f.valid = f.pos
		n += c
	}
	return n, nil
}

// beginWriteLocked switches the buffer to writing at the logical position.
func (f *File) beginWriteLocked() error {
	if err := f.dropReadAheadLocked(); err != nil {
		return err
	}
	f.dir = Writing
	return nil
}

// dropReadAheadLocked moves the descriptor back to the logical read position
// and empties the buffer, so writes land where the caller thinks they are.
// Pipes have no position to restore.
func (f *File) dropReadAheadLocked() error {
	off := f.filePtr - int64(f.valid) + int64(f.pos)
	if f.pipe == nil && off != f.filePtr {
		abs, err := f.fd.Seek(off, io.SeekStart)
		if err != nil {
			return f.ioError("seek", err)
		}
		f.filePtr = abs
	}
	f.pos, f.valid = 0, 0
	f.dir = Neutral
	return nil
}

// Flush writes buffered data to the descriptor. It is a no-op for unbuffered
// handles and when nothing is pending.
func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrBadHandle
	}
	return f.flushLocked()
}

// flushLocked issues one descriptor write of the pending bytes. Bytes the
// descriptor did not take stay at the front of the buffer for a retry.
func (f *File) flushLocked() error {
	if f.buf == nil || f.dir != Writing || f.pos == 0 {
		return nil
	}

	n, err := f.fd.Write(f.buf[:f.pos])
	if n > 0 {
		f.filePtr += int64(n)
		copy(f.buf, f.buf[n:f.pos])
		f.pos -= n
		f.valid = f.pos
	}
	if err != nil {
		return f.ioError("flush", err)
	}
	if f.pos > 0 {
		return f.ioError("flush", io.ErrShortWrite)
	}
	return nil
}

// Seek sets the logical offset for the next Read or Write and clears the end
// of stream flag. Pending writes are flushed first. A target inside the
// current read-ahead only moves the buffer cursor. Pipes are not seekable.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return 0, ErrBadHandle
	}
	if f.pipe != nil {
		return 0, f.ioError("seek", ErrNotSeekable)
	}
	if err := f.flushLocked(); err != nil {
		return 0, err
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = f.logicalLocked() + offset
	case io.SeekEnd:
		abs, err := f.fd.Seek(offset, io.SeekEnd)
		if err != nil {
			return 0, f.ioError("seek", err)
		}
		f.repositionLocked(abs)
		return abs, nil
	default:
		return 0, fmt.Errorf("invalid whence %d: %w", whence, errdefs.ErrInvalidArgument)
	}
	if target < 0 {
		return 0, fmt.Errorf("negative position %d: %w", target, errdefs.ErrInvalidArgument)
	}

	if f.dir == Reading {
		start := f.filePtr - int64(f.valid)
		if target >= start && target <= f.filePtr {
			f.pos = int(target - start)
			f.eof = false
			return target, nil
		}
	}

	abs, err := f.fd.Seek(target, io.SeekStart)
	if err != nil {
		return 0, f.ioError("seek", err)
	}
	f.repositionLocked(abs)
	return abs, nil
}

func (f *File) repositionLocked(abs int64) {
	f.filePtr = abs
	f.pos, f.valid = 0, 0
	f.eof = false
}
