// Package fileio implements buffered, bidirectional stream handles over a
// single file or pipe descriptor.
//
// A File keeps one buffer that serves both directions. The buffer cursor, the
// number of valid bytes in it and the descriptor's physical offset are
// reconciled on every direction switch:
//
//	logical = physical - valid + cursor   (reading)
//	logical = physical + cursor           (writing)
//
// All buffer state is guarded by a per-handle mutex, so a File may be shared
// between goroutines. Data written to a buffered File is only durable after
// Flush or Close; dropping a File without closing it loses pending writes.
package fileio

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/containerd/log"

	"github.com/spin-stack/streamio/internal/descriptor"
	"github.com/spin-stack/streamio/internal/iobuf"
)

var (
	_ io.ReadWriteCloser = (*File)(nil)
	_ io.Seeker          = (*File)(nil)
	_ io.ByteScanner     = (*File)(nil)
	_ io.ByteWriter      = (*File)(nil)
	_ io.StringWriter    = (*File)(nil)
)

// File is a stream handle.
type File struct {
	mu sync.Mutex

	fd   descriptor.Descriptor
	name string
	open bool

	// buffered state; buf is nil for unbuffered handles.
	bufp    *[]byte
	buf     []byte
	pos     int // next unread or unwritten byte in buf
	valid   int // read-ahead bytes, or pending bytes while writing
	dir     Direction
	filePtr int64 // descriptor offset after the last system call
	eof     bool

	// pipe is set for pipe handles only.
	pipe descriptor.Pipe
	mode pipeMode

	log *log.Entry
}

// Opt configures a File.
type Opt func(*options)

type options struct {
	buffered   bool
	bufferSize int
	timeout    *time.Duration
}

// WithBuffer enables buffering with a block of size bytes.
// A size <= 0 selects iobuf.DefaultSize.
func WithBuffer(size int) Opt {
	return func(o *options) {
		o.buffered = true
		o.bufferSize = size
	}
}

// WithTimeout applies an initial pipe timeout, as SetPipeTimeout would.
func WithTimeout(timeout time.Duration) Opt {
	return func(o *options) {
		o.timeout = &timeout
	}
}

// New wraps a descriptor the caller hands over. A descriptor implementing
// descriptor.Pipe yields a pipe handle. On error the descriptor is not closed.
func New(ctx context.Context, d descriptor.Descriptor, name string, opts ...Opt) (*File, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	f := &File{
		fd:   d,
		name: name,
		open: true,
		log:  log.G(ctx).WithField("file", name),
	}
	if p, ok := d.(descriptor.Pipe); ok {
		f.pipe = p
		f.mode = newPipeMode()
	} else if off, err := d.Seek(0, io.SeekCurrent); err == nil {
		f.filePtr = off
	}
	if o.buffered {
		f.bufp = iobuf.Get(o.bufferSize)
		f.buf = *f.bufp
	}
	if o.timeout != nil {
		if err := f.SetPipeTimeout(*o.timeout); err != nil {
			f.releaseBufferLocked()
			return nil, err
		}
	}

	f.log.WithFields(log.Fields{
		"buffered": f.buf != nil,
		"pipe":     f.pipe != nil,
	}).Debug("opened stream")
	return f, nil
}

// Name returns the name the handle was opened with.
func (f *File) Name() string {
	return f.name
}

// EOF reports whether a read has hit end of stream since the last Seek.
func (f *File) EOF() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eof
}

// Position returns the logical offset, accounting for buffered data.
func (f *File) Position() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return 0, ErrBadHandle
	}
	return f.logicalLocked(), nil
}

func (f *File) logicalLocked() int64 {
	if f.dir == Writing {
		return f.filePtr + int64(f.pos)
	}
	return f.filePtr - int64(f.valid) + int64(f.pos)
}

// Close flushes pending writes and closes the descriptor. The descriptor is
// closed even when the flush fails; the flush error is returned in that case.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrBadHandle
	}

	flushErr := f.flushLocked()
	f.open = false
	closeErr := f.fd.Close()
	f.releaseBufferLocked()

	f.log.Debug("closed stream")
	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return f.ioError("close", closeErr)
	}
	return nil
}

func (f *File) releaseBufferLocked() {
	if f.bufp == nil {
		return
	}
	iobuf.Put(f.bufp)
	f.bufp, f.buf = nil, nil
	f.pos, f.valid = 0, 0
}
