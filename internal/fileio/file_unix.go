//go:build unix

package fileio

import (
	"context"
	"io"
	"os"

	"github.com/spin-stack/streamio/internal/descriptor"
)

// Open opens path. Named pipes are opened through containerd/fifo and become
// pipe handles; the context bounds how long that open waits for a peer.
func Open(ctx context.Context, path string, flag int, perm os.FileMode, opts ...Opt) (*File, error) {
	isFifo, err := descriptor.IsFifo(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	var d descriptor.Descriptor
	if isFifo {
		d, err = descriptor.OpenFifo(ctx, path, flag, perm)
	} else {
		d, err = descriptor.OpenFile(path, flag, perm)
	}
	if err != nil {
		return nil, err
	}

	f, err := New(ctx, d, path, opts...)
	if err != nil {
		d.Close()
		return nil, err
	}
	if !isFifo && flag&os.O_APPEND != 0 {
		// O_APPEND writes land at end of file regardless of the offset.
		off, err := d.Seek(0, io.SeekEnd)
		if err != nil {
			f.Close()
			return nil, f.ioError("seek", err)
		}
		f.filePtr = off
	}
	return f, nil
}

// CreatePipe creates an anonymous pipe and returns handles for its read and
// write ends. Both start in blocking mode with an infinite timeout.
func CreatePipe(ctx context.Context, opts ...Opt) (r, w *File, err error) {
	pr, pw, err := descriptor.NewPipe()
	if err != nil {
		return nil, nil, err
	}
	r, err = New(ctx, pr, "PIPE", opts...)
	if err != nil {
		pr.Close()
		pw.Close()
		return nil, nil, err
	}
	w, err = New(ctx, pw, "PIPE", opts...)
	if err != nil {
		r.Close()
		pw.Close()
		return nil, nil, err
	}
	return r, w, nil
}
