//go:build unix

package descriptor

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/containerd/fifo"
)

var _ Pipe = (*fifoPipe)(nil)

// fifoPipe adapts a containerd FIFO. The FIFO owns its file and poller, so the
// blocking mode cannot be switched from here and readiness is not observable.
type fifoPipe struct {
	rwc  io.ReadWriteCloser
	name string
}

// IsFifo reports whether path is a named pipe.
func IsFifo(path string) (bool, error) {
	return fifo.IsFifo(path)
}

// OpenFifo opens (and with O_CREAT, creates) a named pipe. The context bounds
// how long the open waits for the other side.
func OpenFifo(ctx context.Context, path string, flag int, perm os.FileMode) (Pipe, error) {
	rwc, err := fifo.OpenFifo(ctx, path, flag, perm)
	if err != nil {
		return nil, err
	}
	return &fifoPipe{rwc: rwc, name: path}, nil
}

func (f *fifoPipe) Read(p []byte) (int, error) {
	n, err := f.rwc.Read(p)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

func (f *fifoPipe) Write(p []byte) (int, error) {
	return f.rwc.Write(p)
}

func (f *fifoPipe) Seek(int64, int) (int64, error) {
	return 0, ErrNotSeekable
}

func (f *fifoPipe) Close() error {
	return f.rwc.Close()
}

func (f *fifoPipe) SetBlocking(bool) error {
	return ErrModeNotSupported
}

func (f *fifoPipe) WaitReadable(time.Duration) (bool, error) {
	return true, nil
}

func (f *fifoPipe) ResetReadable() {}
