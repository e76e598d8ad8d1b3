//go:build unix

package descriptor

import (
	"errors"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

var (
	_ Descriptor = (*fdFile)(nil)
	_ Pipe       = (*fdPipe)(nil)
)

type fdFile struct {
	fd int
}

// OpenFile opens path with open(2). The descriptor is close-on-exec.
func OpenFile(path string, flag int, perm os.FileMode) (Descriptor, error) {
	var (
		fd  int
		err error
	)
	for {
		fd, err = unix.Open(path, flag|unix.O_CLOEXEC, uint32(perm.Perm()))
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return &fdFile{fd: fd}, nil
}

// NewPipe creates an anonymous pipe and returns its read and write ends.
func NewPipe() (r, w Pipe, err error) {
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return nil, nil, os.NewSyscallError("pipe", err)
	}
	unix.CloseOnExec(p[0])
	unix.CloseOnExec(p[1])
	return &fdPipe{fdFile: fdFile{fd: p[0]}}, &fdPipe{fdFile: fdFile{fd: p[1]}}, nil
}

// Dup duplicates an inherited descriptor such as standard input, leaving the
// original open. FIFOs and sockets come back as a Pipe. The duplicate shares
// the original's file status flags, so a Pipe puts the blocking mode it found
// back in place when closed.
func Dup(fd int) (Descriptor, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, os.NewSyscallError("fstat", err)
	}
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return nil, os.NewSyscallError("fcntl", err)
	}
	nfd, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return nil, os.NewSyscallError("fcntl", err)
	}
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFIFO, unix.S_IFSOCK:
		return &fdPipe{
			fdFile:   fdFile{fd: nfd},
			inherit:  true,
			nonblock: flags&unix.O_NONBLOCK != 0,
		}, nil
	}
	return &fdFile{fd: nfd}, nil
}

func (f *fdFile) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(f.fd, p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, translate("read", err)
		}
		return n, nil
	}
}

func (f *fdFile) Write(p []byte) (int, error) {
	for {
		n, err := unix.Write(f.fd, p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, translate("write", err)
		}
		return n, nil
	}
}

func (f *fdFile) Seek(offset int64, whence int) (int64, error) {
	off, err := unix.Seek(f.fd, offset, whence)
	if err != nil {
		return 0, translate("seek", err)
	}
	return off, nil
}

func (f *fdFile) Close() error {
	if f.fd < 0 {
		return errClosed
	}
	err := unix.Close(f.fd)
	f.fd = -1
	if err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}

type fdPipe struct {
	fdFile

	// inherit is set on duplicates; nonblock is the mode found at Dup.
	inherit  bool
	nonblock bool
}

func (p *fdPipe) Close() error {
	if p.inherit && p.fd >= 0 {
		_ = unix.SetNonblock(p.fd, p.nonblock)
	}
	return p.fdFile.Close()
}

func (p *fdPipe) SetBlocking(blocking bool) error {
	if err := unix.SetNonblock(p.fd, !blocking); err != nil {
		return os.NewSyscallError("fcntl", err)
	}
	return nil
}

// WaitReadable polls for POLLIN. Hang-up also counts as readable so the
// following read observes end of stream.
func (p *fdPipe) WaitReadable(timeout time.Duration) (bool, error) {
	ms := -1
	if timeout >= 0 {
		ms = int((timeout + time.Millisecond - 1) / time.Millisecond)
	}
	fds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, ms)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return false, os.NewSyscallError("poll", err)
		}
		return n > 0, nil
	}
}

// ResetReadable is a no-op: poll(2) is level triggered.
func (p *fdPipe) ResetReadable() {}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, unix.EAGAIN):
		return ErrNoData
	case errors.Is(err, unix.ESPIPE):
		return ErrNotSeekable
	}
	return os.NewSyscallError(op, err)
}
