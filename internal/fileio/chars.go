package fileio

import (
	"errors"
	"fmt"
	"io"

	"github.com/containerd/errdefs"
)

const eofMarker = 0x1a

// ReadByte reads one byte through Read. End of stream is io.EOF.
func (f *File) ReadByte() (byte, error) {
	var b [1]byte
	n, err := f.Read(b[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return b[0], nil
}

// UnreadByte steps the logical offset back by one byte. The byte is read
// again from the buffer or the descriptor, so this only works on seekable
// handles.
func (f *File) UnreadByte() error {
	_, err := f.Seek(-1, io.SeekCurrent)
	return err
}

// WriteByte writes c straight to the descriptor, bypassing the buffer. On a
// handle with pending buffered writes, c reaches the descriptor first. Any
// read-ahead is dropped and c lands at the logical read position.
func (f *File) WriteByte(c byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrBadHandle
	}
	if f.dir == Reading {
		if err := f.dropReadAheadLocked(); err != nil {
			return err
		}
	}
	n, err := f.fd.Write([]byte{c})
	if err != nil {
		return f.ioError("write", err)
	}
	f.filePtr += int64(n)
	if n != 1 {
		return io.ErrShortWrite
	}
	return nil
}

// WriteString writes the bytes of s through Write.
func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Printf formats according to a format specifier and writes the result
// through Write.
func (f *File) Printf(format string, args ...any) (int, error) {
	return f.WriteString(fmt.Sprintf(format, args...))
}

// ReadLine reads one line into buf, storing at most len(buf)-1 bytes followed
// by a NUL, and returns the line length. The line feed is consumed but not
// stored; carriage returns and 0x1a bytes are dropped without counting
// against the limit. A line cut off by end of stream is returned with a nil
// error; io.EOF is only returned when nothing was read, with buf[0] set to 0.
func (f *File) ReadLine(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, fmt.Errorf("line buffer has no room for the terminator: %w", errdefs.ErrInvalidArgument)
	}

	n := 0
	for n < len(buf)-1 {
		c, err := f.ReadByte()
		if err != nil {
			buf[n] = 0
			if n > 0 && errors.Is(err, io.EOF) {
				return n, nil
			}
			return n, err
		}
		switch c {
		case '\r', eofMarker:
			continue
		case '\n':
			buf[n] = 0
			return n, nil
		}
		buf[n] = c
		n++
	}
	buf[n] = 0
	return n, nil
}
