package descriptor

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/containerd/errdefs"
)

var (
	_ Descriptor = (*Memory)(nil)
	_ Pipe       = (*MemoryPipe)(nil)
)

// Memory is an in-memory seekable Descriptor for testing. It counts calls so
// tests can assert how many system calls a buffered handle issued.
type Memory struct {
	mu     sync.Mutex
	data   []byte
	off    int64
	closed bool

	maxWrite int
	readErr  error
	writeErr error

	reads, writes, seeks int
}

// NewMemory returns a Memory positioned at offset 0 holding a copy of data.
func NewMemory(data []byte) *Memory {
	return &Memory{data: append([]byte(nil), data...)}
}

// Bytes returns a copy of the file contents.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// Offset returns the current descriptor offset.
func (m *Memory) Offset() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.off
}

// Calls returns the number of Read, Write and Seek calls made so far.
func (m *Memory) Calls() (reads, writes, seeks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads, m.writes, m.seeks
}

// LimitWrites makes every Write accept at most n bytes. Zero removes the limit.
func (m *Memory) LimitWrites(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxWrite = n
}

// FailReads makes Read return err until called again with nil.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailWrites makes Write return err until called again with nil.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Closed reports whether Close was called.
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Memory) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.closed {
		return 0, errClosed
	}
	if m.readErr != nil {
		return 0, m.readErr
	}
	if m.off >= int64(len(m.data)) {
		return 0, nil
	}
	n := copy(p, m.data[m.off:])
	m.off += int64(n)
	return n, nil
}

func (m *Memory) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.closed {
		return 0, errClosed
	}
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	n := len(p)
	if m.maxWrite > 0 && n > m.maxWrite {
		n = m.maxWrite
	}
	end := m.off + int64(n)
	if end > int64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-int64(len(m.data)))...)
	}
	copy(m.data[m.off:end], p[:n])
	m.off = end
	return n, nil
}

func (m *Memory) Seek(offset int64, whence int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeks++
	if m.closed {
		return 0, errClosed
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.off + offset
	case io.SeekEnd:
		abs = int64(len(m.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d: %w", whence, errdefs.ErrInvalidArgument)
	}
	if abs < 0 {
		return 0, fmt.Errorf("negative position %d: %w", abs, errdefs.ErrInvalidArgument)
	}
	m.off = abs
	return abs, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	m.closed = true
	return nil
}

// MemoryPipe is an in-memory Pipe for testing. Writes loop back to its own
// read side. Readiness is a binary signal raised whenever data arrives.
type MemoryPipe struct {
	mu    sync.Mutex
	cond  sync.Cond
	ready chan struct{}

	data     []byte
	eof      bool
	closed   bool
	blocking bool

	modeUnsupported bool
	modes           []bool
	reads           int
}

// NewMemoryPipe returns an empty pipe in blocking mode.
func NewMemoryPipe() *MemoryPipe {
	p := &MemoryPipe{
		ready:    make(chan struct{}, 1),
		blocking: true,
	}
	p.cond.L = &p.mu
	return p
}

// Feed appends data for the read side and raises the readiness signal.
func (p *MemoryPipe) Feed(data []byte) {
	p.mu.Lock()
	p.data = append(p.data, data...)
	p.mu.Unlock()
	p.wake()
}

// CloseWrite marks end of stream once buffered data is drained.
func (p *MemoryPipe) CloseWrite() {
	p.mu.Lock()
	p.eof = true
	p.mu.Unlock()
	p.wake()
}

// DisableModeSwitch makes SetBlocking fail with ErrModeNotSupported.
func (p *MemoryPipe) DisableModeSwitch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modeUnsupported = true
}

// Blocking reports the current mode.
func (p *MemoryPipe) Blocking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blocking
}

// ModeChanges returns every mode passed to SetBlocking, in order.
func (p *MemoryPipe) ModeChanges() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.modes...)
}

// Reads returns the number of Read calls made so far.
func (p *MemoryPipe) Reads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}

func (p *MemoryPipe) wake() {
	p.cond.Broadcast()
	select {
	case p.ready <- struct{}{}:
	default:
	}
}

func (p *MemoryPipe) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reads++
	for len(p.data) == 0 && !p.eof && !p.closed {
		if !p.blocking {
			return 0, ErrNoData
		}
		p.cond.Wait()
	}
	if p.closed {
		return 0, errClosed
	}
	n := copy(b, p.data)
	p.data = p.data[n:]
	return n, nil
}

func (p *MemoryPipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, errClosed
	}
	p.data = append(p.data, b...)
	p.mu.Unlock()
	p.wake()
	return len(b), nil
}

func (p *MemoryPipe) Seek(int64, int) (int64, error) {
	return 0, ErrNotSeekable
}

func (p *MemoryPipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errClosed
	}
	p.closed = true
	p.mu.Unlock()
	p.wake()
	return nil
}

func (p *MemoryPipe) SetBlocking(blocking bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.modeUnsupported {
		return ErrModeNotSupported
	}
	p.blocking = blocking
	p.modes = append(p.modes, blocking)
	return nil
}

func (p *MemoryPipe) WaitReadable(timeout time.Duration) (bool, error) {
	p.mu.Lock()
	pending := len(p.data) > 0 || p.eof || p.closed
	p.mu.Unlock()
	if pending {
		return true, nil
	}

	switch {
	case timeout < 0:
		<-p.ready
		return true, nil
	case timeout == 0:
		select {
		case <-p.ready:
			return true, nil
		default:
			return false, nil
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-p.ready:
		return true, nil
	case <-timer.C:
		return false, nil
	}
}

func (p *MemoryPipe) ResetReadable() {
	select {
	case <-p.ready:
	default:
	}
}
