// Package iobuf provides pooled, fixed-size buffers for buffered stream handles.
package iobuf

import "sync"

// DefaultSize is 4096 to align with PIPE_BUF on Linux for atomic pipe writes.
// See: http://man7.org/linux/man-pages/man7/pipe.7.html
const DefaultSize = 4096

// pools maps a buffer size to its *sync.Pool.
var pools sync.Map

func poolFor(size int) *sync.Pool {
	if p, ok := pools.Load(size); ok {
		return p.(*sync.Pool)
	}
	p, _ := pools.LoadOrStore(size, &sync.Pool{
		New: func() any {
			buf := make([]byte, size)
			return &buf
		},
	})
	return p.(*sync.Pool)
}

// Get returns a pooled buffer of exactly size bytes.
// A size <= 0 returns a DefaultSize buffer.
func Get(size int) *[]byte {
	if size <= 0 {
		size = DefaultSize
	}
	return poolFor(size).Get().(*[]byte)
}

// Put returns a buffer to the pool it was sized for.
func Put(buf *[]byte) {
	if buf == nil || len(*buf) == 0 {
		return
	}
	poolFor(len(*buf)).Put(buf)
}
