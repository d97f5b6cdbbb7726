// Package pool provides the pooled byte buffers that back writer segments.
package pool

import "sync"

// Default sizes of writer segments.
const (
	SegmentDefaultSize  = 1024 * 4  // 4KiB
	SegmentMaxThreshold = 1024 * 64 // 64KiB
)

// ByteBuffer is a reusable byte slice.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a ByteBuffer with the given capacity.
func NewByteBuffer(size int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, size)}
}

// Bytes returns the written bytes.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer and keeps its memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the number of written bytes.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Available returns the number of bytes that fit without reallocating.
func (bb *ByteBuffer) Available() int {
	return cap(bb.B) - len(bb.B)
}

// Write appends data, growing the buffer when needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// ByteBufferPool pools ByteBuffers of one default size.
//
// Buffers whose capacity grew beyond maxThreshold are dropped on Put
// so a single large value does not pin memory in the pool.
type ByteBufferPool struct {
	pool         sync.Pool
	size         int
	maxThreshold int
}

// NewByteBufferPool creates a pool whose buffers start with the given capacity.
func NewByteBufferPool(size int, maxThreshold int) *ByteBufferPool {
	p := &ByteBufferPool{size: size, maxThreshold: maxThreshold}
	p.pool.New = func() any {
		return NewByteBuffer(size)
	}

	return p
}

// Size returns the default capacity of buffers handed out by the pool.
func (p *ByteBufferPool) Size() int {
	return p.size
}

// Get retrieves an empty ByteBuffer.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns bb to the pool.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var (
	segmentPoolsMu sync.Mutex
	segmentPools   = map[int]*ByteBufferPool{}
)

// SegmentPool returns the shared pool for segments of the given size.
func SegmentPool(size int) *ByteBufferPool {
	segmentPoolsMu.Lock()
	defer segmentPoolsMu.Unlock()

	p, ok := segmentPools[size]
	if !ok {
		p = NewByteBufferPool(size, max(size, SegmentMaxThreshold))
		segmentPools[size] = p
	}

	return p
}
