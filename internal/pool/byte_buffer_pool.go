// Package pool provides reusable scratch buffers, avoiding a fresh
// allocation per flush. The writer draws its raw-chunk buffers from the
// raw pool; the meta-data pool is not used by the writer.
package pool

import (
	"io"
	"sync"
)

// Default and threshold sizes for the two scratch-buffer pools: one sized
// for meta-data buffers, one for per-chunk raw payload buffers (the one the
// writer uses). Raw chunks tend to run larger than meta-data, hence the
// separate pool and threshold.
const (
	MetaBufferDefaultSize  = 4 * 1024         // 4KiB
	MetaBufferMaxThreshold = 256 * 1024       // 256KiB
	RawBufferDefaultSize   = 64 * 1024        // 64KiB
	RawBufferMaxThreshold  = 16 * 1024 * 1024 // 16MiB
)

// ByteBuffer is a growable byte buffer designed for pooled reuse: Reset
// keeps the underlying array so a new caller doesn't pay for reallocation.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// MustWrite appends data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Write implements io.Writer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// Grow ensures the buffer can hold requiredBytes more bytes without a
// further reallocation.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := MetaBufferDefaultSize
	if cap(bb.B) > 4*MetaBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// ByteBufferPool pools ByteBuffers to cut down on per-flush allocations.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the
// specified default size.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse. Oversized buffers are
// discarded rather than retained, to bound pool memory.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	metaPool = NewByteBufferPool(MetaBufferDefaultSize, MetaBufferMaxThreshold)
	rawPool  = NewByteBufferPool(RawBufferDefaultSize, RawBufferMaxThreshold)
)

// GetMetaBuffer retrieves a ByteBuffer from the meta-data pool.
func GetMetaBuffer() *ByteBuffer { return metaPool.Get() }

// PutMetaBuffer returns a ByteBuffer to the meta-data pool.
func PutMetaBuffer(bb *ByteBuffer) { metaPool.Put(bb) }

// GetRawBuffer retrieves a ByteBuffer from the raw-payload pool.
func GetRawBuffer() *ByteBuffer { return rawPool.Get() }

// PutRawBuffer returns a ByteBuffer to the raw-payload pool.
func PutRawBuffer(bb *ByteBuffer) { rawPool.Put(bb) }
