package pool

import "sync"

// BufferPool recycles chunk buffers between the chunker and the workers.
// A buffer obtained with Get is owned by exactly one goroutine until it is Put back.
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a new buffer pool with buffers of the specified capacity
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, 0, size)
				return &buffer
			},
		},
		size: size,
	}
}

// Get retrieves an empty buffer with at least Size bytes of capacity
func (bp *BufferPool) Get() *[]byte {
	buffer := bp.pool.Get().(*[]byte)
	if cap(*buffer) < bp.size {
		*buffer = make([]byte, 0, bp.size)
	}
	return buffer
}

// Put returns a buffer to the pool for reuse
func (bp *BufferPool) Put(buffer *[]byte) {
	if buffer == nil {
		return
	}
	// Reset buffer length but keep capacity
	*buffer = (*buffer)[:0]
	bp.pool.Put(buffer)
}

// Size returns the capacity of the buffers handed out by the pool.
func (bp *BufferPool) Size() int {
	return bp.size
}
