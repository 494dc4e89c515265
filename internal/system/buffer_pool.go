package system

import (
	"bytes"
	"sync"
)

// BufferPool reuses encode buffers across manifests in batch runs.
type BufferPool struct {
	pool sync.Pool
}

var globalPool = NewBufferPool()

func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

// GetBuffer returns an empty buffer from the shared pool.
func GetBuffer() *bytes.Buffer {
	return globalPool.Get()
}

// PutBuffer returns buf to the shared pool.
func PutBuffer(buf *bytes.Buffer) {
	globalPool.Put(buf)
}

func (p *BufferPool) Get() *bytes.Buffer {
	buf := p.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// Put drops oversized buffers so one huge manifest does not pin memory.
func (p *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > 4<<20 {
		return
	}
	p.pool.Put(buf)
}
