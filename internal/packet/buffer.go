package packet

import (
	"sync"
	"sync/atomic"
)

/*
A SharedBuffer represents a byte buffer whose ownership travels with it
through the pipeline. A producer fills the buffer and hands it to a consumer;
the consumer reads the bytes and calls Release() when it is done, which
returns the backing storage to the Pool it came from.

Sharing is managed by reference counting. Hold() increments the reference count
by 1, Release() decrements it by 1. The done function is called when the count
reaches 0.

Example usage:

	pool := NewPool(64 * 1024)

	func producer(out chan<- *SharedBuffer) {
		buf := pool.Copy(data)
		select {
		case out <- buf:
		case <-time.After(timeout):
			buf.Release() // Not delivered, still ours.
		}
	}

	func consumer(in <-chan *SharedBuffer) {
		buf := <-in
		defer buf.Release()
		process(buf.Bytes())
	}

Every buffer obtained from a pool must be released exactly once by whoever
owns it last. Pool.Outstanding() reports the number of buffers that have not
been released yet.
*/
type SharedBuffer struct {
	data []byte

	count int32
	done  func()
}

func NewSharedBuffer(data []byte, count int, done func()) *SharedBuffer {
	return &SharedBuffer{data: data, count: int32(count), done: done}
}

// Bytes returns the underlying byte buffer.
func (buf *SharedBuffer) Bytes() []byte {
	return buf.data
}

// Len returns the number of payload bytes.
func (buf *SharedBuffer) Len() int {
	if buf == nil {
		return 0
	}
	return len(buf.data)
}

// Increments the hold count.
func (buf *SharedBuffer) Hold() {
	atomic.AddInt32(&buf.count, 1)
}

// Decrements the hold count. When the hold count reaches zero, the underlying
// byte buffer will be released.
func (buf *SharedBuffer) Release() {
	if buf == nil {
		return
	}
	newCount := atomic.AddInt32(&buf.count, -1)
	switch {
	case newCount == 0:
		if buf.done != nil {
			buf.done()
		}
		buf.data = nil
	case newCount < 0:
		panic("packet: SharedBuffer released more times than held")
	}
}

// A Pool hands out SharedBuffers backed by reusable storage of a fixed
// capacity. Requests larger than the pool capacity are allocated separately
// and not recycled.
type Pool struct {
	capacity    int
	storage     sync.Pool
	outstanding int64
}

func NewPool(capacity int) *Pool {
	p := &Pool{capacity: capacity}
	p.storage.New = func() interface{} {
		return make([]byte, capacity)
	}
	return p
}

// Get returns a buffer of length n with a hold count of 1. Its contents are
// unspecified.
func (p *Pool) Get(n int) *SharedBuffer {
	var data []byte
	recycle := n <= p.capacity
	if recycle {
		data = p.storage.Get().([]byte)[:n]
	} else {
		data = make([]byte, n)
	}

	atomic.AddInt64(&p.outstanding, 1)
	return NewSharedBuffer(data, 1, func() {
		atomic.AddInt64(&p.outstanding, -1)
		if recycle {
			p.storage.Put(data[:p.capacity])
		}
	})
}

// Copy returns a pooled buffer holding a copy of data.
func (p *Pool) Copy(data []byte) *SharedBuffer {
	buf := p.Get(len(data))
	copy(buf.data, data)
	return buf
}

// Outstanding returns the number of buffers handed out but not yet released.
func (p *Pool) Outstanding() int {
	return int(atomic.LoadInt64(&p.outstanding))
}
