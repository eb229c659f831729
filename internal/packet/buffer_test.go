package packet

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSharedBufferDone(t *testing.T) {
	calls := 0
	buf := NewSharedBuffer([]byte{1, 2, 3}, 2, func() { calls++ })

	buf.Release()
	assert.Equal(t, 0, calls)
	assert.Equal(t, 3, buf.Len())

	buf.Release()
	assert.Equal(t, 1, calls)
	assert.Nil(t, buf.Bytes())

	assert.Panics(t, func() { buf.Release() })
}

func TestNilSharedBuffer(t *testing.T) {
	var buf *SharedBuffer
	assert.NotPanics(t, func() { buf.Release() })
	assert.Equal(t, 0, buf.Len())
}

func TestPoolOutstanding(t *testing.T) {
	pool := NewPool(16)

	a := pool.Copy([]byte("hello"))
	b := pool.Get(32) // larger than pool capacity
	assert.Equal(t, 2, pool.Outstanding())
	assert.Equal(t, []byte("hello"), a.Bytes())
	assert.Equal(t, 32, b.Len())

	b.Hold()
	b.Release()
	assert.Equal(t, 2, pool.Outstanding())

	a.Release()
	b.Release()
	assert.Equal(t, 0, pool.Outstanding())

	c := pool.Get(16)
	assert.Equal(t, 16, c.Len())
	c.Release()
	assert.Equal(t, 0, pool.Outstanding())
}

func TestPoolConcurrentRelease(t *testing.T) {
	pool := NewPool(64)
	ch := make(chan *SharedBuffer, 8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for buf := range ch {
			buf.Release()
		}
	}()

	for i := 0; i < 1000; i++ {
		ch <- pool.Get(i % 100)
	}
	close(ch)
	wg.Wait()

	assert.Equal(t, 0, pool.Outstanding())
}
