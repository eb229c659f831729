package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int](3)
	assert.Equal(t, 3, q.Cap())

	for i := 0; i < 3; i++ {
		assert.True(t, q.Send(i, time.Millisecond))
	}
	assert.False(t, q.Send(3, 0))
	assert.False(t, q.Send(3, 5*time.Millisecond))
	assert.Equal(t, 3, q.Len())

	for i := 0; i < 3; i++ {
		v, ok := q.Receive(time.Millisecond)
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}

	_, ok := q.TryReceive()
	assert.False(t, ok)
}

func TestQueueReceiveTimeout(t *testing.T) {
	q := NewQueue[string](1)

	start := time.Now()
	_, ok := q.Receive(20 * time.Millisecond)
	assert.False(t, ok)
	assert.True(t, time.Since(start) >= 20*time.Millisecond)
}

func TestQueueSendWaitsForRoom(t *testing.T) {
	q := NewQueue[int](1)
	q.Send(1, 0)

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Receive(time.Second)
	}()

	assert.True(t, q.Send(2, time.Second))
	v, ok := q.Receive(time.Second)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}
