package pipeline

import (
	"time"
)

// Queue is a bounded FIFO with timeout-bounded send and receive.
type Queue[T any] struct {
	ch chan T
}

func NewQueue[T any](depth int) *Queue[T] {
	return &Queue[T]{ch: make(chan T, depth)}
}

// Send enqueues v, waiting at most timeout for room. A negative timeout
// waits forever. Returns false if v was not enqueued, in which case the
// caller still owns it.
func (q *Queue[T]) Send(v T, timeout time.Duration) bool {
	select {
	case q.ch <- v:
		return true
	default:
	}
	if timeout == 0 {
		return false
	}
	if timeout < 0 {
		q.ch <- v
		return true
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case q.ch <- v:
		return true
	case <-t.C:
		return false
	}
}

// Receive dequeues the next value, waiting at most timeout.
func (q *Queue[T]) Receive(timeout time.Duration) (v T, ok bool) {
	select {
	case v = <-q.ch:
		return v, true
	default:
	}
	if timeout <= 0 {
		return v, false
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case v = <-q.ch:
		return v, true
	case <-t.C:
		return v, false
	}
}

// TryReceive dequeues the next value if one is immediately available.
func (q *Queue[T]) TryReceive() (v T, ok bool) {
	return q.Receive(0)
}

func (q *Queue[T]) Len() int {
	return len(q.ch)
}

func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}
