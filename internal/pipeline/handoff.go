package pipeline

import (
	"sync"
	"sync/atomic"
	"time"
)

// Handoff passes ownership of two frame buffers back and forth between the
// decoder and the display. The decoder takes a free frame, fills it and
// publishes it; the display takes the published frame, shows it, and returns
// the frame it showed before. A frame is therefore only ever touched by one
// side, and at most one frame is in flight.
type Handoff struct {
	ready chan *Frame
	free  chan *Frame
	gone  chan struct{}

	closeOnce sync.Once

	mu    sync.Mutex
	shown *Frame

	readySignals int64
	freeSignals  int64
}

func NewHandoff() *Handoff {
	return &Handoff{
		ready: make(chan *Frame, 1),
		free:  make(chan *Frame, 1),
		gone:  make(chan struct{}),
	}
}

// Prime makes the first frame available to the decoder. The second frame
// counts as being on screen until the display shows the first published one.
func (h *Handoff) Prime(first, second *Frame) {
	h.mu.Lock()
	h.shown = second
	h.mu.Unlock()
	h.Return(first)
}

// Shown is called by the display once f is on screen. The frame shown before
// it is given back to the decoder.
func (h *Handoff) Shown(f *Frame) {
	h.mu.Lock()
	prev := h.shown
	h.shown = f
	h.mu.Unlock()
	h.Return(prev)
}

// AcquireFree waits for a frame the decoder may write to. Returns false once
// the display has exited.
func (h *Handoff) AcquireFree() (*Frame, bool) {
	if h.closed() {
		return nil, false
	}
	select {
	case f := <-h.free:
		return f, true
	case <-h.gone:
		return nil, false
	}
}

// AcquireFreeTimeout is AcquireFree bounded by timeout.
func (h *Handoff) AcquireFreeTimeout(timeout time.Duration) (*Frame, bool) {
	if h.closed() {
		return nil, false
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case f := <-h.free:
		return f, true
	case <-h.gone:
		return nil, false
	case <-t.C:
		return nil, false
	}
}

// Publish hands a filled frame to the display. Returns false once the display
// has exited.
func (h *Handoff) Publish(f *Frame) bool {
	if h.closed() {
		return false
	}
	select {
	case h.ready <- f:
		atomic.AddInt64(&h.readySignals, 1)
		return true
	case <-h.gone:
		return false
	}
}

// SignalEnd wakes the display without a frame, so that it re-checks the end
// of stream flag.
func (h *Handoff) SignalEnd() {
	select {
	case h.ready <- nil:
		atomic.AddInt64(&h.readySignals, 1)
	default:
		// Display has a frame pending and will notice the flag after it.
	}
}

// AwaitReady waits at most timeout for the next published frame. A nil frame
// with ok set means the decoder signaled the end of the stream.
func (h *Handoff) AwaitReady(timeout time.Duration) (f *Frame, ok bool) {
	select {
	case f = <-h.ready:
		return f, true
	default:
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case f = <-h.ready:
		return f, true
	case <-t.C:
		return nil, false
	}
}

// Return gives a frame back to the decoder.
func (h *Handoff) Return(f *Frame) {
	if f == nil {
		return
	}
	select {
	case h.free <- f:
		atomic.AddInt64(&h.freeSignals, 1)
	default:
		panic("pipeline: more than one free frame returned")
	}
}

// Close records that the display has exited, releasing a decoder blocked in
// AcquireFree or Publish.
func (h *Handoff) Close() {
	h.closeOnce.Do(func() { close(h.gone) })
}

func (h *Handoff) closed() bool {
	select {
	case <-h.gone:
		return true
	default:
		return false
	}
}

// Gone returns a channel closed when the display has exited.
func (h *Handoff) Gone() <-chan struct{} {
	return h.gone
}

// Signals returns the number of ready and free signals issued so far.
func (h *Handoff) Signals() (ready, free int64) {
	return atomic.LoadInt64(&h.readySignals), atomic.LoadInt64(&h.freeSignals)
}
