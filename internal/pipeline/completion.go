package pipeline

import (
	"strings"
	"sync"
	"time"
)

// Stage identifies one of the pipeline's concurrent stages.
type Stage uint8

const (
	StageDemux Stage = 1 << iota
	StageDecode
	StageDisplay
	StageAudio
)

func (s Stage) String() string {
	var names []string
	for _, n := range []struct {
		s    Stage
		name string
	}{{StageDemux, "demux"}, {StageDecode, "decode"}, {StageDisplay, "display"}, {StageAudio, "audio"}} {
		if s&n.s != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Completion tracks which stages have finished. It is finished once every
// expected stage has reported in.
type Completion struct {
	mu       sync.Mutex
	expected Stage
	done     Stage
	finished chan struct{}
}

func NewCompletion(expected Stage) *Completion {
	c := &Completion{expected: expected, finished: make(chan struct{})}
	if expected == 0 {
		close(c.finished)
	}
	return c
}

// Done marks a stage finished. Marking a stage twice, or a stage that is not
// expected, has no further effect.
func (c *Completion) Done(s Stage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done&c.expected == c.expected {
		return
	}
	c.done |= s
	if c.done&c.expected == c.expected {
		close(c.finished)
	}
}

// IsDone reports whether every stage in s has finished.
func (c *Completion) IsDone(s Stage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done&s == s
}

// Pending returns the expected stages that have not finished yet.
func (c *Completion) Pending() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expected &^ c.done
}

func (c *Completion) Finished() bool {
	select {
	case <-c.finished:
		return true
	default:
		return false
	}
}

// C returns a channel closed when all expected stages have finished.
func (c *Completion) C() <-chan struct{} {
	return c.finished
}

func (c *Completion) Wait() {
	<-c.finished
}

// WaitTimeout waits at most timeout and reports whether all stages finished.
func (c *Completion) WaitTimeout(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-c.finished:
		return true
	case <-t.C:
		return false
	}
}
