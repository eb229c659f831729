package pipeline

import (
	"sync"
	"time"

	"github.com/lanikai/alohaplayer/internal/packet"
)

const (
	VideoQueueDepth = 16
	AudioQueueDepth = 16

	// Capacity of the demuxer's read and conversion buffers. Samples larger
	// than this are skipped.
	ScratchSize = 64 * 1024
)

// Timeouts bound every wait in the pipeline.
type Timeouts struct {
	// Video send in full-video mode. Expiry aborts the stream.
	VideoSend time.Duration

	// Video send in audio-priority mode. Expiry drops the unit.
	PriorityVideoSend time.Duration

	// Audio send. Expiry drops the unit.
	AudioSend time.Duration

	// Each end of stream marker.
	EOSSend time.Duration

	// Decoder and audio stage receives. Expiry is retried.
	VideoReceive time.Duration
	AudioReceive time.Duration

	// Display wait for a ready frame before re-checking flags.
	DisplayWait time.Duration

	// Decoder wait for the final frame to be shown.
	FinalDisplay time.Duration

	// Length of one bounded write to the audio sink.
	AudioWrite time.Duration

	// Audio-priority mode skips non-sync video units this far behind.
	SkipThreshold time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		VideoSend:         5 * time.Second,
		PriorityVideoSend: 100 * time.Millisecond,
		AudioSend:         200 * time.Millisecond,
		EOSSend:           1 * time.Second,
		VideoReceive:      10 * time.Second,
		AudioReceive:      5 * time.Second,
		DisplayWait:       100 * time.Millisecond,
		FinalDisplay:      1 * time.Second,
		AudioWrite:        50 * time.Millisecond,
		SkipThreshold:     200 * time.Millisecond,
	}
}

// WithDefaults fills zero fields from DefaultTimeouts.
func (t Timeouts) WithDefaults() Timeouts {
	d := DefaultTimeouts()
	fill := func(v *time.Duration, def time.Duration) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&t.VideoSend, d.VideoSend)
	fill(&t.PriorityVideoSend, d.PriorityVideoSend)
	fill(&t.AudioSend, d.AudioSend)
	fill(&t.EOSSend, d.EOSSend)
	fill(&t.VideoReceive, d.VideoReceive)
	fill(&t.AudioReceive, d.AudioReceive)
	fill(&t.DisplayWait, d.DisplayWait)
	fill(&t.FinalDisplay, d.FinalDisplay)
	fill(&t.AudioWrite, d.AudioWrite)
	fill(&t.SkipThreshold, d.SkipThreshold)
	return t
}

// State is everything the stages of one playback session share. It is built
// fresh for every session and never reused.
type State struct {
	Video *Queue[VideoUnit]

	// Nil when the session has no audio stage.
	Audio *Queue[AudioUnit]

	Frames   *Handoff
	Done     *Completion
	Flags    *Flags
	Pool     *packet.Pool
	Timeouts Timeouts

	mu        sync.Mutex
	videoInfo VideoInfo
	audioInfo AudioInfo
}

// NewState builds the shared state. withAudio decides whether an audio queue
// exists and whether completion waits for an audio stage.
func NewState(withAudio bool, timeouts Timeouts) *State {
	expected := StageDemux | StageDecode | StageDisplay
	s := &State{
		Video:    NewQueue[VideoUnit](VideoQueueDepth),
		Frames:   NewHandoff(),
		Flags:    NewFlags(),
		Pool:     packet.NewPool(ScratchSize),
		Timeouts: timeouts.WithDefaults(),
	}
	if withAudio {
		s.Audio = NewQueue[AudioUnit](AudioQueueDepth)
		expected |= StageAudio
	}
	s.Done = NewCompletion(expected)
	return s
}

func (s *State) SetVideoInfo(info VideoInfo) {
	s.mu.Lock()
	s.videoInfo = info
	s.mu.Unlock()
}

func (s *State) VideoInfo() VideoInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoInfo
}

func (s *State) SetAudioInfo(info AudioInfo) {
	s.mu.Lock()
	s.audioInfo = info
	s.mu.Unlock()
}

func (s *State) AudioInfo() AudioInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audioInfo
}

// DemuxFinished reports whether the demuxer has exited, after which no more
// units will arrive on either queue.
func (s *State) DemuxFinished() bool {
	return s.Done.IsDone(StageDemux)
}
