package media

import (
	"sync/atomic"
	"time"
)

// NullAudioSink discards audio. When realtime is set it accepts samples no
// faster than a real device would, so that it can stand in as the audio
// clock.
type NullAudioSink struct {
	realtime bool

	// Bytes per second and per frame of configured audio.
	rate      int
	frameSize int
	written   int64

	// Playback position of the simulated device.
	clock time.Time
}

func NewNullAudioSink(realtime bool) *NullAudioSink {
	return &NullAudioSink{realtime: realtime}
}

func (s *NullAudioSink) Configure(rate, channels, format int) error {
	s.frameSize = channels * BytesPerSample(format)
	s.rate = rate * s.frameSize
	return nil
}

func (s *NullAudioSink) Write(p []byte) (int, error) {
	return s.WriteTimeout(p, -1)
}

// WriteTimeout accepts as many bytes as the simulated device can play
// within timeout. A negative timeout accepts everything.
func (s *NullAudioSink) WriteTimeout(p []byte, timeout time.Duration) (int, error) {
	if s.rate == 0 {
		return 0, errNotConfigured
	}
	if !s.realtime {
		atomic.AddInt64(&s.written, int64(len(p)))
		return len(p), nil
	}

	n := len(p)
	if timeout >= 0 {
		if limit := int(int64(s.rate) * int64(timeout) / int64(time.Second)); limit < n {
			n = limit - limit%s.frameSize
		}
	}
	if n == 0 {
		time.Sleep(timeout)
		return 0, nil
	}

	now := time.Now()
	if s.clock.Before(now) {
		s.clock = now
	}
	s.clock = s.clock.Add(time.Duration(int64(n) * int64(time.Second) / int64(s.rate)))
	time.Sleep(time.Until(s.clock))

	atomic.AddInt64(&s.written, int64(n))
	return n, nil
}

// Written returns the number of bytes accepted so far.
func (s *NullAudioSink) Written() int64 {
	return atomic.LoadInt64(&s.written)
}

func (s *NullAudioSink) Close() error {
	return nil
}

func init() {
	RegisterAudioSinkType("null", func(path string) (AudioSink, error) {
		return NewNullAudioSink(path != "fast"), nil
	})
}
