package pipeline

import (
	"sync"
	"sync/atomic"
)

// UnityVolume is the fixed-point volume factor that leaves samples unchanged.
const UnityVolume = 256

// Flags are the cooperative controls shared by all stages. Stages re-read
// them on every loop iteration; a change becomes visible to each stage at its
// next check.
type Flags struct {
	stop     atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once

	audioPriority atomic.Bool
	volume        atomic.Int32
	end           atomic.Bool
}

func NewFlags() *Flags {
	f := &Flags{stopCh: make(chan struct{})}
	f.volume.Store(UnityVolume)
	return f
}

// RequestStop asks every stage to wind down. It never blocks.
func (f *Flags) RequestStop() {
	f.stop.Store(true)
	f.stopOnce.Do(func() { close(f.stopCh) })
}

func (f *Flags) StopRequested() bool {
	return f.stop.Load()
}

// StopC returns a channel closed once a stop has been requested, for use in
// timed waits.
func (f *Flags) StopC() <-chan struct{} {
	return f.stopCh
}

func (f *Flags) SetAudioPriority(on bool) {
	f.audioPriority.Store(on)
}

func (f *Flags) AudioPriority() bool {
	return f.audioPriority.Load()
}

// SetVolume sets the volume in percent, clamped to 0..100.
func (f *Flags) SetVolume(percent int) {
	f.volume.Store(VolumeFactor(percent))
}

// Volume returns the fixed-point volume factor, 0..256.
func (f *Flags) Volume() int32 {
	return f.volume.Load()
}

// SetEnd marks the end of the video pipeline. Set by the decoder.
func (f *Flags) SetEnd() {
	f.end.Store(true)
}

func (f *Flags) Ended() bool {
	return f.end.Load()
}

// VolumeFactor maps a 0..100 percentage onto the 0..256 fixed-point scale.
func VolumeFactor(percent int) int32 {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	return int32(percent * UnityVolume / 100)
}
