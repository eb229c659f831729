//////////////////////////////////////////////////////////////////////////////
//
// Media sink interfaces
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package media

import (
	"io"
	"time"
)

// Sample formats understood by AudioSink.Configure.
const (
	S8 = iota
	U8
	S16LE
)

// BytesPerSample returns the size of one sample in the given format.
func BytesPerSample(format int) int {
	if format == S16LE {
		return 2
	}
	return 1
}

// MediaSink is the interface for media sinks (e.g. speaker, display)
type MediaSink interface {
	io.Closer
	io.Writer
}

// AudioSink is the interface for audio playback devices. Writes block at the
// device's sample rate, which makes the sink the audio clock.
type AudioSink interface {
	MediaSink

	// Configure audio sink sample rate, number of channels, and sample format
	Configure(rate int, channels int, format int) error

	// WriteTimeout writes as much of p as the device accepts within timeout
	// and returns the number of bytes written. A short write is not an error;
	// callers retry with the remainder.
	WriteTimeout(p []byte, timeout time.Duration) (int, error)
}

// Display is a raster output device taking RGB565 pixels.
type Display interface {
	Width() int
	Height() int

	// Clear fills the screen with black.
	Clear() error

	// Blit copies a w x h block of packed pixels to position (x, y).
	Blit(x, y, w, h int, pix []uint16) error
}
