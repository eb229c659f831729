package pipeline

import (
	"github.com/lanikai/alohaplayer/internal/packet"
)

// VideoUnit carries one start-code-delimited access unit from the demuxer to
// the decoder. Whoever holds the unit last releases its payload.
type VideoUnit struct {
	Payload *packet.SharedBuffer

	// Presentation timestamp in microseconds.
	PTS int64

	// Set for SPS/PPS units sent ahead of the first frame.
	ParamSet bool

	// End of stream marker. Carries no payload.
	EOS bool
}

func (u VideoUnit) Bytes() []byte {
	if u.Payload == nil {
		return nil
	}
	return u.Payload.Bytes()
}

func (u VideoUnit) Release() {
	u.Payload.Release()
}

// AudioUnit carries one raw AAC frame from the demuxer to the audio stage.
type AudioUnit struct {
	Payload *packet.SharedBuffer
	PTS     int64
	EOS     bool
}

func (u AudioUnit) Bytes() []byte {
	if u.Payload == nil {
		return nil
	}
	return u.Payload.Bytes()
}

func (u AudioUnit) Release() {
	u.Payload.Release()
}

// VideoInfo describes the video track and how it is placed on the display.
type VideoInfo struct {
	// Dimensions reported by the container. Zero if unknown.
	Width, Height int

	// Output size and position, filled in by the decoder.
	ScaledWidth, ScaledHeight int
	X, Y                      int
}

// AudioInfo describes the audio track. Immutable once published.
type AudioInfo struct {
	SampleRate int
	Channels   int

	// AudioSpecificConfig from the esds atom.
	Config []byte
}

// Frame is one RGB565 image sized to the scaled video resolution, together
// with its position on the display.
type Frame struct {
	Pix           []uint16
	X, Y          int
	Width, Height int
}

func NewFrame(x, y, width, height int) *Frame {
	return &Frame{
		Pix:    make([]uint16, width*height),
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}
