//////////////////////////////////////////////////////////////////////////////
//
// Config contains configuration data for Player
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package alohaplayer

import (
	"github.com/lanikai/alohaplayer/internal/container"
	"github.com/lanikai/alohaplayer/internal/media"
	"github.com/lanikai/alohaplayer/internal/pipeline"
)

const (
	defaultMaxDecodeWidth  = 1280
	defaultMaxDecodeHeight = 720
)

type Config struct {
	// Where video is shown. Required. The display outlives the session.
	Display media.Display

	// Where audio is played. Optional; without a sink the audio track is
	// ignored. The session closes the sink when it finishes.
	AudioSink media.AudioSink

	// Codec factories. Default to the ffmpeg decoders.
	NewVideoDecoder media.VideoDecoderFunc
	NewAudioDecoder media.AudioDecoderFunc

	// Opens the media file. Defaults to reading it from the filesystem.
	Open func(path string) (*container.File, error)

	// Largest video accepted. Larger files fail to start.
	MaxDecodeWidth  int
	MaxDecodeHeight int

	// Drop late video to keep audio flowing, instead of showing every frame.
	AudioPriority bool

	// Zero fields take the pipeline defaults.
	Timeouts pipeline.Timeouts
}

func (c Config) withDefaults() Config {
	if c.NewVideoDecoder == nil {
		c.NewVideoDecoder = media.NewVideoDecoder
	}
	if c.NewAudioDecoder == nil {
		c.NewAudioDecoder = media.NewAudioDecoder
	}
	if c.Open == nil {
		c.Open = container.OpenFile
	}
	if c.MaxDecodeWidth <= 0 || c.MaxDecodeHeight <= 0 {
		c.MaxDecodeWidth = defaultMaxDecodeWidth
		c.MaxDecodeHeight = defaultMaxDecodeHeight
	}
	c.Timeouts = c.Timeouts.WithDefaults()
	return c
}
