//////////////////////////////////////////////////////////////////////////////
//
// Media decoder interfaces for codecs
//
// Copyright 2019 Lanikai Labs LLC. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package media

import (
	"image"
	"io"
)

// VideoDecoder decodes H.264 units in start-code-delimited form.
type VideoDecoder interface {
	io.Closer

	// Decode consumes a prefix of unit and returns its length. When a picture
	// is complete, img holds it in 4:2:0 planar form with the decoder's own
	// (usually macroblock-aligned) strides. img remains valid until the next
	// call. A return of zero bytes consumed means the decoder cannot make
	// progress on this unit.
	Decode(unit []byte) (consumed int, img *image.YCbCr, err error)
}

// AudioDecoder decodes raw AAC frames (no ADTS header).
type AudioDecoder interface {
	io.Closer

	// Decode decodes one frame into pcm as interleaved signed 16-bit little
	// endian samples and returns the number of bytes written.
	Decode(frame, pcm []byte) (int, error)
}

type VideoDecoderFunc func() (VideoDecoder, error)

// AudioDecoderFunc opens a decoder for the given AudioSpecificConfig.
type AudioDecoderFunc func(config []byte, sampleRate, channels int) (AudioDecoder, error)
