//go:build !ffmpeg

package media

import "errors"

var errNoCodecs = errors.New("Codec support disabled (build with -tags ffmpeg)")

func NewVideoDecoder() (VideoDecoder, error) {
	return nil, errNoCodecs
}

func NewAudioDecoder(config []byte, sampleRate, channels int) (AudioDecoder, error) {
	return nil, errNoCodecs
}
