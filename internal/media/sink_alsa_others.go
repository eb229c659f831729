//////////////////////////////////////////////////////////////////////////////
//
// Stubs for unsupported sinks for compilation and tests to succeed.
//
// Copyright 2019 Lanikai Labs LLC. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

//go:build !linux || !alsa

package media

import "time"

type ALSAAudioSink struct {
}

func NewALSAAudioSink(devname string) (*ALSAAudioSink, error) {
	return nil, errNotSupported
}

func (as *ALSAAudioSink) Close() error {
	return errNotSupported
}

func (as *ALSAAudioSink) Configure(rate, channels, format int) error {
	return errNotSupported
}

func (as *ALSAAudioSink) Write(p []byte) (int, error) {
	return 0, errNotSupported
}

func (as *ALSAAudioSink) WriteTimeout(p []byte, timeout time.Duration) (int, error) {
	return 0, errNotSupported
}

func init() {
	RegisterAudioSinkType("alsa", func(path string) (AudioSink, error) {
		return nil, errNotSupported
	})
}
