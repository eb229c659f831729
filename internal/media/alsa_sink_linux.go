//////////////////////////////////////////////////////////////////////////////
//
// Media sinks unique to Linux:
//
// * ALSAAudioSink: Advanced Linux Sound Architecture (ALSA) audio sink
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

//go:build linux && alsa

package media

// #cgo pkg-config: alsa
// #include <errno.h>
// #include <stdlib.h>
// #include <alsa/asoundlib.h>
import "C"
import (
	"errors"
	"time"
	"unsafe"
)

// ALSAAudioSink writes audio to an ALSA soundcard for playback
type ALSAAudioSink struct {
	handle    *C.struct__snd_pcm
	framesize int
}

// NewALSAAudioSink returns an ALSA audio consumer
func NewALSAAudioSink(devname string) (*ALSAAudioSink, error) {
	as := &ALSAAudioSink{}

	// Open ALSA playback device
	name := C.CString(devname)
	err := C.snd_pcm_open(&as.handle, name, C.SND_PCM_STREAM_PLAYBACK, C.SND_PCM_NONBLOCK)
	C.free(unsafe.Pointer(name))
	if err < 0 {
		return nil, alsaError(err)
	}

	return as, nil
}

func alsaError(err C.int) error {
	return errors.New(C.GoString(C.snd_strerror(err)))
}

// Close ALSA playback device
func (as *ALSAAudioSink) Close() error {
	// Drop remaining unprocessed samples in the buffer
	if err := C.snd_pcm_drop(as.handle); err < 0 {
		return alsaError(err)
	}

	// Close playback device
	if err := C.snd_pcm_close(as.handle); err < 0 {
		return alsaError(err)
	}
	return nil
}

// Configure ALSA playback device
func (as *ALSAAudioSink) Configure(rate, channels, format int) error {
	var hwparams *C.struct__snd_pcm_hw_params

	// Allocate hardware parameters structure
	if err := C.snd_pcm_hw_params_malloc(&hwparams); err < 0 {
		return alsaError(err)
	}
	defer C.snd_pcm_hw_params_free(hwparams)

	// Initialize hardware parameters structure
	if err := C.snd_pcm_hw_params_any(as.handle, hwparams); err < 0 {
		return alsaError(err)
	}

	// Set access type
	if err := C.snd_pcm_hw_params_set_access(
		as.handle,
		hwparams,
		C.SND_PCM_ACCESS_RW_INTERLEAVED,
	); err < 0 {
		return alsaError(err)
	}

	// Set sample format
	var pcmFormat C.snd_pcm_format_t
	switch format {
	case S8:
		pcmFormat = C.SND_PCM_FORMAT_S8
	case U8:
		pcmFormat = C.SND_PCM_FORMAT_U8
	case S16LE:
		pcmFormat = C.SND_PCM_FORMAT_S16_LE
	default:
		return errNotImplemented
	}
	if err := C.snd_pcm_hw_params_set_format(as.handle, hwparams, pcmFormat); err < 0 {
		return alsaError(err)
	}
	as.framesize = BytesPerSample(format) * channels

	// Set number of channels
	if err := C.snd_pcm_hw_params_set_channels(
		as.handle,
		hwparams,
		C.uint(channels),
	); err < 0 {
		return alsaError(err)
	}

	// Set sample rate
	if err := C.snd_pcm_hw_params_set_rate(
		as.handle,
		hwparams,
		C.uint(rate),
		0,
	); err < 0 {
		return alsaError(err)
	}

	// Set playback device parameters
	if err := C.snd_pcm_hw_params(as.handle, hwparams); err < 0 {
		return alsaError(err)
	}

	if err := C.snd_pcm_prepare(as.handle); err < 0 {
		return alsaError(err)
	}

	return nil
}

// Write audio byte buffer to the playback device, blocking until all of it
// has been accepted.
func (as *ALSAAudioSink) Write(p []byte) (int, error) {
	if as.framesize == 0 {
		return 0, errNotConfigured
	}
	written := 0
	for len(p)-written >= as.framesize {
		n, err := as.WriteTimeout(p[written:], time.Second)
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// WriteTimeout waits at most timeout for room in the device buffer, then
// writes as many whole frames as fit.
func (as *ALSAAudioSink) WriteTimeout(p []byte, timeout time.Duration) (int, error) {
	if as.framesize == 0 {
		return 0, errNotConfigured
	}
	numframes := len(p) / as.framesize
	if numframes == 0 {
		return 0, nil
	}

	ready := C.snd_pcm_wait(as.handle, C.int(timeout/time.Millisecond))
	if ready == 0 {
		// Timed out, device buffer still full.
		return 0, nil
	}
	if ready < 0 {
		if err := C.snd_pcm_recover(as.handle, ready, 1); err < 0 {
			return 0, alsaError(err)
		}
		return 0, nil
	}

	buf := C.CBytes(p[:numframes*as.framesize])
	n := C.snd_pcm_writei(as.handle, buf, C.snd_pcm_uframes_t(numframes))
	C.free(buf)
	if n < 0 {
		if n == -C.EAGAIN {
			return 0, nil
		}
		if err := C.snd_pcm_recover(as.handle, C.int(n), 1); err < 0 {
			return 0, alsaError(err)
		}
		return 0, nil
	}

	return int(n) * as.framesize, nil
}

func init() {
	RegisterAudioSinkType("alsa", func(path string) (AudioSink, error) {
		if path == "" {
			path = "default"
		}
		sink, err := NewALSAAudioSink(path)
		if err != nil {
			return nil, err
		}
		return sink, nil
	})
}
