//////////////////////////////////////////////////////////////////////////////
//
// H.264 and AAC decoding through libavcodec
//
// Copyright 2019 Lanikai Labs LLC. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

//go:build ffmpeg

package media

import (
	"image"

	"github.com/nareix/joy4/av"
	"github.com/nareix/joy4/cgo/ffmpeg"
	"github.com/nareix/joy4/codec/aacparser"
	"github.com/nareix/joy4/codec/h264parser"
	"github.com/pkg/errors"

	"github.com/lanikai/alohaplayer/internal/media/h264"
)

// ffmpegVideoDecoder collects SPS/PPS from the stream, opens libavcodec
// once both are known, and feeds it each unit in length-prefixed form.
type ffmpegVideoDecoder struct {
	dec   *ffmpeg.VideoDecoder
	sps   []byte
	pps   []byte
	frame *ffmpeg.VideoFrame
}

// NewVideoDecoder returns an H.264 decoder backed by libavcodec.
func NewVideoDecoder() (VideoDecoder, error) {
	return &ffmpegVideoDecoder{}, nil
}

func (d *ffmpegVideoDecoder) Decode(unit []byte) (int, *image.YCbCr, error) {
	var slices []h264.NALU
	for _, nalu := range h264.SplitAnnexB(unit) {
		switch nalu.Type() {
		case h264.TypeSPS:
			d.sps = append(d.sps[:0], nalu...)
		case h264.TypePPS:
			d.pps = append(d.pps[:0], nalu...)
		default:
			slices = append(slices, nalu)
		}
	}

	if d.dec == nil && d.sps != nil && d.pps != nil {
		cd, err := h264parser.NewCodecDataFromSPSAndPPS(d.sps, d.pps)
		if err != nil {
			return len(unit), nil, errors.Wrap(err, "parameter sets")
		}
		if d.dec, err = ffmpeg.NewVideoDecoder(cd); err != nil {
			return len(unit), nil, errors.Wrap(err, "open h264 decoder")
		}
		log.Info("H.264 decoder opened: %dx%d", cd.Width(), cd.Height())
	}

	if len(slices) == 0 {
		return len(unit), nil, nil
	}
	if d.dec == nil {
		return len(unit), nil, errors.New("picture data before parameter sets")
	}

	d.release()
	frame, err := d.dec.Decode(h264.JoinAVCC(slices))
	if err != nil {
		return len(unit), nil, err
	}
	if frame == nil {
		return len(unit), nil, nil
	}
	d.frame = frame
	return len(unit), &frame.Image, nil
}

func (d *ffmpegVideoDecoder) release() {
	if d.frame != nil {
		d.frame.Free()
		d.frame = nil
	}
}

func (d *ffmpegVideoDecoder) Close() error {
	d.release()
	d.dec = nil
	return nil
}

// ffmpegAudioDecoder decodes raw AAC frames and resamples the output to
// interleaved S16.
type ffmpegAudioDecoder struct {
	dec *ffmpeg.AudioDecoder
	res *ffmpeg.Resampler
}

// NewAudioDecoder returns an AAC decoder for the given AudioSpecificConfig.
func NewAudioDecoder(config []byte, sampleRate, channels int) (AudioDecoder, error) {
	cd, err := aacparser.NewCodecDataFromMPEG4AudioConfigBytes(config)
	if err != nil {
		return nil, errors.Wrap(err, "AudioSpecificConfig")
	}

	dec, err := ffmpeg.NewAudioDecoder(cd)
	if err != nil {
		return nil, errors.Wrap(err, "open aac decoder")
	}
	if err := dec.Setup(); err != nil {
		dec.Close()
		return nil, errors.Wrap(err, "open aac decoder")
	}

	layout := cd.ChannelLayout()
	if channels == 1 {
		layout = av.CH_MONO
	} else if channels == 2 {
		layout = av.CH_STEREO
	}

	return &ffmpegAudioDecoder{
		dec: dec,
		res: &ffmpeg.Resampler{
			OutSampleFormat:  av.S16,
			OutSampleRate:    sampleRate,
			OutChannelLayout: layout,
		},
	}, nil
}

func (d *ffmpegAudioDecoder) Decode(frame, pcm []byte) (int, error) {
	ok, decoded, err := d.dec.Decode(frame)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	out, err := d.res.Resample(decoded)
	if err != nil {
		return 0, err
	}
	if len(out.Data) == 0 {
		return 0, nil
	}
	n := copy(pcm, out.Data[0])
	if n < len(out.Data[0]) {
		log.Warn("PCM truncated: %d of %d bytes", n, len(out.Data[0]))
	}
	return n, nil
}

func (d *ffmpegAudioDecoder) Close() error {
	d.dec.Close()
	return nil
}
