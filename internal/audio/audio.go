// Package audio decodes the audio queue and plays it through an AudioSink.
//
// There is no timestamp pacing here. The sink accepts samples at its own
// rate, so it is the clock the rest of the pipeline keeps up with.
package audio

import (
	"github.com/pkg/errors"

	"github.com/lanikai/alohaplayer/internal/logging"
	"github.com/lanikai/alohaplayer/internal/media"
	"github.com/lanikai/alohaplayer/internal/pipeline"
)

var log = logging.DefaultLogger.WithTag("audio")

var errNoDecoder = errors.New("audio: no audio decoder")

// Size of the decoded PCM buffer. Large enough for one AAC frame of 1024
// stereo samples at 16 bits, with room to spare.
const pcmBufferSize = 8 * 1024

// Consecutive writes that accept nothing before the rest of a frame is given
// up on.
const maxStalledWrites = 40

type Config struct {
	NewDecoder media.AudioDecoderFunc

	// Qualifies log messages, usually with the session id.
	Session string
}

type Stats struct {
	Frames  int
	Errors  int
	Written int64
	Drained int
}

// Output plays decoded audio on a sink. It owns the sink and closes it when
// Run returns.
type Output struct {
	cfg  Config
	st   *pipeline.State
	sink media.AudioSink
	log  *logging.Logger

	dec       media.AudioDecoder
	pcm       []byte
	frameSize int

	// Set once a write fails, to keep the log quiet afterwards.
	writeFailed bool

	stats Stats
}

func New(st *pipeline.State, sink media.AudioSink, cfg Config) *Output {
	l := log
	if cfg.Session != "" {
		l = log.Qualify(cfg.Session)
	}
	return &Output{
		cfg:  cfg,
		st:   st,
		sink: sink,
		log:  l,
		pcm:  make([]byte, pcmBufferSize),
	}
}

// Run plays the audio queue until the end of the stream or a stop request.
func (o *Output) Run() error {
	defer o.finish()

	u, ok := o.next()
	if !ok {
		return nil
	}
	if u.EOS {
		o.log.Info("No audio in stream")
		return nil
	}

	if err := o.setup(); err != nil {
		u.Release()
		o.log.Error("%v", err)
		o.discard()
		return err
	}

	for {
		o.play(u)
		if o.st.Flags.StopRequested() {
			return nil
		}
		if u, ok = o.next(); !ok || u.EOS {
			return nil
		}
	}
}

func (o *Output) Stats() Stats {
	return o.stats
}

// next waits for the next unit. It gives up when a stop is requested or the
// demuxer has gone without sending one.
func (o *Output) next() (pipeline.AudioUnit, bool) {
	for {
		u, ok := o.st.Audio.Receive(o.st.Timeouts.AudioReceive)
		if ok {
			return u, true
		}
		if o.st.Flags.StopRequested() {
			return u, false
		}
		if o.st.DemuxFinished() && o.st.Audio.Len() == 0 {
			o.log.Warn("Demuxer finished without end of stream")
			return u, false
		}
		o.log.Debug("Waiting for audio")
	}
}

func (o *Output) setup() error {
	info := o.st.AudioInfo()
	if info.SampleRate <= 0 || info.Channels <= 0 {
		return errors.Errorf("audio: invalid format %d Hz, %d channels", info.SampleRate, info.Channels)
	}
	if err := o.sink.Configure(info.SampleRate, info.Channels, media.S16LE); err != nil {
		return errors.Wrap(err, "audio: configuring sink")
	}
	if o.cfg.NewDecoder == nil {
		return errNoDecoder
	}
	dec, err := o.cfg.NewDecoder(info.Config, info.SampleRate, info.Channels)
	if err != nil {
		return errors.Wrap(err, "audio: opening decoder")
	}
	o.dec = dec
	o.frameSize = media.BytesPerSample(media.S16LE) * info.Channels
	o.log.Info("Playing %d Hz, %d channels", info.SampleRate, info.Channels)
	return nil
}

// discard frees units until the end of the stream, so that the demuxer is
// not left sending to a dead consumer.
func (o *Output) discard() {
	for {
		u, ok := o.next()
		if !ok {
			return
		}
		u.Release()
		o.stats.Drained++
		if u.EOS || o.st.Flags.StopRequested() {
			return
		}
	}
}

func (o *Output) play(u pipeline.AudioUnit) {
	defer u.Release()

	n, err := o.dec.Decode(u.Bytes(), o.pcm)
	if err != nil {
		o.stats.Errors++
		o.log.Debug("Decode error at %d us: %v", u.PTS, err)
		return
	}
	o.stats.Frames++

	if tail := n % o.frameSize; tail != 0 {
		o.log.Debug("Dropping %d bytes of partial sample frame", tail)
		n -= tail
	}
	pcm := o.pcm[:n]
	ApplyVolume(pcm, o.st.Flags.Volume())
	o.write(pcm)
}

// write hands pcm to the sink in bounded chunks, giving up on a stop request
// or a sink that stops accepting data.
func (o *Output) write(pcm []byte) {
	stalled := 0
	for len(pcm) > 0 {
		if o.st.Flags.StopRequested() {
			return
		}
		n, err := o.sink.WriteTimeout(pcm, o.st.Timeouts.AudioWrite)
		o.stats.Written += int64(n)
		if err != nil {
			if !o.writeFailed {
				o.log.Warn("Write: %v", err)
				o.writeFailed = true
			}
			o.stats.Errors++
			return
		}
		if n == 0 {
			if stalled++; stalled >= maxStalledWrites {
				o.log.Warn("Sink stalled, dropping %d bytes", len(pcm))
				o.stats.Errors++
				return
			}
			continue
		}
		stalled = 0
		pcm = pcm[n:]
	}
}

func (o *Output) finish() {
	if o.dec != nil {
		o.dec.Close()
	}
	if err := o.sink.Close(); err != nil {
		o.log.Warn("Close: %v", err)
	}

	for {
		u, ok := o.st.Audio.TryReceive()
		if !ok {
			break
		}
		u.Release()
		o.stats.Drained++
	}

	s := o.stats
	o.log.Info("Done: %d frames, %d errors, %d bytes written, %d drained",
		s.Frames, s.Errors, s.Written, s.Drained)
}
