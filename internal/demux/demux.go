// Package demux reads an MP4 file and feeds its H.264 and AAC samples, in
// timestamp order, to the video and audio queues of a playback session.
package demux

import (
	"time"

	"github.com/pkg/errors"

	"github.com/lanikai/alohaplayer/internal/container"
	"github.com/lanikai/alohaplayer/internal/logging"
	"github.com/lanikai/alohaplayer/internal/media/h264"
	"github.com/lanikai/alohaplayer/internal/pipeline"
)

var log = logging.DefaultLogger.WithTag("demux")

var (
	ErrNoVideoTrack = errors.New("demux: no H.264 video track")
	ErrResolution   = errors.New("demux: video resolution exceeds decoder limit")
	ErrSendTimeout  = errors.New("demux: timed out sending video")
)

// Opener opens and parses a media file.
type Opener func(path string) (*container.File, error)

type Config struct {
	Path string

	// Defaults to container.OpenFile.
	Open Opener

	// Largest video the decoder accepts. Zero means no limit.
	MaxWidth, MaxHeight int

	// Qualifies log messages, usually with the session id.
	Session string
}

// Stats counts what happened to each sample.
type Stats struct {
	VideoSent    int
	Skipped      int // behind schedule in audio-priority mode, never read
	Dropped      int // video send timed out in audio-priority mode
	Invalid      int // empty, oversized or unconvertible samples
	AudioSent    int
	AudioDropped int
}

type Demuxer struct {
	cfg Config
	st  *pipeline.State
	log *logging.Logger

	// Wall clock, replaceable in tests.
	now func() time.Time

	file         *container.File
	video, audio *container.Track
	lengthSize   int

	// Audio-priority mode, sampled once at setup.
	priority bool
	start    time.Time

	// Raw sample and Annex B conversion buffers.
	read []byte
	conv []byte

	stats Stats
}

func New(st *pipeline.State, cfg Config) *Demuxer {
	if cfg.Open == nil {
		cfg.Open = container.OpenFile
	}
	l := log
	if cfg.Session != "" {
		l = log.Qualify(cfg.Session)
	}
	return &Demuxer{
		cfg:  cfg,
		st:   st,
		log:  l,
		now:  time.Now,
		read: make([]byte, pipeline.ScratchSize),
		conv: make([]byte, pipeline.ScratchSize),
	}
}

// Run demultiplexes the whole file, or until a stop is requested. End of
// stream markers are always published before Run returns, whether or not
// setup succeeded. A stop request is not an error.
func (d *Demuxer) Run() error {
	defer d.publishEOS()

	if err := d.setup(); err != nil {
		d.log.Error("%v", err)
		return err
	}
	defer d.file.Close()

	d.sendParamSets()

	if err := d.loop(); err != nil {
		d.log.Error("%v", err)
		return err
	}
	return nil
}

// Stats returns the sample counters. Only meaningful after Run returns.
func (d *Demuxer) Stats() Stats {
	return d.stats
}

func (d *Demuxer) setup() error {
	f, err := d.cfg.Open(d.cfg.Path)
	if err != nil {
		return errors.Wrapf(err, "demux: opening %s", d.cfg.Path)
	}

	video := f.VideoTrack()
	if video == nil {
		f.Close()
		return ErrNoVideoTrack
	}
	if d.cfg.MaxWidth > 0 && d.cfg.MaxHeight > 0 &&
		(video.Width > d.cfg.MaxWidth || video.Height > d.cfg.MaxHeight) {
		f.Close()
		return errors.Wrapf(ErrResolution, "%dx%d, limit %dx%d",
			video.Width, video.Height, d.cfg.MaxWidth, d.cfg.MaxHeight)
	}
	if video.Width == 0 || video.Height == 0 {
		d.log.Warn("Video track does not declare its dimensions")
	}

	d.file = f
	d.video = video
	d.lengthSize = video.LengthSize
	if d.lengthSize == 0 {
		d.lengthSize = 4
	}
	d.st.SetVideoInfo(pipeline.VideoInfo{Width: video.Width, Height: video.Height})
	d.log.Info("Video: %dx%d, %d samples, %d sync", video.Width, video.Height,
		video.NumSamples(), len(video.SyncSamples))

	if d.st.Audio != nil {
		if audio := f.AudioTrack(); audio != nil {
			d.audio = audio
			d.st.SetAudioInfo(pipeline.AudioInfo{
				SampleRate: audio.SampleRate,
				Channels:   audio.Channels,
				Config:     audio.Config,
			})
			d.log.Info("Audio: %d Hz, %d channels, %d samples",
				audio.SampleRate, audio.Channels, audio.NumSamples())
		} else {
			d.log.Info("No AAC audio track")
		}
	}

	d.priority = d.st.Flags.AudioPriority() && d.audio != nil
	if d.priority {
		d.log.Info("Audio-priority mode")
	}
	return nil
}

// sendParamSets publishes the SPS and PPS ahead of the first frame. The
// decoder cannot do anything useful until they arrive, so they get the long
// timeout, but a failure is not fatal: in-band parameter sets may follow.
func (d *Demuxer) sendParamSets() {
	sets := make([][]byte, 0, len(d.video.SPS)+len(d.video.PPS))
	sets = append(sets, d.video.SPS...)
	sets = append(sets, d.video.PPS...)
	for _, ps := range sets {
		unit := pipeline.VideoUnit{
			Payload:  d.st.Pool.Copy(h264.WithStartCode(ps)),
			ParamSet: true,
		}
		if !d.st.Video.Send(unit, d.st.Timeouts.VideoSend) {
			unit.Release()
			d.log.Warn("Timed out sending parameter set")
		}
	}
}

// loop merges the two tracks by timestamp. Video goes first on ties, and a
// track that runs out simply stops competing.
func (d *Demuxer) loop() error {
	nv := d.video.NumSamples()
	na := 0
	if d.audio != nil {
		na = d.audio.NumSamples()
	}

	d.start = d.now()
	vi, ai := 0, 0
	for vi < nv || ai < na {
		if d.st.Flags.StopRequested() {
			d.log.Info("Stop requested at video sample %d, audio sample %d", vi, ai)
			return nil
		}

		if vi < nv && (ai >= na || d.video.PTS(vi) <= d.audio.PTS(ai)) {
			if err := d.sendVideo(vi); err != nil {
				return err
			}
			vi++
		} else {
			if err := d.sendAudio(ai); err != nil {
				return err
			}
			ai++
		}
	}
	return nil
}

// behind reports how far the sample at pts lags the wall clock.
func (d *Demuxer) behind(pts int64) time.Duration {
	return d.now().Sub(d.start) - time.Duration(pts)*time.Microsecond
}

func (d *Demuxer) sendVideo(i int) error {
	pts := d.video.PTS(i)
	sync := d.video.IsSync(i)

	// Late non-sync samples are skipped before they are read. The first
	// presentation instant is never skipped.
	if d.priority && !sync && pts > 0 && d.behind(pts) > d.st.Timeouts.SkipThreshold {
		d.stats.Skipped++
		return nil
	}

	s := d.video.Samples[i]
	if s.Size <= 0 || s.Size > len(d.read) {
		d.log.Debug("Skipping video sample %d of %d bytes", i, s.Size)
		d.stats.Invalid++
		return nil
	}
	raw, err := d.file.ReadSample(d.video, i, d.read)
	if err != nil {
		return errors.Wrapf(err, "demux: reading video sample %d", i)
	}
	n := h264.AVCCToAnnexB(d.conv, raw, d.lengthSize)
	if n == 0 {
		d.stats.Invalid++
		return nil
	}
	if sync {
		d.log.Debug("Keyframe at sample %d, %d us", i, pts)
	}

	unit := pipeline.VideoUnit{Payload: d.st.Pool.Copy(d.conv[:n]), PTS: pts}
	if d.priority {
		if !d.st.Video.Send(unit, d.st.Timeouts.PriorityVideoSend) {
			unit.Release()
			d.stats.Dropped++
			return nil
		}
	} else if !d.st.Video.Send(unit, d.st.Timeouts.VideoSend) {
		unit.Release()
		return errors.Wrapf(ErrSendTimeout, "sample %d", i)
	}
	d.stats.VideoSent++
	return nil
}

func (d *Demuxer) sendAudio(i int) error {
	s := d.audio.Samples[i]
	if s.Size <= 0 || s.Size > len(d.read) {
		d.log.Debug("Skipping audio sample %d of %d bytes", i, s.Size)
		d.stats.Invalid++
		return nil
	}
	raw, err := d.file.ReadSample(d.audio, i, d.read)
	if err != nil {
		return errors.Wrapf(err, "demux: reading audio sample %d", i)
	}

	unit := pipeline.AudioUnit{Payload: d.st.Pool.Copy(raw), PTS: d.audio.PTS(i)}
	if !d.st.Audio.Send(unit, d.st.Timeouts.AudioSend) {
		unit.Release()
		d.stats.AudioDropped++
		return nil
	}
	d.stats.AudioSent++
	return nil
}

// publishEOS sends the audio marker, then the video marker. Neither waits
// longer than the end of stream timeout.
func (d *Demuxer) publishEOS() {
	if d.st.Audio != nil {
		if !d.st.Audio.Send(pipeline.AudioUnit{EOS: true}, d.st.Timeouts.EOSSend) {
			d.log.Warn("Timed out sending audio end of stream")
		}
	}
	if !d.st.Video.Send(pipeline.VideoUnit{EOS: true}, d.st.Timeouts.EOSSend) {
		d.log.Warn("Timed out sending video end of stream")
	}

	s := d.stats
	d.log.Info("Done: video sent %d, skipped %d, dropped %d, invalid %d; audio sent %d, dropped %d",
		s.VideoSent, s.Skipped, s.Dropped, s.Invalid, s.AudioSent, s.AudioDropped)
}
