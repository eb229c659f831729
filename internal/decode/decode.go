// Package decode turns the video queue into RGB565 frames for the display.
package decode

import (
	"image"
	"runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/lanikai/alohaplayer/internal/color"
	"github.com/lanikai/alohaplayer/internal/logging"
	"github.com/lanikai/alohaplayer/internal/media"
	"github.com/lanikai/alohaplayer/internal/pipeline"
)

var log = logging.DefaultLogger.WithTag("decode")

var errNoDecoder = errors.New("decode: no video decoder")

type Config struct {
	// Output resolution. Also the assumed video size when the container
	// does not report one.
	DisplayWidth, DisplayHeight int

	NewDecoder media.VideoDecoderFunc

	// Qualifies log messages, usually with the session id.
	Session string
}

type Stats struct {
	Units   int
	Decoded int // frames handed to the display
	Skipped int // units the decoder rejected, parameter sets excluded
	Dropped int // frames decoded after the display went away
}

type Decoder struct {
	cfg Config
	st  *pipeline.State
	log *logging.Logger

	dec    media.VideoDecoder
	info   pipeline.VideoInfo
	scaled bool
	start  time.Time

	stats Stats
}

func New(st *pipeline.State, cfg Config) *Decoder {
	l := log
	if cfg.Session != "" {
		l = log.Qualify(cfg.Session)
	}
	return &Decoder{cfg: cfg, st: st, log: l}
}

// ComputeScaling fits a width x height picture onto a dispWidth x dispHeight
// screen. Pictures that already fit are left alone; larger ones are shrunk
// with their aspect ratio kept and their dimensions rounded down to even.
// x and y center the result.
func ComputeScaling(width, height, dispWidth, dispHeight int) (scaledWidth, scaledHeight, x, y int) {
	scaledWidth, scaledHeight = width, height
	if width > dispWidth || height > dispHeight {
		if dispWidth*height <= dispHeight*width {
			scaledWidth = dispWidth
			scaledHeight = height * dispWidth / width
		} else {
			scaledHeight = dispHeight
			scaledWidth = width * dispHeight / height
		}
		scaledWidth &^= 1
		scaledHeight &^= 1
	}
	x = (dispWidth - scaledWidth) / 2
	y = (dispHeight - scaledHeight) / 2
	return
}

// Run decodes until the end of the stream. Whatever happens, it marks the
// end of the video pipeline, wakes the display, and frees every unit left in
// the video queue before returning.
func (d *Decoder) Run() error {
	defer d.finish()

	for {
		u := d.receive()
		if u.EOS {
			return nil
		}
		d.stats.Units++

		if d.dec == nil {
			if err := d.setup(); err != nil {
				u.Release()
				d.log.Error("%v", err)
				return err
			}
		}

		d.decode(u)
		u.Release()

		if !u.ParamSet && u.PTS > 0 {
			d.pace(u.PTS)
		}
	}
}

func (d *Decoder) Stats() Stats {
	return d.stats
}

// receive waits for the next unit. A demuxer that exited without getting its
// end of stream marker through counts as an end of stream.
func (d *Decoder) receive() pipeline.VideoUnit {
	for {
		u, ok := d.st.Video.Receive(d.st.Timeouts.VideoReceive)
		if ok {
			return u
		}
		if d.st.DemuxFinished() && d.st.Video.Len() == 0 {
			d.log.Warn("Demuxer finished without end of stream")
			return pipeline.VideoUnit{EOS: true}
		}
		d.log.Debug("Waiting for video")
	}
}

func (d *Decoder) setup() error {
	info := d.st.VideoInfo()
	if info.Width <= 0 || info.Height <= 0 {
		d.log.Warn("Unknown video size, assuming %dx%d", d.cfg.DisplayWidth, d.cfg.DisplayHeight)
		info.Width, info.Height = d.cfg.DisplayWidth, d.cfg.DisplayHeight
	}
	info.ScaledWidth, info.ScaledHeight, info.X, info.Y =
		ComputeScaling(info.Width, info.Height, d.cfg.DisplayWidth, d.cfg.DisplayHeight)
	if info.ScaledWidth <= 0 || info.ScaledHeight <= 0 {
		return errors.Errorf("decode: cannot show %dx%d video on %dx%d display",
			info.Width, info.Height, d.cfg.DisplayWidth, d.cfg.DisplayHeight)
	}

	if d.cfg.NewDecoder == nil {
		return errNoDecoder
	}
	dec, err := d.cfg.NewDecoder()
	if err != nil {
		return errors.Wrap(err, "decode: opening decoder")
	}

	d.dec = dec
	d.info = info
	d.scaled = info.ScaledWidth != info.Width || info.ScaledHeight != info.Height
	d.st.SetVideoInfo(info)
	d.log.Info("Video %dx%d shown as %dx%d at (%d,%d)", info.Width, info.Height,
		info.ScaledWidth, info.ScaledHeight, info.X, info.Y)

	newFrame := func() *pipeline.Frame {
		return pipeline.NewFrame(info.X, info.Y, info.ScaledWidth, info.ScaledHeight)
	}
	d.st.Frames.Prime(newFrame(), newFrame())
	d.start = time.Now()
	return nil
}

// decode feeds one unit to the decoder, which may take several calls to
// consume it.
func (d *Decoder) decode(u pipeline.VideoUnit) {
	data := u.Bytes()
	for len(data) > 0 {
		n, img, err := d.dec.Decode(data)
		if err != nil {
			if !u.ParamSet {
				d.stats.Skipped++
			}
			d.log.Debug("Decode error at %d us: %v", u.PTS, err)
			return
		}
		if img != nil {
			d.present(img)
		}
		if n <= 0 {
			return
		}
		data = data[n:]
	}
}

// present converts img into the free frame and publishes it. Blocks until the
// display returns a frame.
func (d *Decoder) present(img *image.YCbCr) {
	f, ok := d.st.Frames.AcquireFree()
	if !ok {
		d.stats.Dropped++
		return
	}

	w, h := img.Rect.Dx(), img.Rect.Dy()
	if !d.scaled && w == f.Width && h == f.Height {
		color.I420ToRGB565(f.Pix, img, f.Width, f.Height)
	} else {
		color.I420ToRGB565Scaled(f.Pix, img, w, h, f.Width, f.Height)
	}

	if !d.st.Frames.Publish(f) {
		d.stats.Dropped++
		return
	}
	d.stats.Decoded++
}

// pace sleeps until pts comes due, counted from the first unit. The sleep
// ends early on a stop request.
func (d *Decoder) pace(pts int64) {
	delay := time.Duration(pts)*time.Microsecond - time.Since(d.start)
	if delay > time.Millisecond {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-d.st.Flags.StopC():
		}
		return
	}
	if !d.st.Flags.AudioPriority() {
		runtime.Gosched()
	}
}

func (d *Decoder) finish() {
	if d.dec != nil {
		if _, ok := d.st.Frames.AcquireFreeTimeout(d.st.Timeouts.FinalDisplay); !ok {
			d.log.Debug("Last frame not shown in time")
		}
		d.dec.Close()
	}

	d.st.Flags.SetEnd()
	d.st.Frames.SignalEnd()

	drained := 0
	for {
		u, ok := d.st.Video.TryReceive()
		if !ok {
			break
		}
		u.Release()
		drained++
	}

	s := d.stats
	elapsed := time.Duration(0)
	if !d.start.IsZero() {
		elapsed = time.Since(d.start)
	}
	fps := 0.0
	if elapsed > 0 {
		fps = float64(s.Decoded) / elapsed.Seconds()
	}
	d.log.Info("Done: %d units, %d frames, %d skipped, %d dropped, %d drained, %.1fs, %.1f fps",
		s.Units, s.Decoded, s.Skipped, s.Dropped, drained, elapsed.Seconds(), fps)
}
