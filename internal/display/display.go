// Package display shows the frames published by the decoder.
package display

import (
	"github.com/lanikai/alohaplayer/internal/logging"
	"github.com/lanikai/alohaplayer/internal/media"
	"github.com/lanikai/alohaplayer/internal/pipeline"
)

var log = logging.DefaultLogger.WithTag("display")

type Config struct {
	// Qualifies log messages, usually with the session id.
	Session string
}

type Stats struct {
	Frames int
	Errors int
}

// Presenter copies each ready frame to a display and hands the frame it
// replaced back to the decoder.
type Presenter struct {
	st  *pipeline.State
	out media.Display
	log *logging.Logger

	stats Stats
}

func New(st *pipeline.State, out media.Display, cfg Config) *Presenter {
	l := log
	if cfg.Session != "" {
		l = log.Qualify(cfg.Session)
	}
	return &Presenter{st: st, out: out, log: l}
}

// Run shows frames until the decoder marks the end of the pipeline or a stop
// is requested. On return the display is blank and the decoder can no longer
// block on it.
func (p *Presenter) Run() error {
	defer p.finish()

	if err := p.out.Clear(); err != nil {
		p.log.Warn("Clear: %v", err)
	}

	for {
		f, ok := p.st.Frames.AwaitReady(p.st.Timeouts.DisplayWait)
		if ok && f != nil {
			p.show(f)
		}
		if p.st.Flags.StopRequested() {
			p.log.Debug("Stop requested")
			return nil
		}
		if !ok || f == nil {
			if p.st.Flags.Ended() {
				return nil
			}
		}
	}
}

func (p *Presenter) Stats() Stats {
	return p.stats
}

func (p *Presenter) show(f *pipeline.Frame) {
	if err := p.out.Blit(f.X, f.Y, f.Width, f.Height, f.Pix); err != nil {
		if p.stats.Errors == 0 {
			p.log.Warn("Blit: %v", err)
		}
		p.stats.Errors++
	} else {
		p.stats.Frames++
	}
	p.st.Frames.Shown(f)
}

func (p *Presenter) finish() {
	p.st.Frames.Close()
	if err := p.out.Clear(); err != nil {
		p.log.Warn("Clear: %v", err)
	}
	p.log.Info("Done: %d frames shown, %d blit errors", p.stats.Frames, p.stats.Errors)
}
