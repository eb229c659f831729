//////////////////////////////////////////////////////////////////////////////
//
// Player runs one playback session of an MP4 file
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package alohaplayer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/lanikai/alohaplayer/internal/audio"
	"github.com/lanikai/alohaplayer/internal/decode"
	"github.com/lanikai/alohaplayer/internal/demux"
	"github.com/lanikai/alohaplayer/internal/display"
	"github.com/lanikai/alohaplayer/internal/logging"
	"github.com/lanikai/alohaplayer/internal/pipeline"
)

// Stats collects the counters of every stage. Valid once the session has
// finished.
type Stats struct {
	Demux   demux.Stats
	Decode  decode.Stats
	Display display.Stats
	Audio   audio.Stats
}

// Player plays one file once. The demuxer, decoder, display and audio
// stages each run in their own goroutine; the Player owns the state they
// share. Start a new Player for every file.
type Player struct {
	ctx  context.Context
	id   string
	path string
	cfg  Config
	log  *logging.Logger

	st *pipeline.State

	mu      sync.Mutex
	started bool
	begin   time.Time
	err     error
	stats   Stats
	done    chan struct{}
}

// NewPlayer prepares a session for the file at path. Nothing runs until
// Start.
func NewPlayer(path string, config Config) (*Player, error) {
	return NewPlayerWithContext(context.Background(), path, config)
}

// NewPlayerWithContext is NewPlayer with a context whose cancelation stops
// playback.
func NewPlayerWithContext(ctx context.Context, path string, config Config) (*Player, error) {
	if config.Display == nil {
		return nil, ErrNoDisplay
	}
	if w, h := config.Display.Width(), config.Display.Height(); w <= 0 || h <= 0 {
		return nil, errors.Errorf("player: invalid display size %dx%d", w, h)
	}
	config = config.withDefaults()

	id := uuid.New().String()
	p := &Player{
		ctx:  ctx,
		id:   id,
		path: path,
		cfg:  config,
		log:  log.Qualify(id[:8]),
		st:   pipeline.NewState(config.AudioSink != nil, config.Timeouts),
		done: make(chan struct{}),
	}
	p.st.Flags.SetAudioPriority(config.AudioPriority)
	return p, nil
}

// ID uniquely identifies the session in logs.
func (p *Player) ID() string {
	return p.id
}

// SetVolume sets the audio volume in percent. Takes effect from the next
// decoded audio frame.
func (p *Player) SetVolume(percent int) {
	p.st.Flags.SetVolume(percent)
}

// SetAudioPriority chooses between dropping late video to keep audio
// flowing (on) and showing every frame (off). The demuxer reads the setting
// once when it starts.
func (p *Player) SetAudioPriority(on bool) {
	p.st.Flags.SetAudioPriority(on)
}

// Start launches the stages and returns immediately. A Player can only be
// started once.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true
	p.begin = time.Now()

	session := p.id[:8]
	dmx := demux.New(p.st, demux.Config{
		Path:      p.path,
		Open:      p.cfg.Open,
		MaxWidth:  p.cfg.MaxDecodeWidth,
		MaxHeight: p.cfg.MaxDecodeHeight,
		Session:   session,
	})
	dec := decode.New(p.st, decode.Config{
		DisplayWidth:  p.cfg.Display.Width(),
		DisplayHeight: p.cfg.Display.Height(),
		NewDecoder:    p.cfg.NewVideoDecoder,
		Session:       session,
	})
	pres := display.New(p.st, p.cfg.Display, display.Config{Session: session})

	p.log.Info("Playing %s", p.path)

	var g errgroup.Group
	p.spawn(&g, pipeline.StageDemux, dmx.Run)
	p.spawn(&g, pipeline.StageDecode, dec.Run)
	p.spawn(&g, pipeline.StageDisplay, pres.Run)

	var out *audio.Output
	if p.cfg.AudioSink != nil {
		out = audio.New(p.st, p.cfg.AudioSink, audio.Config{
			NewDecoder: p.cfg.NewAudioDecoder,
			Session:    session,
		})
		p.spawn(&g, pipeline.StageAudio, out.Run)
	}

	go func() {
		err := g.Wait()
		stats := Stats{
			Demux:   dmx.Stats(),
			Decode:  dec.Stats(),
			Display: pres.Stats(),
		}
		if out != nil {
			stats.Audio = out.Stats()
		}
		p.finish(err, stats)
	}()

	if p.ctx.Done() != nil {
		go func() {
			select {
			case <-p.ctx.Done():
				p.RequestStop()
			case <-p.done:
			}
		}()
	}
	return nil
}

// spawn runs one stage and marks it complete when it returns. A panic in a
// stage is reported as that stage's error.
func (p *Player) spawn(g *errgroup.Group, stage pipeline.Stage, run func() error) {
	g.Go(func() (err error) {
		defer p.st.Done.Done(stage)
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("%s stage panicked: %v", stage, r)
				err = errors.Errorf("player: %s stage panicked: %v", stage, r)
			}
		}()
		return run()
	})
}

// finish frees anything still queued once every stage has exited.
func (p *Player) finish(err error, stats Stats) {
	for {
		u, ok := p.st.Video.TryReceive()
		if !ok {
			break
		}
		u.Release()
	}
	if p.st.Audio != nil {
		for {
			u, ok := p.st.Audio.TryReceive()
			if !ok {
				break
			}
			u.Release()
		}
	}
	if n := p.st.Pool.Outstanding(); n != 0 {
		p.log.Warn("%d buffers not released", n)
	}

	p.mu.Lock()
	p.err = err
	p.stats = stats
	elapsed := time.Since(p.begin)
	p.mu.Unlock()

	if err != nil {
		p.log.Warn("Finished after %v: %v", elapsed, err)
	} else {
		p.log.Info("Finished after %v", elapsed)
	}
	close(p.done)
}

// RequestStop asks the stages to wind down. It does not wait.
func (p *Player) RequestStop() {
	p.st.Flags.RequestStop()
}

// WaitUntilFinished blocks until every stage has exited. Returns at once if
// the player was never started.
func (p *Player) WaitUntilFinished() {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if started {
		<-p.done
	}
}

// Finished reports whether playback is over, whether it ran to the end,
// failed, or was stopped.
func (p *Player) Finished() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when playback is over.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Err returns the first stage error, such as a file that cannot be opened.
// It is nil for a file played to the end or stopped early.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Stopped reports whether a stop was requested.
func (p *Player) Stopped() bool {
	return p.st.Flags.StopRequested()
}

func (p *Player) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Outstanding returns the number of sample buffers not yet released. Zero
// once the player has finished.
func (p *Player) Outstanding() int {
	return p.st.Pool.Outstanding()
}
