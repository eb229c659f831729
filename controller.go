package alohaplayer

import (
	"path/filepath"
	"sync"
)

type commandKind int

const (
	cmdPlay commandKind = iota
	cmdPlayFile
	cmdStop
	cmdNext
	cmdPrev
)

type command struct {
	kind  commandKind
	index int
	name  string
}

// Depth of the command queue. Posts beyond it are refused.
const commandQueueDepth = 4

// ConfigFunc returns the configuration for the next session. It is called
// once per file, so that each session gets its own audio sink.
type ConfigFunc func() (Config, error)

// MediaController plays a playlist one Player at a time. Commands may be
// posted from any goroutine; they take effect on the next Tick, which the
// owner calls periodically from a single goroutine.
type MediaController struct {
	files     []string
	configure ConfigFunc
	commands  chan command

	mu            sync.Mutex
	player        *Player
	index         int
	repeat        bool
	volume        int
	audioPriority bool
}

func NewMediaController(files []string, configure ConfigFunc) *MediaController {
	return &MediaController{
		files:         append([]string(nil), files...),
		configure:     configure,
		commands:      make(chan command, commandQueueDepth),
		index:         -1,
		volume:        100,
		audioPriority: true,
	}
}

func (mc *MediaController) post(c command) bool {
	select {
	case mc.commands <- c:
		return true
	default:
		log.Warn("Command queue full, dropping command %d", c.kind)
		return false
	}
}

// PostPlay queues playback of playlist entry i.
func (mc *MediaController) PostPlay(i int) bool {
	return mc.post(command{kind: cmdPlay, index: i})
}

// PostPlayFile queues playback of the playlist entry with the given name,
// matched against the full path or its base name.
func (mc *MediaController) PostPlayFile(name string) bool {
	return mc.post(command{kind: cmdPlayFile, name: name})
}

func (mc *MediaController) PostStop() bool {
	return mc.post(command{kind: cmdStop})
}

func (mc *MediaController) PostNext() bool {
	return mc.post(command{kind: cmdNext})
}

func (mc *MediaController) PostPrev() bool {
	return mc.post(command{kind: cmdPrev})
}

// Tick runs queued commands, then moves on to the next file if the current
// one has played to the end. Returns the first error from starting a file.
func (mc *MediaController) Tick() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

drain:
	for {
		select {
		case c := <-mc.commands:
			keep(mc.handle(c))
		default:
			break drain
		}
	}

	mc.mu.Lock()
	p := mc.player
	mc.mu.Unlock()
	if p == nil || !p.Finished() {
		return firstErr
	}

	mc.mu.Lock()
	mc.player = nil
	next := mc.index + 1
	if next >= len(mc.files) {
		if !mc.repeat {
			mc.mu.Unlock()
			log.Info("Playlist finished")
			return firstErr
		}
		next = 0
	}
	mc.mu.Unlock()

	if p.Stopped() {
		return firstErr
	}
	if err := p.Err(); err != nil {
		log.Warn("Skipping %s: %v", mc.files[mc.index], err)
	}
	keep(mc.play(next))
	return firstErr
}

func (mc *MediaController) handle(c command) error {
	switch c.kind {
	case cmdPlay:
		return mc.play(c.index)
	case cmdPlayFile:
		for i, f := range mc.files {
			if f == c.name || filepath.Base(f) == c.name {
				return mc.play(i)
			}
		}
		log.Warn("Not in playlist: %s", c.name)
		return ErrNotInPlaylist
	case cmdStop:
		mc.mu.Lock()
		p := mc.player
		mc.mu.Unlock()
		if p != nil {
			log.Info("Stop requested")
			p.RequestStop()
		}
	case cmdNext, cmdPrev:
		if len(mc.files) == 0 {
			return ErrEmptyPlaylist
		}
		mc.mu.Lock()
		i := mc.index
		mc.mu.Unlock()
		n := len(mc.files)
		switch {
		case c.kind == cmdNext:
			i = (i + 1) % n
		case i <= 0:
			i = n - 1
		default:
			i--
		}
		return mc.play(i)
	}
	return nil
}

// play stops whatever is playing and starts entry i.
func (mc *MediaController) play(i int) error {
	if i < 0 || i >= len(mc.files) {
		log.Warn("Invalid playlist index %d", i)
		return ErrNotInPlaylist
	}
	mc.stopAndWait()

	mc.mu.Lock()
	mc.index = i
	volume, priority := mc.volume, mc.audioPriority
	mc.mu.Unlock()

	config, err := mc.configure()
	if err != nil {
		return err
	}
	config.AudioPriority = priority
	p, err := NewPlayer(mc.files[i], config)
	if err != nil {
		if config.AudioSink != nil {
			config.AudioSink.Close()
		}
		return err
	}
	p.SetVolume(volume)

	log.Info("Playing [%d] %s", i, mc.files[i])
	if err := p.Start(); err != nil {
		return err
	}
	mc.mu.Lock()
	mc.player = p
	mc.mu.Unlock()
	return nil
}

func (mc *MediaController) stopAndWait() {
	mc.mu.Lock()
	p := mc.player
	mc.player = nil
	mc.mu.Unlock()
	if p == nil {
		return
	}
	p.RequestStop()
	p.WaitUntilFinished()
}

// SetVolume sets the volume in percent for the current and later files.
func (mc *MediaController) SetVolume(percent int) {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	mc.mu.Lock()
	mc.volume = percent
	p := mc.player
	mc.mu.Unlock()
	if p != nil {
		p.SetVolume(percent)
	}
}

func (mc *MediaController) Volume() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.volume
}

// SetAudioPriority applies from the next file on.
func (mc *MediaController) SetAudioPriority(on bool) {
	mc.mu.Lock()
	mc.audioPriority = on
	mc.mu.Unlock()
}

// SetRepeat makes the playlist start over after the last file.
func (mc *MediaController) SetRepeat(on bool) {
	mc.mu.Lock()
	mc.repeat = on
	mc.mu.Unlock()
}

// IsPlaying reports whether a file is playing right now.
func (mc *MediaController) IsPlaying() bool {
	mc.mu.Lock()
	p := mc.player
	mc.mu.Unlock()
	return p != nil && !p.Finished()
}

// CurrentIndex returns the playlist index of the current or last file, or -1.
func (mc *MediaController) CurrentIndex() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.index
}

// CurrentFile returns the path of the current or last file, or "".
func (mc *MediaController) CurrentFile() string {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.index < 0 || mc.index >= len(mc.files) {
		return ""
	}
	return mc.files[mc.index]
}

// Files returns the playlist.
func (mc *MediaController) Files() []string {
	return append([]string(nil), mc.files...)
}

// Close stops playback and waits for it to finish.
func (mc *MediaController) Close() error {
	mc.stopAndWait()
	return nil
}
