package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/lanikai/alohaplayer"
	_ "github.com/lanikai/alohaplayer/internal/fbdev"
	"github.com/lanikai/alohaplayer/internal/logging"
	"github.com/lanikai/alohaplayer/internal/media"
)

// Populated via -ldflags="-X ...".
var GitRevisionId string

var log = logging.DefaultLogger.WithTag("alohaplay")

const tickInterval = 20 * time.Millisecond

func main() {
	flag.Parse()

	if flagHelp {
		help()
		os.Exit(0)
	}
	if flagVersion {
		fmt.Println("alohaplay", GitRevisionId)
		os.Exit(0)
	}
	if flagLogLevel != "" {
		if err := logging.Configure(flagLogLevel); err != nil {
			log.Fatal(err)
		}
	}

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "alohaplay: no files given (see --help)")
		os.Exit(2)
	}

	var audioPriority bool
	switch flagSync {
	case "audio":
		audioPriority = true
	case "video":
	default:
		log.Fatalf("invalid sync mode %q", flagSync)
	}

	display, err := media.OpenDisplay(flagDisplay)
	if err != nil {
		log.Fatal(err)
	}
	if closer, ok := display.(io.Closer); ok {
		defer closer.Close()
	}

	configure := func() (alohaplayer.Config, error) {
		config := alohaplayer.Config{
			Display:         display,
			MaxDecodeWidth:  flagMaxWidth,
			MaxDecodeHeight: flagMaxHeight,
		}
		if flagAudio == "none" {
			return config, nil
		}
		sink, err := media.OpenAudioSink(flagAudio)
		if err != nil {
			// Play the video anyway.
			log.Warn("No audio: %v", err)
			return config, nil
		}
		config.AudioSink = sink
		return config, nil
	}

	mc := alohaplayer.NewMediaController(files, configure)
	mc.SetVolume(flagVolume)
	mc.SetAudioPriority(audioPriority)
	mc.SetRepeat(flagRepeat)
	defer mc.Close()

	if !mc.PostPlay(0) {
		log.Fatal("cannot queue playback")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	last := len(files) - 1
	for {
		select {
		case sig := <-sigs:
			log.Info("Caught %v, stopping", sig)
			return
		case <-ticker.C:
		}

		if err := mc.Tick(); err != nil {
			log.Error("%v", err)
			if mc.CurrentIndex() < last || flagRepeat {
				mc.PostNext()
				continue
			}
		}
		if !flagRepeat && !mc.IsPlaying() && mc.CurrentIndex() == last {
			return
		}
	}
}
