package main

import (
	"fmt"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
)

var (
	flagDisplay   string
	flagAudio     string
	flagVolume    int
	flagSync      string
	flagRepeat    bool
	flagMaxWidth  int
	flagMaxHeight int
	flagLogLevel  string
	flagHelp      bool
	flagVersion   bool
)

func init() {
	flag.StringVarP(&flagDisplay, "display", "d", "fb:/dev/fb0", "Display")
	flag.StringVarP(&flagAudio, "audio", "a", "alsa:default", "Audio output, or none")
	flag.IntVarP(&flagVolume, "volume", "V", 100, "Volume, in percent")
	flag.StringVarP(&flagSync, "sync", "s", "audio", "Sync mode: audio or video")
	flag.BoolVarP(&flagRepeat, "repeat", "r", false, "Repeat the playlist")
	flag.IntVarP(&flagMaxWidth, "max-width", "x", 1280, "Largest video width")
	flag.IntVarP(&flagMaxHeight, "max-height", "y", 720, "Largest video height")
	flag.StringVarP(&flagLogLevel, "loglevel", "l", "", "Log level directives, e.g. info,demux=debug")

	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
	flag.BoolVarP(&flagVersion, "version", "v", false, "Print version information and exit")
}

const helpString = `MP4 playback for small embedded displays

Usage: alohaplay [OPTION]... FILE...

Output:
  -d, --display=SPEC     Display (default: fb:/dev/fb0)
                           fb:DEVICE     Linux framebuffer
                           null:WxH      Discard frames
  -a, --audio=SPEC       Audio output (default: alsa:default)
                           alsa:DEVICE   ALSA playback device
                           wav:FILE      Write a WAV file
                           file:FILE     Write raw PCM
                           null:         Discard samples
                           none          Ignore audio tracks

Playback:
  -V, --volume=NUM       Volume, in percent (default: 100)
  -s, --sync=MODE        audio: drop late video to keep audio flowing
                         video: show every frame (default: audio)
  -r, --repeat           Start over after the last file
  -x, --max-width=NUM    Refuse wider video (default: 1280)
  -y, --max-height=NUM   Refuse taller video (default: 720)

Miscellaneous:
  -l, --loglevel=DIRS    Log level directives (default: $LOGLEVEL)
  -h, --help             Prints this help message and exits
  -v, --version          Prints version information and exits

Please report bugs to: aloha@lanikailabs.com`

// Help information is printed and program exits
func help() {
	r := color.New(color.FgRed)
	y := color.New(color.FgYellow)
	b := color.New(color.FgCyan)

	//         _         _                _
	//   __ _ | |  ___  | |__    __ _  _ __ | |  __ _  _   _
	//  / _` || | / _ \ | '_ \  / _` || '_ \| | / _` || | | |
	// | (_| || || (_) || | | || (_| || |_) | || (_| || |_| |
	//  \__,_||_| \___/ |_| |_| \__,_|| .__/|_| \__,_| \__, |
	//                                |_|              |___/

	// Line 1
	r.Printf("        ")
	y.Printf(" _ ")
	b.Printf("       ")
	y.Printf(" _     ")
	r.Printf("       ")
	y.Printf("      ")
	b.Printf(" _ ")
	y.Println("")

	// Line 2
	r.Printf("   __ _ ")
	y.Printf("| |")
	b.Printf("  ___  ")
	y.Printf("| |__  ")
	r.Printf("  __ _ ")
	y.Printf(" _ __ ")
	b.Printf("| |")
	r.Printf("  __ _ ")
	y.Println(" _   _ ")

	// Line 3
	r.Printf("  / _` |")
	y.Printf("| |")
	b.Printf(" / _ \\ ")
	y.Printf("| '_ \\ ")
	r.Printf(" / _` |")
	y.Printf("| '_ \\")
	b.Printf("| |")
	r.Printf(" / _` |")
	y.Println("| | | |")

	// Line 4
	r.Printf(" | (_| |")
	y.Printf("| |")
	b.Printf("| (_) |")
	y.Printf("| | | |")
	r.Printf("| (_| |")
	y.Printf("| |_) ")
	b.Printf("| |")
	r.Printf("| (_| |")
	y.Println("| |_| |")

	// Line 5
	r.Printf("  \\__,_|")
	y.Printf("|_|")
	b.Printf(" \\___/ ")
	y.Printf("|_| |_|")
	r.Printf(" \\__,_|")
	y.Printf("| .__/")
	b.Printf("|_|")
	r.Printf(" \\__,_|")
	y.Println(" \\__, |")

	// Line 6
	r.Printf("        ")
	y.Printf("   ")
	b.Printf("       ")
	y.Printf("       ")
	r.Printf("       ")
	y.Printf("|_|  ")
	b.Printf("   ")
	r.Printf("       ")
	y.Println(" |___/ ")

	fmt.Println(helpString)
}
