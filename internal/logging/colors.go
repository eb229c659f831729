package logging

var (
	ansiRed    = []byte("\033[31m")
	ansiGreen  = []byte("\033[32m")
	ansiYellow = []byte("\033[33m")
	ansiWhite  = []byte("\033[37m")

	ansiBoldRed = []byte("\033[1;31m")

	ansiReset = []byte("\033[0m")
)
