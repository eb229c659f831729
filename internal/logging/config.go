package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

const envVar = "LOGLEVEL"

var (
	tagMu     sync.Mutex
	tagLevels = map[string]Level{}
)

func init() {
	if err := Configure(os.Getenv(envVar)); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", envVar, err)
	}
}

// Configure applies comma-separated "tag=level" directives. A directive
// without "tag=" sets the default level. Only loggers derived after the call
// observe the new levels. All valid directives are applied even if some are
// invalid; the first error is returned.
func Configure(directives string) (firstErr error) {
	tagMu.Lock()
	defer tagMu.Unlock()

	for _, d := range strings.Split(directives, ",") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		v := strings.SplitN(d, "=", 2)
		level, err := ParseLevel(v[len(v)-1])
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("invalid directive '%s': %v", d, err)
			}
			continue
		}
		if len(v) == 1 {
			defaultLevel = level
			DefaultLogger.Level = level
		} else {
			tagLevels[v[0]] = level
		}
	}
	return
}

func determineLevel(tag string, fallback Level) Level {
	tagMu.Lock()
	defer tagMu.Unlock()
	if level, ok := tagLevels[tag]; ok {
		return level
	}
	return fallback
}
