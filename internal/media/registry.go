package media

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Audio sinks and displays are opened from a "spec": a colon-separated
// string consisting of a tag and a path:
//    spec = tag + ":" + path
// The format of the path is defined by the registered open function, e.g.
// "alsa:default", "wav:/tmp/out.wav" or "fb:/dev/fb0".

type AudioSinkOpenFunc func(path string) (AudioSink, error)

type DisplayOpenFunc func(path string) (Display, error)

var (
	registryMu sync.Mutex
	sinkTypes  = map[string]AudioSinkOpenFunc{}
	displays   = map[string]DisplayOpenFunc{}
)

// Register an audio sink type, identified by its tag.
func RegisterAudioSinkType(tag string, open AudioSinkOpenFunc) {
	registryMu.Lock()
	sinkTypes[tag] = open
	registryMu.Unlock()
}

// Register a display type, identified by its tag.
func RegisterDisplayType(tag string, open DisplayOpenFunc) {
	registryMu.Lock()
	displays[tag] = open
	registryMu.Unlock()
}

func OpenAudioSink(spec string) (AudioSink, error) {
	tag, path := splitSpec(spec)
	registryMu.Lock()
	open, found := sinkTypes[tag]
	log.Debug("Registered audio sink types: %v", sortedKeys(sinkTypes))
	registryMu.Unlock()

	if !found {
		return nil, errors.Errorf("Audio sink type '%s' not registered", tag)
	}
	sink, err := open(path)
	return sink, errors.Wrapf(err, "open audio sink %s", spec)
}

func OpenDisplay(spec string) (Display, error) {
	tag, path := splitSpec(spec)
	registryMu.Lock()
	open, found := displays[tag]
	log.Debug("Registered display types: %v", sortedKeys(displays))
	registryMu.Unlock()

	if !found {
		return nil, errors.Errorf("Display type '%s' not registered", tag)
	}
	display, err := open(path)
	return display, errors.Wrapf(err, "open display %s", spec)
}

// Split the spec string into tag and path.
func splitSpec(spec string) (tag, path string) {
	parts := strings.SplitN(spec, ":", 2)
	tag = parts[0]
	if len(parts) == 2 {
		path = parts[1]
	}
	return
}

func sortedKeys[V any](m map[string]V) []string {
	var tags []string
	for t := range m {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
