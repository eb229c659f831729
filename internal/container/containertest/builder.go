// Package containertest builds in-memory container files for tests.
package containertest

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/nareix/joy4/av"

	"github.com/lanikai/alohaplayer/internal/container"
)

// Parameter sets used by NewVideoTrack.
var (
	SPS = []byte{0x67, 0x42, 0xc0, 0x1e, 0xda, 0x02, 0x80, 0xbf}
	PPS = []byte{0x68, 0xce, 0x3c, 0x80}
)

// Builder lays samples out back to back in one byte slice and records every
// read made through the files it builds.
type Builder struct {
	mu     sync.Mutex
	data   []byte
	reads  []int64
	tracks []*container.Track
}

func NewBuilder() *Builder {
	return &Builder{}
}

// NewVideoTrack adds an H.264 track with a millisecond timescale.
func (b *Builder) NewVideoTrack(width, height int) *container.Track {
	t := &container.Track{
		ID:         len(b.tracks) + 1,
		Kind:       container.KindVideo,
		Codec:      av.H264,
		TimeScale:  1000,
		Width:      width,
		Height:     height,
		SPS:        [][]byte{SPS},
		PPS:        [][]byte{PPS},
		LengthSize: 4,
	}
	b.tracks = append(b.tracks, t)
	return t
}

// NewAudioTrack adds an AAC track with a millisecond timescale.
func (b *Builder) NewAudioTrack(sampleRate, channels int) *container.Track {
	t := &container.Track{
		ID:         len(b.tracks) + 1,
		Kind:       container.KindAudio,
		Codec:      av.AAC,
		TimeScale:  1000,
		SampleRate: sampleRate,
		Channels:   channels,
		Config:     []byte{0x12, 0x10},
	}
	b.tracks = append(b.tracks, t)
	return t
}

// AddVideo appends a sample at ms holding nalus, each with a 4-byte length
// prefix. Returns the sample index.
func (b *Builder) AddVideo(t *container.Track, ms int64, nalus ...[]byte) int {
	var raw []byte
	for _, n := range nalus {
		var size [4]byte
		binary.BigEndian.PutUint32(size[:], uint32(len(n)))
		raw = append(raw, size[:]...)
		raw = append(raw, n...)
	}
	return b.AddRaw(t, ms, raw)
}

// AddRaw appends a sample at ms with the given bytes.
func (b *Builder) AddRaw(t *container.Track, ms int64, raw []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	t.Samples = append(t.Samples, container.Sample{
		Offset:   int64(len(b.data)),
		Size:     len(raw),
		Time:     ms,
		Duration: 1,
	})
	b.data = append(b.data, raw...)
	return len(t.Samples) - 1
}

// File returns a container.File over everything added so far.
func (b *Builder) File() *container.File {
	return container.NewFile(readerFunc(b.readAt), b.tracks...)
}

// Open ignores path and returns File.
func (b *Builder) Open(path string) (*container.File, error) {
	return b.File(), nil
}

// Reads returns the offsets of all reads so far, in order.
func (b *Builder) Reads() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int64(nil), b.reads...)
}

// WasRead reports whether sample i of t has been read.
func (b *Builder) WasRead(t *container.Track, i int) bool {
	off := t.Samples[i].Offset
	for _, r := range b.Reads() {
		if r == off {
			return true
		}
	}
	return false
}

func (b *Builder) readAt(p []byte, off int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads = append(b.reads, off)
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

type readerFunc func(p []byte, off int64) (int, error)

func (f readerFunc) ReadAt(p []byte, off int64) (int, error) {
	return f(p, off)
}
