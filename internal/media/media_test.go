package media

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDisplay(t *testing.T) {
	d, err := OpenDisplay("null:64x48")
	require.NoError(t, err)
	assert.Equal(t, 64, d.Width())
	assert.Equal(t, 48, d.Height())

	d, err = OpenDisplay("null")
	require.NoError(t, err)
	assert.Equal(t, 320, d.Width())

	_, err = OpenDisplay("null:wide")
	assert.Error(t, err)

	_, err = OpenDisplay("hologram:/dev/holo0")
	assert.Error(t, err)
}

func TestMemoryDisplayBlit(t *testing.T) {
	d := NewMemoryDisplay(4, 4)
	pix := []uint16{1, 2, 3, 4}

	require.NoError(t, d.Blit(1, 2, 2, 2, pix))
	assert.Equal(t, uint16(1), d.Pixel(1, 2))
	assert.Equal(t, uint16(2), d.Pixel(2, 2))
	assert.Equal(t, uint16(3), d.Pixel(1, 3))
	assert.Equal(t, uint16(0), d.Pixel(0, 0))

	assert.Error(t, d.Blit(3, 3, 2, 2, pix))
	assert.Error(t, d.Blit(0, 0, 3, 3, pix))

	require.NoError(t, d.Clear())
	assert.Equal(t, uint16(0), d.Pixel(1, 2))

	blits, clears := d.Counts()
	assert.Equal(t, 1, blits)
	assert.Equal(t, 1, clears)
}

func TestParseGeometry(t *testing.T) {
	w, h, err := ParseGeometry("800x480")
	require.NoError(t, err)
	assert.Equal(t, 800, w)
	assert.Equal(t, 480, h)

	_, _, err = ParseGeometry("0x480")
	assert.Error(t, err)
}

func TestNullAudioSinkFast(t *testing.T) {
	s := NewNullAudioSink(false)
	_, err := s.WriteTimeout(make([]byte, 4), time.Millisecond)
	assert.Error(t, err)

	require.NoError(t, s.Configure(48000, 2, S16LE))
	n, err := s.Write(make([]byte, 4096))
	require.NoError(t, err)
	assert.Equal(t, 4096, n)
	assert.Equal(t, int64(4096), s.Written())
}

func TestNullAudioSinkRealtime(t *testing.T) {
	s := NewNullAudioSink(true)
	require.NoError(t, s.Configure(8000, 1, S16LE)) // 16000 bytes per second

	// 10ms worth of audio fits in a 10ms write.
	n, err := s.WriteTimeout(make([]byte, 1000), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 160, n)

	start := time.Now()
	n, err = s.Write(make([]byte, 800))
	require.NoError(t, err)
	assert.Equal(t, 800, n)
	assert.True(t, time.Since(start) >= 40*time.Millisecond)
}

func TestWAVAudioSink(t *testing.T) {
	dir, err := os.MkdirTemp("", "alohaplayer")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "out.wav")
	s, err := OpenAudioSink("wav:" + path)
	require.NoError(t, err)

	_, err = s.Write([]byte{1, 0})
	assert.Equal(t, errNotConfigured, err)

	require.NoError(t, s.Configure(44100, 2, S16LE))
	assert.Error(t, s.Configure(44100, 2, S16LE))

	n, err := s.WriteTimeout([]byte{1, 0, 2, 0, 0xff, 0xff, 0, 0x80}, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, []byte{1, 0, 2, 0, 0xff, 0xff, 0, 0x80}, data[len(data)-8:])
}

func TestFileMediaSink(t *testing.T) {
	dir, err := os.MkdirTemp("", "alohaplayer")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "out.pcm")
	s, err := OpenAudioSink("file:" + path)
	require.NoError(t, err)
	require.NoError(t, s.Configure(48000, 2, S16LE))
	assert.Error(t, s.Configure(0, 2, S16LE))

	_, err = s.WriteTimeout([]byte{1, 2, 3, 4}, time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
}

func TestOpenUnknownAudioSink(t *testing.T) {
	_, err := OpenAudioSink("speaker:left")
	assert.Error(t, err)
}
