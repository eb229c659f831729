package alohaplayer

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/alohaplayer/internal/container/containertest"
	"github.com/lanikai/alohaplayer/internal/demux"
	"github.com/lanikai/alohaplayer/internal/media"
	"github.com/lanikai/alohaplayer/internal/media/h264"
	"github.com/lanikai/alohaplayer/internal/pipeline"
)

var testTimeouts = pipeline.Timeouts{
	EOSSend:      50 * time.Millisecond,
	VideoReceive: 50 * time.Millisecond,
	AudioReceive: 50 * time.Millisecond,
	DisplayWait:  5 * time.Millisecond,
	FinalDisplay: 100 * time.Millisecond,
	AudioWrite:   5 * time.Millisecond,
}

type fakeVideoDecoder struct {
	img *image.YCbCr
}

func (d *fakeVideoDecoder) Decode(unit []byte) (int, *image.YCbCr, error) {
	nalus := h264.SplitAnnexB(unit)
	if len(nalus) == 0 {
		return len(unit), nil, errors.New("no NAL units")
	}
	if nalus[0].IsParameterSet() {
		return len(unit), nil, nil
	}
	return len(unit), d.img, nil
}

func (d *fakeVideoDecoder) Close() error { return nil }

type fakeAudioDecoder struct{}

func (fakeAudioDecoder) Decode(frame, pcm []byte) (int, error) {
	n := 64
	for i := range pcm[:n] {
		pcm[i] = byte(i)
	}
	return n, nil
}

func (fakeAudioDecoder) Close() error { return nil }

func grayImage(w, h int) *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio420)
	for _, p := range [][]byte{img.Y, img.Cb, img.Cr} {
		for i := range p {
			p[i] = 128
		}
	}
	return img
}

// testFile builds a 16x12 video with frames every interval, and an audio
// frame alongside each video frame.
func testFile(frames int, interval time.Duration) *containertest.Builder {
	b := containertest.NewBuilder()
	video := b.NewVideoTrack(16, 12)
	audio := b.NewAudioTrack(8000, 1)
	ms := int64(interval / time.Millisecond)
	for i := 0; i < frames; i++ {
		typ := byte(0x41)
		if i%10 == 0 {
			typ = 0x65
		}
		b.AddVideo(video, int64(i)*ms, []byte{typ, 0x9a, byte(i)})
		b.AddRaw(audio, int64(i)*ms, []byte{0x21, byte(i)})
	}
	return b
}

func testConfig(b *containertest.Builder, display media.Display, withAudio bool) Config {
	c := Config{
		Display: display,
		NewVideoDecoder: func() (media.VideoDecoder, error) {
			return &fakeVideoDecoder{img: grayImage(16, 12)}, nil
		},
		NewAudioDecoder: func([]byte, int, int) (media.AudioDecoder, error) {
			return fakeAudioDecoder{}, nil
		},
		Open:     b.Open,
		Timeouts: testTimeouts,
	}
	if withAudio {
		c.AudioSink = media.NewNullAudioSink(false)
	}
	return c
}

func waitFinished(t *testing.T, p *Player, timeout time.Duration) {
	select {
	case <-p.Done():
	case <-time.After(timeout):
		t.Fatalf("player did not finish within %v", timeout)
	}
}

func TestPlayerPlaysToEnd(t *testing.T) {
	display := media.NewMemoryDisplay(32, 24)
	p, err := NewPlayer("clip.mp4", testConfig(testFile(10, 10*time.Millisecond), display, true))
	require.NoError(t, err)
	assert.Len(t, p.ID(), 36)
	assert.False(t, p.Finished())

	require.NoError(t, p.Start())
	waitFinished(t, p, 5*time.Second)
	p.WaitUntilFinished()

	assert.True(t, p.Finished())
	assert.False(t, p.Stopped())
	assert.NoError(t, p.Err())
	assert.Equal(t, 0, p.Outstanding())

	s := p.Stats()
	assert.Equal(t, 10, s.Demux.VideoSent)
	assert.Equal(t, 10, s.Demux.AudioSent)
	assert.Equal(t, 10, s.Decode.Decoded)
	assert.Equal(t, 10, s.Display.Frames)
	assert.Equal(t, 10, s.Audio.Frames)
	assert.Equal(t, int64(10*64), s.Audio.Written)

	blits, clears := display.Counts()
	assert.Equal(t, 10, blits)
	assert.Equal(t, 2, clears)
}

func TestPlayerWithoutAudioSink(t *testing.T) {
	p, err := NewPlayer("clip.mp4", testConfig(testFile(5, time.Millisecond), media.NewMemoryDisplay(16, 12), false))
	require.NoError(t, err)
	require.NoError(t, p.Start())
	waitFinished(t, p, 5*time.Second)

	assert.NoError(t, p.Err())
	s := p.Stats()
	assert.Equal(t, 5, s.Decode.Decoded)
	assert.Equal(t, 0, s.Demux.AudioSent)
	assert.Equal(t, 0, p.Outstanding())
}

func TestPlayerStartOnce(t *testing.T) {
	p, err := NewPlayer("clip.mp4", testConfig(testFile(1, time.Millisecond), media.NewMemoryDisplay(32, 24), true))
	require.NoError(t, err)
	require.NoError(t, p.Start())
	assert.Equal(t, ErrAlreadyStarted, p.Start())
	p.WaitUntilFinished()
}

func TestPlayerNeedsDisplay(t *testing.T) {
	_, err := NewPlayer("clip.mp4", Config{})
	assert.Equal(t, ErrNoDisplay, err)

	_, err = NewPlayer("clip.mp4", Config{Display: media.NewMemoryDisplay(0, 0)})
	assert.Error(t, err)
}

func TestPlayerWaitWithoutStart(t *testing.T) {
	p, err := NewPlayer("clip.mp4", testConfig(testFile(1, time.Millisecond), media.NewMemoryDisplay(32, 24), false))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		p.WaitUntilFinished()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitUntilFinished blocked on a player that was never started")
	}
}

func TestPlayerSetupFailure(t *testing.T) {
	b := containertest.NewBuilder()
	audio := b.NewAudioTrack(8000, 1)
	b.AddRaw(audio, 0, []byte{0x21})

	display := media.NewMemoryDisplay(32, 24)
	p, err := NewPlayer("audio-only.mp4", testConfig(b, display, true))
	require.NoError(t, err)
	require.NoError(t, p.Start())
	waitFinished(t, p, 5*time.Second)

	assert.Equal(t, demux.ErrNoVideoTrack, errors.Cause(p.Err()))
	assert.False(t, p.Stopped())
	assert.Equal(t, 0, p.Outstanding())

	blits, _ := display.Counts()
	assert.Zero(t, blits)
}

func TestPlayerTooLarge(t *testing.T) {
	b := containertest.NewBuilder()
	video := b.NewVideoTrack(1920, 1080)
	b.AddVideo(video, 0, []byte{0x65, 1})

	p, err := NewPlayer("big.mp4", testConfig(b, media.NewMemoryDisplay(32, 24), false))
	require.NoError(t, err)
	require.NoError(t, p.Start())
	waitFinished(t, p, 5*time.Second)
	assert.Equal(t, demux.ErrResolution, errors.Cause(p.Err()))
}

func TestPlayerStopIsPrompt(t *testing.T) {
	// Ten seconds of video.
	p, err := NewPlayer("long.mp4", testConfig(testFile(300, 33*time.Millisecond), media.NewMemoryDisplay(32, 24), true))
	require.NoError(t, err)
	require.NoError(t, p.Start())

	time.Sleep(100 * time.Millisecond)
	assert.False(t, p.Finished())

	start := time.Now()
	p.RequestStop()
	p.RequestStop()
	waitFinished(t, p, 3*time.Second)
	t.Logf("Stopped in %v", time.Since(start))

	assert.True(t, p.Stopped())
	assert.NoError(t, p.Err())
	assert.Equal(t, 0, p.Outstanding())
	assert.True(t, p.Stats().Decode.Decoded < 300)
}

func TestPlayerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p, err := NewPlayerWithContext(ctx, "long.mp4", testConfig(testFile(300, 33*time.Millisecond), media.NewMemoryDisplay(32, 24), true))
	require.NoError(t, err)
	require.NoError(t, p.Start())

	time.Sleep(20 * time.Millisecond)
	cancel()
	waitFinished(t, p, 3*time.Second)
	assert.True(t, p.Stopped())
}

func TestPlayerVolume(t *testing.T) {
	p, err := NewPlayer("clip.mp4", testConfig(testFile(1, time.Millisecond), media.NewMemoryDisplay(32, 24), false))
	require.NoError(t, err)
	assert.Equal(t, int32(pipeline.UnityVolume), p.st.Flags.Volume())
	p.SetVolume(50)
	assert.Equal(t, int32(128), p.st.Flags.Volume())
	p.SetVolume(150)
	assert.Equal(t, int32(pipeline.UnityVolume), p.st.Flags.Volume())
	p.SetVolume(-5)
	assert.Equal(t, int32(0), p.st.Flags.Volume())
}

// Every buffer the demuxer allocates is released exactly once, however early
// the session is stopped.
func TestPlayerStartStopCycles(t *testing.T) {
	cycles := 1000
	if testing.Short() {
		cycles = 100
	}

	b := testFile(20, 5*time.Millisecond)
	display := media.NewMemoryDisplay(32, 24)
	for i := 0; i < cycles; i++ {
		p, err := NewPlayer("clip.mp4", testConfig(b, display, true))
		require.NoError(t, err)
		p.SetAudioPriority(i%2 == 0)
		require.NoError(t, p.Start())

		if d := i % 4; d > 0 {
			time.Sleep(time.Duration(d) * time.Millisecond)
		}
		p.RequestStop()
		waitFinished(t, p, 5*time.Second)

		require.NoError(t, p.Err(), "cycle %d", i)
		require.Equal(t, 0, p.Outstanding(), "cycle %d", i)
	}
}
