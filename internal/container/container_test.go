package container

import (
	"bytes"
	"testing"

	"github.com/nareix/joy4/av"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleTablesFlatten(t *testing.T) {
	st := &sampleTables{
		sizes:        []uint32{10, 20, 30, 40, 50},
		chunkOffsets: []int64{1000, 2000, 3000},
		chunks: []chunkRun{
			{firstChunk: 1, samplesPerChunk: 2},
			{firstChunk: 3, samplesPerChunk: 1},
		},
		times: []timeRun{{count: 4, duration: 512}, {count: 1, duration: 256}},
	}

	samples, err := st.samples()
	require.NoError(t, err)
	assert.Equal(t, []Sample{
		{Offset: 1000, Size: 10, Time: 0, Duration: 512},
		{Offset: 1010, Size: 20, Time: 512, Duration: 512},
		{Offset: 2000, Size: 30, Time: 1024, Duration: 512},
		{Offset: 2030, Size: 40, Time: 1536, Duration: 512},
		{Offset: 3000, Size: 50, Time: 2048, Duration: 256},
	}, samples)
}

func TestSampleTablesConstantSize(t *testing.T) {
	st := &sampleTables{
		constantSize: 8,
		chunkOffsets: []int64{0, 100},
		chunks:       []chunkRun{{firstChunk: 1, samplesPerChunk: 2}},
		times:        []timeRun{{count: 3, duration: 1024}},
	}

	samples, err := st.samples()
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, int64(8), samples[1].Offset)
	assert.Equal(t, int64(100), samples[2].Offset)
	assert.Equal(t, int64(2048), samples[2].Time)
}

func TestSampleTablesInconsistent(t *testing.T) {
	st := &sampleTables{
		sizes:        []uint32{1, 2, 3},
		chunkOffsets: []int64{0},
		chunks:       []chunkRun{{firstChunk: 1, samplesPerChunk: 2}},
		times:        []timeRun{{count: 3, duration: 1}},
	}
	_, err := st.samples()
	assert.Error(t, err)

	st.chunkOffsets = []int64{0, 10}
	st.times = []timeRun{{count: 2, duration: 1}}
	_, err = st.samples()
	assert.Error(t, err)

	st.chunks = []chunkRun{{firstChunk: 2, samplesPerChunk: 3}}
	_, err = st.samples()
	assert.Error(t, err)
}

func TestTrackIsSync(t *testing.T) {
	tr := &Track{Samples: make([]Sample, 10)}
	for i := 0; i < 10; i++ {
		assert.True(t, tr.IsSync(i))
	}

	tr.SyncSamples = []uint32{1, 5, 9}
	var sync []int
	for i := 0; i < 10; i++ {
		if tr.IsSync(i) {
			sync = append(sync, i)
		}
	}
	assert.Equal(t, []int{0, 4, 8}, sync)
}

func TestTrackPTS(t *testing.T) {
	tr := &Track{
		TimeScale: 90000,
		Samples:   []Sample{{Time: 0}, {Time: 3003}, {Time: 90000}},
	}
	assert.Equal(t, int64(0), tr.PTS(0))
	assert.Equal(t, int64(33366), tr.PTS(1))
	assert.Equal(t, int64(1000000), tr.PTS(2))

	tr.TimeScale = 0
	assert.Equal(t, int64(0), tr.PTS(2))
}

func TestReadSample(t *testing.T) {
	data := []byte("....hello....world")
	tr := &Track{
		Kind:    KindVideo,
		Codec:   av.H264,
		Samples: []Sample{{Offset: 4, Size: 5}, {Offset: 13, Size: 5}, {Offset: 16, Size: 5}, {Offset: 0, Size: -1}},
	}
	f := NewFile(bytes.NewReader(data), tr)
	assert.Equal(t, tr, f.VideoTrack())
	assert.Nil(t, f.AudioTrack())

	buf := make([]byte, 8)
	b, err := f.ReadSample(tr, 0, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	b, err = f.ReadSample(tr, 1, buf)
	require.NoError(t, err)
	assert.Equal(t, "world", string(b))

	_, err = f.ReadSample(tr, 2, buf)
	assert.Error(t, err)

	_, err = f.ReadSample(tr, 0, make([]byte, 4))
	assert.Equal(t, ErrSampleTooLong, err)

	_, err = f.ReadSample(tr, 3, buf)
	assert.Equal(t, ErrSampleTooLong, err)

	assert.NoError(t, f.Close())
}

func TestAudioConfigFallback(t *testing.T) {
	// AAC-LC, 44.1 kHz, stereo.
	tr := &Track{Config: []byte{0x12, 0x10}}
	tr.applyAudioConfig()
	assert.Equal(t, 44100, tr.SampleRate)
	assert.Equal(t, 2, tr.Channels)

	// Values from the sample description take precedence.
	tr = &Track{Config: []byte{0x12, 0x10}, SampleRate: 48000, Channels: 1}
	tr.applyAudioConfig()
	assert.Equal(t, 48000, tr.SampleRate)
	assert.Equal(t, 1, tr.Channels)
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open(bytes.NewReader([]byte("definitely not an mp4 file")))
	assert.Error(t, err)
}
