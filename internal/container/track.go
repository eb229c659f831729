package container

import (
	"github.com/nareix/joy4/av"
)

type Kind int

const (
	KindOther Kind = iota
	KindVideo
	KindAudio
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return "other"
	}
}

// Sample locates one access unit in the file.
type Sample struct {
	Offset int64
	Size   int

	// Decode time and duration in track timescale units.
	Time     int64
	Duration int64
}

type Track struct {
	ID    int
	Kind  Kind
	Codec av.CodecType

	// Units per second of Sample.Time.
	TimeScale int

	// Video only. Zero if the file does not say.
	Width, Height int

	// Parameter sets from the avcC record, without start codes.
	SPS, PPS [][]byte

	// Width in bytes of each NAL unit length prefix.
	LengthSize int

	// Audio only.
	SampleRate int
	Channels   int

	// Raw decoder configuration: the avcC record for video, the
	// AudioSpecificConfig for audio.
	Config []byte

	Samples []Sample

	// 1-based sample numbers of sync samples, ascending. Empty means every
	// sample is a sync sample.
	SyncSamples []uint32
}

func (t *Track) NumSamples() int {
	return len(t.Samples)
}

// PTS returns the timestamp of sample i in microseconds.
func (t *Track) PTS(i int) int64 {
	if t.TimeScale <= 0 {
		return 0
	}
	return t.Samples[i].Time * 1000000 / int64(t.TimeScale)
}

// IsSync reports whether sample i (0-based) can be decoded on its own.
func (t *Track) IsSync(i int) bool {
	if len(t.SyncSamples) == 0 {
		return true
	}
	n := uint32(i + 1)
	for _, s := range t.SyncSamples {
		if s == n {
			return true
		}
		if s > n {
			break
		}
	}
	return false
}
