package audio

import (
	"encoding/binary"

	"github.com/lanikai/alohaplayer/internal/pipeline"
)

// ApplyVolume scales interleaved signed 16-bit little endian samples in place
// by factor/256. A factor of 0 silences the buffer and unity leaves it
// untouched.
func ApplyVolume(pcm []byte, factor int32) {
	switch {
	case factor >= pipeline.UnityVolume:
		return
	case factor <= 0:
		for i := range pcm {
			pcm[i] = 0
		}
		return
	}

	for i := 0; i+1 < len(pcm); i += 2 {
		s := int32(int16(binary.LittleEndian.Uint16(pcm[i:])))
		binary.LittleEndian.PutUint16(pcm[i:], uint16(int16((s*factor)>>8)))
	}
}
