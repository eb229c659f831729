package container

import (
	"golang.org/x/xerrors"
)

type chunkRun struct {
	firstChunk      uint32 // 1-based
	samplesPerChunk uint32
}

type timeRun struct {
	count    uint32
	duration uint32
}

// sampleTables holds the raw stbl contents of one track.
type sampleTables struct {
	// Either a constant size for every sample, or one size per sample.
	constantSize uint32
	sizes        []uint32

	chunkOffsets []int64
	chunks       []chunkRun
	times        []timeRun
}

func (st *sampleTables) sampleCount() int {
	if st.constantSize == 0 {
		return len(st.sizes)
	}
	n := 0
	for _, r := range st.times {
		n += int(r.count)
	}
	return n
}

// samples flattens the chunk, size and time tables into one entry per sample.
func (st *sampleTables) samples() ([]Sample, error) {
	count := st.sampleCount()
	out := make([]Sample, 0, count)

	// Offsets: walk chunks, placing each chunk's samples back to back.
	run := 0
	for c := range st.chunkOffsets {
		chunk := uint32(c + 1)
		for run+1 < len(st.chunks) && st.chunks[run+1].firstChunk <= chunk {
			run++
		}
		if len(st.chunks) == 0 || st.chunks[run].firstChunk > chunk {
			return nil, xerrors.Errorf("chunk %d not covered by sample-to-chunk table", chunk)
		}

		offset := st.chunkOffsets[c]
		for k := uint32(0); k < st.chunks[run].samplesPerChunk && len(out) < count; k++ {
			size := st.constantSize
			if size == 0 {
				size = st.sizes[len(out)]
			}
			out = append(out, Sample{Offset: offset, Size: int(size)})
			offset += int64(size)
		}
	}
	if len(out) != count {
		return nil, xerrors.Errorf("chunk tables describe %d samples, size table %d", len(out), count)
	}

	// Times: expand the run-length coded durations.
	var t int64
	i := 0
	for _, r := range st.times {
		for k := uint32(0); k < r.count && i < count; k++ {
			out[i].Time = t
			out[i].Duration = int64(r.duration)
			t += int64(r.duration)
			i++
		}
	}
	if i != count {
		return nil, xerrors.Errorf("time table describes %d samples, size table %d", i, count)
	}

	return out, nil
}
