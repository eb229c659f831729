package h264

import (
	"bytes"

	"github.com/lanikai/alohaplayer/internal/packet"
)

// StartCode is the 4-byte Annex B delimiter written before every NAL unit.
var StartCode = []byte{0, 0, 0, 1}

// AVCCToAnnexB rewrites a sample of length-prefixed NAL units (as stored in
// MP4 files) into start-code-delimited form in dst, and returns the number of
// bytes written. lengthSize is the width of each length prefix, normally 4.
//
// Conversion stops at the first NAL unit that is malformed or does not fit in
// dst. Units already written are kept, and the rest of the sample is dropped
// without an error.
func AVCCToAnnexB(dst, sample []byte, lengthSize int) int {
	r := packet.NewReader(sample)
	w := packet.NewWriter(dst)
	for r.Remaining() > 0 {
		if r.CheckRemaining(lengthSize) != nil {
			break
		}
		n := r.ReadUintN(lengthSize)
		if uint64(n) > uint64(r.Remaining()) {
			break
		}
		size := int(n)
		if w.CheckCapacity(len(StartCode)+size) != nil {
			break
		}
		w.WriteSlice(StartCode)
		w.WriteSlice(r.ReadSlice(size))
	}
	return w.Length()
}

// WithStartCode returns nalu prefixed by a 4-byte start code.
func WithStartCode(nalu []byte) []byte {
	out := make([]byte, 0, len(StartCode)+len(nalu))
	out = append(out, StartCode...)
	return append(out, nalu...)
}

// SplitAnnexB splits a start-code-delimited buffer into NAL units, without
// their start codes. Leading bytes before the first start code are ignored.
func SplitAnnexB(b []byte) []NALU {
	var out []NALU
	start := -1
	for i := 0; i+2 < len(b); {
		if b[i] == 0 && b[i+1] == 0 && b[i+2] == 1 {
			if start >= 0 {
				if nalu := trimTrailingZeros(b[start:i]); len(nalu) > 0 {
					out = append(out, NALU(nalu))
				}
			}
			i += 3
			start = i
			continue
		}
		i++
	}
	if start >= 0 && start < len(b) {
		out = append(out, NALU(b[start:]))
	}
	return out
}

// A 4-byte start code leaves one zero byte at the end of the preceding unit.
func trimTrailingZeros(b []byte) []byte {
	return bytes.TrimRight(b, "\x00")
}

// AnnexBToAVCC rewrites a start-code-delimited buffer into 4-byte
// length-prefixed form, the framing expected by decoders configured with an
// avcC record.
func AnnexBToAVCC(b []byte) []byte {
	return JoinAVCC(SplitAnnexB(b))
}

// JoinAVCC concatenates NAL units, each preceded by a 4-byte length.
func JoinAVCC(nalus []NALU) []byte {
	n := 0
	for _, nalu := range nalus {
		n += 4 + len(nalu)
	}
	w := packet.NewWriterSize(n)
	for _, nalu := range nalus {
		w.WriteUint32(uint32(len(nalu)))
		w.WriteSlice(nalu)
	}
	return w.Bytes()
}
