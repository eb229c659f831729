package h264

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func avcc(nalus ...[]byte) []byte {
	var out []byte
	for _, n := range nalus {
		l := len(n)
		out = append(out, byte(l>>24), byte(l>>16), byte(l>>8), byte(l))
		out = append(out, n...)
	}
	return out
}

func TestAVCCToAnnexB(t *testing.T) {
	sample := avcc([]byte{0x09, 0xf0}, []byte{0x65, 1, 2, 3})
	dst := make([]byte, 64)

	n := AVCCToAnnexB(dst, sample, 4)
	assert.Equal(t, []byte{0, 0, 0, 1, 0x09, 0xf0, 0, 0, 0, 1, 0x65, 1, 2, 3}, dst[:n])
}

func TestAVCCToAnnexBTwoByteLengths(t *testing.T) {
	sample := []byte{0, 2, 0x41, 0x9a, 0, 1, 0x06}
	dst := make([]byte, 16)

	n := AVCCToAnnexB(dst, sample, 2)
	assert.Equal(t, []byte{0, 0, 0, 1, 0x41, 0x9a, 0, 0, 0, 1, 0x06}, dst[:n])
}

func TestAVCCToAnnexBTruncatesOnOverflow(t *testing.T) {
	first := []byte{0x09, 0xf0}
	second := make([]byte, 20)
	second[0] = 0x65
	sample := avcc(first, second)

	// Room for the first unit and part of the second only.
	dst := make([]byte, 12)
	n := AVCCToAnnexB(dst, sample, 4)
	assert.Equal(t, 6, n)
	assert.Equal(t, []byte{0, 0, 0, 1, 0x09, 0xf0}, dst[:n])

	// Nothing fits.
	n = AVCCToAnnexB(make([]byte, 3), sample, 4)
	assert.Equal(t, 0, n)
}

func TestAVCCToAnnexBStopsOnMalformedLength(t *testing.T) {
	sample := append(avcc([]byte{0x41, 0x01}), 0, 0, 0, 9, 0x41)
	dst := make([]byte, 64)

	n := AVCCToAnnexB(dst, sample, 4)
	assert.Equal(t, []byte{0, 0, 0, 1, 0x41, 0x01}, dst[:n])

	// Dangling partial length prefix.
	n = AVCCToAnnexB(dst, []byte{0, 0}, 4)
	assert.Equal(t, 0, n)
}

func TestAVCCToAnnexBRejectsHugeLength(t *testing.T) {
	dst := make([]byte, 64)
	for _, prefix := range [][]byte{
		{0x80, 0, 0, 0},
		{0xff, 0xff, 0xff, 0xff},
		{0x7f, 0xff, 0xff, 0xff},
	} {
		sample := append(append([]byte(nil), prefix...), 0x65, 1, 2, 3)
		assert.Equal(t, 0, AVCCToAnnexB(dst, sample, 4), "prefix % x", prefix)
	}

	// Units before the bad length are kept.
	sample := append(avcc([]byte{0x41, 0x01}), 0x80, 0, 0, 0, 0x65)
	n := AVCCToAnnexB(dst, sample, 4)
	assert.Equal(t, []byte{0, 0, 0, 1, 0x41, 0x01}, dst[:n])
}

func TestSplitAnnexBRoundTrip(t *testing.T) {
	b := []byte{0, 0, 0, 1, 0x67, 0x42, 0, 0, 1, 0x68, 0xce, 0, 0, 0, 1, 0x65, 0x88}
	nalus := SplitAnnexB(b)
	if assert.Len(t, nalus, 3) {
		assert.Equal(t, NALU{0x67, 0x42}, nalus[0])
		assert.Equal(t, byte(TypeSPS), nalus[0].Type())
		assert.True(t, nalus[1].IsParameterSet())
		assert.Equal(t, byte(TypeIDR), nalus[2].Type())
		assert.False(t, nalus[2].IsParameterSet())
	}

	assert.Equal(t, avcc([]byte{0x67, 0x42}, []byte{0x68, 0xce}, []byte{0x65, 0x88}), AnnexBToAVCC(b))
}

func TestWithStartCode(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 1, 0x68, 0xce}, WithStartCode([]byte{0x68, 0xce}))
}

func TestNALUHeader(t *testing.T) {
	n := NALU{0x65}
	assert.Equal(t, byte(0), n.ForbiddenBit())
	assert.Equal(t, byte(3), n.NRI())
	assert.Equal(t, byte(TypeIDR), n.Type())
	assert.False(t, NALU(nil).IsParameterSet())
}
