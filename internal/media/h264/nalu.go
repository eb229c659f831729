package h264

// NAL unit types used by the player. See ITU-T H.264 table 7-1.
const (
	TypeSlice = 1
	TypeIDR   = 5
	TypeSEI   = 6
	TypeSPS   = 7
	TypePPS   = 8
	TypeAUD   = 9
)

type NALU []byte

func (nalu NALU) ForbiddenBit() byte {
	return nalu[0] & 0x80 >> 7
}

func (nalu NALU) NRI() byte {
	return nalu[0] & 0x60 >> 5
}

func (nalu NALU) Type() byte {
	return nalu[0] & 0x1f
}

// IsParameterSet reports whether the unit is an SPS or PPS.
func (nalu NALU) IsParameterSet() bool {
	if len(nalu) == 0 {
		return false
	}
	t := nalu.Type()
	return t == TypeSPS || t == TypePPS
}
