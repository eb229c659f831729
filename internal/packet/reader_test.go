package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReaderFields(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x00, 0x00, 0x01, 0x02, 0xaa, 0xbb, 0xcc, 0xdd})

	assert.Equal(t, byte(0x01), r.ReadByte())
	assert.Equal(t, uint32(0x0203), r.ReadUintN(2))
	assert.Equal(t, uint32(0x102), r.ReadUintN(4))
	assert.Equal(t, 4, r.Remaining())
	assert.NoError(t, r.CheckRemaining(4))
	assert.Error(t, r.CheckRemaining(5))
	assert.Equal(t, []byte{0xaa}, r.ReadSlice(1))
	assert.Equal(t, []byte{0xbb, 0xcc, 0xdd}, r.ReadSlice(3))
	assert.Equal(t, 0, r.Remaining())
}

func TestWriterCapacity(t *testing.T) {
	w := NewWriterSize(6)
	w.WriteUint32(1)
	assert.Equal(t, 2, w.Available())

	assert.Error(t, w.WriteSlice([]byte{1, 2, 3}))
	assert.Equal(t, 4, w.Length())

	assert.NoError(t, w.WriteSlice([]byte{7, 8}))
	assert.Equal(t, []byte{0, 0, 0, 1, 7, 8}, w.Bytes())
	assert.Equal(t, 0, w.Available())
}
