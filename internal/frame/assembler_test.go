package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vanturaiot/wmbus-core/internal/crc16"
)

func TestBlockCount(t *testing.T) {
	assert.Equal(t, 2, BlockCount(10))
	assert.Equal(t, 2, BlockCount(25))
	assert.Equal(t, 3, BlockCount(26))
	assert.Equal(t, 3, BlockCount(41))
	assert.Equal(t, 4, BlockCount(42))
}

func TestBlockSizesSumsToDataLen(t *testing.T) {
	for l := 0; l < 120; l++ {
		sizes := BlockSizes(byte(l))
		sum := 0
		for _, s := range sizes {
			sum += s
		}
		assert.Equal(t, l+1, sum, "l=%d", l)
		assert.Len(t, sizes, BlockCount(byte(l)))
	}
}

func TestAssembleRejectsBadCRC(t *testing.T) {
	a := &Assembler{}
	l := byte(3)
	payload := []byte{l, 0x01, 0x02, 0x03, 0x04}
	bad := append(append([]byte{}, payload...), 0x00, 0x00)
	_, err := a.assemble(bad, 0, 0)
	assert.Error(t, err)
	assert.Equal(t, 1, a.Counters.CRCFailures)
}

func TestAssembleAcceptsGoodCRC(t *testing.T) {
	a := &Assembler{}
	// L=4: L+1 = 5 data bytes, all in the first of BlockCount(4) = 2
	// blocks; the empty second block still carries its 2 CRC bytes.
	l := byte(4)
	payload := []byte{l, 0x01, 0x02, 0x03, 0x04}
	c := crc16.Checksum(payload)
	e := crc16.Checksum(nil)
	good := append(append([]byte{}, payload...), byte(c>>8), byte(c), byte(e>>8), byte(e))
	f, err := a.assemble(good, -70, 5)
	assert.NoError(t, err)
	assert.Equal(t, payload, f.Bytes)
	assert.Equal(t, -70, f.RSSIDBm)
}
