package threeofsix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// encodeNibble is the test-only inverse of decodeTable, used to build
// synthetic 3-of-6 wire data for round-trip assertions.
func encodeNibble(n byte) byte {
	for sym, v := range decodeTable {
		if v == n {
			return sym
		}
	}
	panic("no codeword for nibble")
}

func encodeBitstream(logical []byte) []byte {
	var bits []byte
	for _, b := range logical {
		hi, lo := b>>4, b&0xf
		for _, sym := range []byte{encodeNibble(hi), encodeNibble(lo)} {
			for i := 5; i >= 0; i-- {
				bits = append(bits, (sym>>uint(i))&1)
			}
		}
	}
	var out []byte
	for len(bits)%8 != 0 {
		bits = append(bits, 0)
	}
	for i := 0; i < len(bits); i += 8 {
		var b byte
		for j := 0; j < 8; j++ {
			b = (b << 1) | bits[i+j]
		}
		out = append(out, b)
	}
	return out
}

func TestDecodeRoundTrip(t *testing.T) {
	logical := []byte{0x12, 0x34, 0xab}
	wire := encodeBitstream(logical)
	out, ok := Decode(wire, len(logical))
	assert.True(t, ok)
	assert.Equal(t, logical, out)
}

func TestDecodeNibbleRejectsInvalidSymbol(t *testing.T) {
	_, ok := DecodeNibble(0x00)
	assert.False(t, ok)
}

func TestDecodeStopsOnFirstMiss(t *testing.T) {
	wire := []byte{0x00, 0x00, 0x00}
	out, ok := Decode(wire, 2)
	assert.False(t, ok)
	assert.Empty(t, out)
}

func TestWireLength(t *testing.T) {
	assert.Equal(t, 3, WireLength(2))
	assert.Equal(t, 2, WireLength(1))
}
