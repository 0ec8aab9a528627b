// Package threeofsix implements the 3-of-6 line code T-mode and C-mode
// wM-Bus payloads are encoded with: every 6 bits on the wire carries 4
// bits of logical data, chosen from a fixed 16-entry table so that
// every valid symbol has exactly three set bits (spec §4.1).
package threeofsix

// decodeTable maps a 6-bit wire symbol to the 4-bit nibble it encodes.
// Symbols with a Hamming weight other than three, or a weight-three
// symbol not in the wM-Bus alphabet, are not valid codewords.
var decodeTable = map[byte]byte{
	0x16: 0x0, 0x0d: 0x1, 0x0e: 0x2, 0x0b: 0x3,
	0x1c: 0x4, 0x19: 0x5, 0x1a: 0x6, 0x13: 0x7,
	0x2c: 0x8, 0x25: 0x9, 0x26: 0xa, 0x23: 0xb,
	0x34: 0xc, 0x31: 0xd, 0x32: 0xe, 0x29: 0xf,
}

// Miss is returned in place of a decoded nibble when a 6-bit group has
// no entry in the table. Per spec §9's Open Question, a single decode
// miss drops the whole frame rather than attempting correction.
const Miss = 0xff

// DecodeNibble looks up the 4-bit value a 6-bit wire symbol encodes,
// returning (value, true), or (Miss, false) if the symbol is invalid.
func DecodeNibble(symbol byte) (byte, bool) {
	v, ok := decodeTable[symbol&0x3f]
	if !ok {
		return Miss, false
	}
	return v, true
}

// Decode converts a 3-of-6 encoded wire buffer into logical data bytes.
// Each logical byte consumes 12 wire bits (two 6-bit symbols, high
// nibble first), so wireBytes = ceil(3*len(out)/2) per spec §4.1. On
// the first decode miss, Decode stops and returns the bytes decoded so
// far along with ok=false; the caller discards the frame.
func Decode(wire []byte, logicalLen int) (out []byte, ok bool) {
	out = make([]byte, 0, logicalLen)

	bitpos := 0
	readSymbol := func() (byte, bool) {
		// Each symbol is 6 bits; pull them out of the wire buffer
		// treating it as one big bitstream, MSB-first, matching how
		// the wire actually carries the chips.
		var sym byte
		for i := 0; i < 6; i++ {
			byteIdx := bitpos / 8
			if byteIdx >= len(wire) {
				return 0, false
			}
			bitIdx := 7 - (bitpos % 8)
			bit := (wire[byteIdx] >> uint(bitIdx)) & 1
			sym = (sym << 1) | bit
			bitpos++
		}
		return sym, true
	}

	for len(out) < logicalLen {
		hiSym, got := readSymbol()
		if !got {
			return out, false
		}
		hi, okHi := DecodeNibble(hiSym)
		if !okHi {
			return out, false
		}

		loSym, got := readSymbol()
		if !got {
			return out, false
		}
		lo, okLo := DecodeNibble(loSym)
		if !okLo {
			return out, false
		}

		out = append(out, (hi<<4)|lo)
	}
	return out, true
}

// WireLength returns the number of 3-of-6 encoded wire bytes needed to
// carry frameBytes logical bytes: ceil(3*frameBytes/2) per spec §4.1.
func WireLength(frameBytes int) int {
	return (3*frameBytes + 1) / 2
}
