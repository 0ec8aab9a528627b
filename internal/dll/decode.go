// Package dll implements the wM-Bus Data Link Layer decoder (spec
// §4.2): the C-field, manufacturer, address, version and device-type
// that open every telegram.
//
// Manufacturer letter-packing/unpacking and the header-field slicing
// below are grounded on the teacher's own CAN-ID bit-splitting in
// internal/j1939/j1939.go's processFrames ("pgn := (canID >> 8) &
// 0x3FFFF"; "sa := uint8(canID & 0xFF)") — the same shape of pulling
// several sub-fields out of a fixed-width header by shifting and
// masking, generalized here to the wM-Bus DLL header layout.
package dll

import (
	"encoding/binary"
	"fmt"

	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

// HeaderLen is the number of bytes the DLL header occupies after the
// L-field: C, Mfct(2), Address(4), Version, Type.
const HeaderLen = 9

// Decode parses the DLL header from block (which starts at the
// C-field, i.e. block[0] is L's successor) and populates t's DLL
// fields, pushing a DLL Address.
func Decode(block []byte, t *wmbus.Telegram) error {
	if len(block) < HeaderLen {
		return &wmbus.TransportError{Reason: fmt.Sprintf("dll header too short: %d bytes", len(block))}
	}

	cField := block[0]
	mfct := binary.LittleEndian.Uint16(block[1:3])
	var addr [4]byte
	copy(addr[:], block[3:7])
	version := block[7]
	devType := block[8]

	t.DLLMfct = mfct
	t.DLLAddress = addr
	t.DLLVersion = version
	t.DLLType = devType

	t.PushAddress(wmbus.Address{
		ID:      FormatAddress(addr),
		Mfct:    mfct,
		Version: version,
		Type:    devType,
	})

	_ = cField // control field is consumed by higher layers that need frame direction/type
	return nil
}

// CField returns the DLL control byte, the first byte of block.
func CField(block []byte) byte {
	if len(block) == 0 {
		return 0
	}
	return block[0]
}

// FormatAddress renders a 4-byte little-endian BCD address as the
// 8-digit string meters are identified by (wire bytes 78 56 34 12
// render as "12345678").
func FormatAddress(addr [4]byte) string {
	n := uint32(addr[0]) | uint32(addr[1])<<8 | uint32(addr[2])<<16 | uint32(addr[3])<<24
	return fmt.Sprintf("%08x", n)
}

// DecodeManufacturer unpacks the 16-bit letter-packed manufacturer
// field into its three-letter code, per spec §4.2: each letter is
// stored as ((letter-64) & 0x1f), packed (l1<<10)|(l2<<5)|l3. The top
// bit is ignored here (masked off with 0x7fff, the same mask as
// wmbus.Address.Mask7FFF) to tolerate
// meters that set it incorrectly.
func DecodeManufacturer(mfct uint16) string {
	m := mfct & 0x7fff
	l1 := byte((m>>10)&0x1f) + 64
	l2 := byte((m>>5)&0x1f) + 64
	l3 := byte(m&0x1f) + 64
	return string([]byte{l1, l2, l3})
}

// EncodeManufacturer packs a three-letter manufacturer code (A-Z) into
// the 16-bit field, the inverse of DecodeManufacturer.
func EncodeManufacturer(code string) (uint16, error) {
	if len(code) != 3 {
		return 0, fmt.Errorf("manufacturer code must be 3 letters, got %q", code)
	}
	var vals [3]byte
	for i := 0; i < 3; i++ {
		c := code[i]
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("manufacturer code %q: invalid letter %q", code, c)
		}
		vals[i] = (c - 64) & 0x1f
	}
	return uint16(vals[0])<<10 | uint16(vals[1])<<5 | uint16(vals[2]), nil
}
