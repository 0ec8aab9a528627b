package crc16

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumIsDeterministic(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	assert.Equal(t, Checksum(data), Checksum(data))
}

func TestVerifyRoundTrip(t *testing.T) {
	payload := []byte{0xaa, 0xbb, 0xcc}
	c := Checksum(payload)
	block := append(append([]byte{}, payload...), byte(c>>8), byte(c))
	assert.True(t, Verify(block))
}

func TestVerifyDetectsCorruption(t *testing.T) {
	payload := []byte{0xaa, 0xbb, 0xcc}
	c := Checksum(payload)
	block := append(append([]byte{}, payload...), byte(c>>8), byte(c))
	block[0] ^= 0xff
	assert.False(t, Verify(block))
}

func TestVerifyRejectsShortBlock(t *testing.T) {
	assert.False(t, Verify([]byte{0x01}))
}
