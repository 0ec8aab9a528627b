package ell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripKnownVariant(t *testing.T) {
	data := []byte{0x8b, 0x01, 0x02, 0xaa, 0xbb}
	rest, ok := Strip(data)
	assert.True(t, ok)
	assert.Equal(t, []byte{0xaa, 0xbb}, rest)
}

func TestStripUnknownCIIsNoop(t *testing.T) {
	data := []byte{0x72, 0x01}
	rest, ok := Strip(data)
	assert.False(t, ok)
	assert.Equal(t, data, rest)
}

func TestIsELL(t *testing.T) {
	assert.True(t, IsELL(0x8d))
	assert.False(t, IsELL(0x78))
}
