package afl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildHeader(sessionID, totalLen uint16, more bool) []byte {
	fcl := uint16(0)
	if more {
		fcl = fclMoreFragments
	}
	return []byte{
		CI,
		byte(fcl), byte(fcl >> 8),
		0x00,
		byte(sessionID), byte(sessionID >> 8),
		byte(totalLen), byte(totalLen >> 8),
	}
}

func TestParseRoundTrip(t *testing.T) {
	data := buildHeader(0x0042, 10, true)
	h, ok := Parse(data)
	require.True(t, ok)
	assert.Equal(t, uint16(0x0042), h.SessionID)
	assert.Equal(t, uint16(10), h.TotalLength)
	assert.True(t, h.MoreFragments)
}

func TestReassemblerAccumulatesAcrossFragments(t *testing.T) {
	r := NewReassembler(4, time.Minute)
	h := &Header{SessionID: 1, TotalLength: 6}

	full, done := r.Append("addr1", h, []byte{1, 2, 3})
	assert.False(t, done)
	assert.Nil(t, full)

	full, done = r.Append("addr1", h, []byte{4, 5, 6})
	require.True(t, done)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, full)
}

func TestReassemblerDiscardsAfterSilence(t *testing.T) {
	now := time.Now()
	r := NewReassembler(4, time.Second)
	r.Now = func() time.Time { return now }

	h := &Header{SessionID: 1, TotalLength: 6}
	r.Append("addr1", h, []byte{1, 2, 3})

	now = now.Add(2 * time.Second)
	full, done := r.Append("addr1", h, []byte{9, 9, 9})
	assert.False(t, done)
	assert.Nil(t, full)
}
