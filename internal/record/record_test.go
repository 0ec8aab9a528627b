package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

func TestParseVolumeRecord(t *testing.T) {
	// DIF 0x04 (32-bit int, instantaneous), VIF 0x13 (m3, 1e-3 scale),
	// value 1234 (LE) -> 1.234 m3.
	data := []byte{0x04, 0x13, 0xd2, 0x04, 0x00, 0x00}
	entries := Parse(data)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.False(t, e.Invalid)
	assert.True(t, e.HasNumeric)
	assert.InDelta(t, 1.234, e.Numeric, 1e-9)
	assert.Equal(t, wmbus.VIFRangeVolume, e.VIFRange)
	assert.Equal(t, wmbus.Instantaneous, e.MeasurementType)
}

func TestParseManufacturerDataConsumesRemainder(t *testing.T) {
	data := []byte{0x0f, 0xaa, 0xbb, 0xcc}
	entries := Parse(data)
	require.Len(t, entries, 1)
	assert.Equal(t, "MFCT", entries[0].DifVifKey)
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc}, entries[0].Raw)
}

func TestParseIdleFillerSkipped(t *testing.T) {
	data := []byte{0x2f, 0x2f, 0x04, 0x13, 0x01, 0x00, 0x00, 0x00}
	entries := Parse(data)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Invalid)
}

func TestParseTruncatedRecordFlagsInvalidAndAdvances(t *testing.T) {
	data := []byte{0x04, 0x13, 0x01} // claims 4 bytes, only 1 present
	entries := Parse(data)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Invalid)
}

func TestParseLVARString(t *testing.T) {
	// DIF 0x0d (LVAR), VIF 0x7c (manufacturer text-ish), length 3, "CBA" reversed.
	data := []byte{0x0d, 0x7c, 0x03, 'A', 'B', 'C'}
	entries := Parse(data)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].HasString)
	assert.Equal(t, "CBA", entries[0].Str)
}

func TestParseDifeAccumulatesStorageNumber(t *testing.T) {
	// DIF 0xc4 (ext bit + storage LSB + length 4), DIFE 0x01, VIF 0x13.
	data := []byte{0xc4, 0x01, 0x13, 0x01, 0x00, 0x00, 0x00}
	entries := Parse(data)
	require.Len(t, entries, 1)
	assert.NotZero(t, entries[0].StorageNr)
}
