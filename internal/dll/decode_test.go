package dll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

func TestDecodePopulatesTelegram(t *testing.T) {
	mfctCode, err := EncodeManufacturer("ELS")
	require.NoError(t, err)

	block := []byte{
		0x44,                   // C-field
		byte(mfctCode), byte(mfctCode >> 8),
		0x78, 0x56, 0x34, 0x12, // address, LE
		0x3c, // version
		0x06, // type
	}

	tel := wmbus.NewTelegram(wmbus.AboutTelegram{}, nil)
	err = Decode(block, tel)
	require.NoError(t, err)

	assert.Equal(t, mfctCode, tel.DLLMfct)
	assert.Equal(t, byte(0x3c), tel.DLLVersion)
	assert.Equal(t, byte(0x06), tel.DLLType)
	assert.Equal(t, "ELS", DecodeManufacturer(tel.DLLMfct))
	require.Len(t, tel.Addresses, 1)
	assert.Equal(t, "12345678", tel.Addresses[0].ID)
}

func TestDecodeRejectsShortBlock(t *testing.T) {
	tel := wmbus.NewTelegram(wmbus.AboutTelegram{}, nil)
	err := Decode([]byte{0x01, 0x02}, tel)
	assert.Error(t, err)
}

func TestManufacturerRoundTrip(t *testing.T) {
	for _, code := range []string{"ELS", "TCH", "APA", "ITW", "AXI"} {
		packed, err := EncodeManufacturer(code)
		require.NoError(t, err)
		assert.Equal(t, code, DecodeManufacturer(packed))
	}
}

func TestEncodeManufacturerRejectsBadInput(t *testing.T) {
	_, err := EncodeManufacturer("ab")
	assert.Error(t, err)
	_, err = EncodeManufacturer("a1c")
	assert.Error(t, err)
}
