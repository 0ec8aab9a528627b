package tpl

import (
	"crypto/aes"
	"crypto/cipher"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

func TestDecodeNoHeaderInheritsDLLIdentity(t *testing.T) {
	tel := wmbus.NewTelegram(wmbus.AboutTelegram{}, nil)
	tel.DLLMfct, tel.DLLVersion, tel.DLLType = 0x1234, 7, 9
	res, err := Decode([]byte{ciNoHeader}, tel)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Consumed)
	assert.Equal(t, tel.DLLMfct, tel.TPLMfct)
	assert.Equal(t, wmbus.SecurityModeNone, tel.SecurityMode)
}

func TestDecodeLongHeaderParsesFields(t *testing.T) {
	tel := wmbus.NewTelegram(wmbus.AboutTelegram{}, nil)
	data := []byte{
		ciLongHeader,
		0x78, 0x56, 0x34, 0x12, // address
		0x34, 0x12, // mfct
		0x07, // version
		0x06, // type
		0x05, // access nr
		0x00, // status
		0x00, 0x00, // config word, security mode 0
	}
	res, err := Decode(data, tel)
	require.NoError(t, err)
	assert.Equal(t, 13, res.Consumed)
	assert.Equal(t, byte(0x05), tel.TPLAccessNr)
	assert.Equal(t, wmbus.SecurityModeNone, tel.SecurityMode)
}

func TestDecryptPassthroughWhenUnsecured(t *testing.T) {
	tel := &wmbus.Telegram{SecurityMode: wmbus.SecurityModeNone}
	plain, err := Decrypt(tel, wmbus.MeterKeys{}, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, plain)
}

func TestDecryptCBCRoundTrip(t *testing.T) {
	key := make([]byte, 16)
	tel := &wmbus.Telegram{
		SecurityMode: wmbus.SecurityModeAESCBC,
		TPLAddress:   [4]byte{1, 2, 3, 4},
		TPLMfct:      0x1234,
		TPLVersion:   1,
		TPLType:      2,
		TPLAccessNr:  9,
	}
	v := iv(tel)

	plaintext := append([]byte{0x2f, 0x2f}, make([]byte, 14)...) // one AES block
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, v[:]).CryptBlocks(ciphertext, plaintext)

	decoded, err := Decrypt(tel, wmbus.MeterKeys{Confidentiality: key}, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decoded)
}

func TestDecryptCBCWrongKeyDetected(t *testing.T) {
	key := make([]byte, 16)
	wrongKey := make([]byte, 16)
	wrongKey[0] = 1
	tel := &wmbus.Telegram{SecurityMode: wmbus.SecurityModeAESCBC, TPLAccessNr: 1}
	v := iv(tel)

	plaintext := append([]byte{0x2f, 0x2f}, make([]byte, 14)...)
	block, _ := aes.NewCipher(key)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, v[:]).CryptBlocks(ciphertext, plaintext)

	_, err := Decrypt(tel, wmbus.MeterKeys{Confidentiality: wrongKey}, ciphertext)
	assert.ErrorIs(t, err, wmbus.ErrWrongKey)
}

func TestDecryptRequiresKeyWhenEncrypted(t *testing.T) {
	tel := &wmbus.Telegram{SecurityMode: wmbus.SecurityModeAESCBC}
	_, err := Decrypt(tel, wmbus.MeterKeys{}, []byte{1, 2, 3, 4})
	assert.ErrorIs(t, err, wmbus.ErrNeedsKey)
}
