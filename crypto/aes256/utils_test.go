package aes256

import (
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKeyAndIV(t *testing.T) (key [32]byte, iv [16]byte) {
	t.Helper()
	_, err := io.ReadFull(rand.Reader, key[:])
	require.NoError(t, err)
	_, err = io.ReadFull(rand.Reader, iv[:])
	require.NoError(t, err)
	return key, iv
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, iv := randomKeyAndIV(t)
	plaintext := []byte("a message that is not block aligned")

	ciphertext, err := Encrypt(plaintext, key, iv)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := Decrypt(ciphertext, key, iv)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptDecryptEmptyPlaintext(t *testing.T) {
	key, iv := randomKeyAndIV(t)

	ciphertext, err := Encrypt(nil, key, iv)
	require.NoError(t, err)

	decrypted, err := Decrypt(ciphertext, key, iv)
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestDecryptRejectsBadLength(t *testing.T) {
	key, iv := randomKeyAndIV(t)
	_, err := Decrypt([]byte("not a multiple of 16 bytes!"), key, iv)
	assert.ErrorIs(t, err, ErrCiphertextLengthInvalid)
}

func TestDecryptRejectsBadPadding(t *testing.T) {
	key, iv := randomKeyAndIV(t)

	ciphertext, err := Encrypt([]byte("hello block"), key, iv)
	require.NoError(t, err)
	ciphertext[len(ciphertext)-1] ^= 0xff

	_, err = Decrypt(ciphertext, key, iv)
	assert.Error(t, err)
}
