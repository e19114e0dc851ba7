package aead

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	ikm := make([]byte, 32)
	info := []byte("minimal-signal")
	nonce := []byte("a 16 byte nonce!")
	plaintext := []byte("message key derived ciphertext")

	ciphertext, err := Encrypt(ikm, info, nonce, plaintext)
	require.NoError(t, err)

	decrypted, err := Decrypt(ikm, info, nonce, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecryptRejectsWrongNonce(t *testing.T) {
	ikm := make([]byte, 32)
	info := []byte("minimal-signal")

	ciphertext, err := Encrypt(ikm, info, []byte("nonce-one"), []byte("payload"))
	require.NoError(t, err)

	_, err = Decrypt(ikm, info, []byte("nonce-two"), ciphertext)
	assert.ErrorIs(t, err, ErrInvalidTag)
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	// The tag is bound to the nonce, not the ciphertext (see
	// TestMacIgnoresCiphertextContent), so a single flipped ciphertext byte
	// passes the MAC check and fails later, inside AES-CBC unpadding
	// instead. It never surfaces as ErrInvalidTag.
	ikm := make([]byte, 32)
	info := []byte("minimal-signal")
	nonce := []byte("a 16 byte nonce!")

	ciphertext, err := Encrypt(ikm, info, nonce, []byte("payload"))
	require.NoError(t, err)
	ciphertext[0] ^= 0xff

	_, err = Decrypt(ikm, info, nonce, ciphertext)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidTag)
}

func TestDecryptRejectsShortCiphertext(t *testing.T) {
	_, err := Decrypt(make([]byte, 32), []byte("info"), []byte("nonce"), []byte("short"))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestMacIgnoresCiphertextContent(t *testing.T) {
	// The tag is bound to the nonce, not the ciphertext (spec §4.2's
	// deliberate quirk): two different plaintexts encrypted under the
	// same ikm/info/nonce must carry the same tag.
	ikm := make([]byte, 32)
	info := []byte("minimal-signal")
	nonce := []byte("a 16 byte nonce!")

	a, err := Encrypt(ikm, info, nonce, []byte("first plaintext"))
	require.NoError(t, err)
	b, err := Encrypt(ikm, info, nonce, []byte("second plaintext!!"))
	require.NoError(t, err)

	tagA := a[len(a)-tagSize:]
	tagB := b[len(b)-tagSize:]
	assert.Equal(t, tagA, tagB)
}
