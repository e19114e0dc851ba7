package xeddsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minimal-signal/crypto/curve25519"
)

func randomNonce(t *testing.T) []byte {
	t.Helper()
	n, err := curve25519.RandomBytes(64)
	require.NoError(t, err)
	return n
}

func TestSignVerifyRoundTrip(t *testing.T) {
	pair, err := curve25519.Generate()
	require.NoError(t, err)

	msg := []byte("signed prekey")
	sig, err := Sign(pair.Priv, msg, randomNonce(t))
	require.NoError(t, err)
	assert.Len(t, sig, SignatureSize)

	assert.True(t, Verify(pair.Pub, msg, sig))
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	pair, err := curve25519.Generate()
	require.NoError(t, err)

	sig, err := Sign(pair.Priv, []byte("original"), randomNonce(t))
	require.NoError(t, err)

	assert.False(t, Verify(pair.Pub, []byte("tampered"), sig))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	pair, err := curve25519.Generate()
	require.NoError(t, err)
	other, err := curve25519.Generate()
	require.NoError(t, err)

	msg := []byte("signed prekey")
	sig, err := Sign(pair.Priv, msg, randomNonce(t))
	require.NoError(t, err)

	assert.False(t, Verify(other.Pub, msg, sig))
}

func TestVerifyRejectsBadSignatureLength(t *testing.T) {
	pair, err := curve25519.Generate()
	require.NoError(t, err)
	assert.False(t, Verify(pair.Pub, []byte("msg"), []byte("too short")))
}
