package curve25519

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesUsableKeypair(t *testing.T) {
	pair, err := Generate()
	require.NoError(t, err)

	pub, err := pair.Priv.Public()
	require.NoError(t, err)
	assert.Equal(t, pair.Pub, *pub)
}

func TestX25519IsCommutative(t *testing.T) {
	alice, err := Generate()
	require.NoError(t, err)
	bob, err := Generate()
	require.NoError(t, err)

	aliceSecret, err := X25519(alice.Priv, bob.Pub)
	require.NoError(t, err)
	bobSecret, err := X25519(bob.Priv, alice.Pub)
	require.NoError(t, err)

	assert.Equal(t, aliceSecret, bobSecret)
}

func TestRandomBytesLength(t *testing.T) {
	b, err := RandomBytes(64)
	require.NoError(t, err)
	assert.Len(t, b, 64)
}
