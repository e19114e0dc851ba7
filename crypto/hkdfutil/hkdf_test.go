package hkdfutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveIsDeterministic(t *testing.T) {
	ikm := []byte("input key material")
	info := []byte("minimal-signal")

	a, err := Derive(ikm, info, nil, 96)
	require.NoError(t, err)
	b, err := Derive(ikm, info, nil, 96)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 96)
}

func TestDeriveDiffersBySalt(t *testing.T) {
	ikm := []byte("input key material")
	info := []byte("minimal-signal")

	withZeroSalt, err := Derive(ikm, info, nil, 32)
	require.NoError(t, err)
	withExplicitSalt, err := Derive(ikm, info, []byte("a salt"), 32)
	require.NoError(t, err)

	assert.False(t, bytes.Equal(withZeroSalt, withExplicitSalt))
}

func TestDeriveDiffersByInfo(t *testing.T) {
	ikm := []byte("input key material")

	a, err := Derive(ikm, []byte("info-a"), nil, 32)
	require.NoError(t, err)
	b, err := Derive(ikm, []byte("info-b"), nil, 32)
	require.NoError(t, err)

	assert.False(t, bytes.Equal(a, b))
}
