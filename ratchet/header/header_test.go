package header

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minimal-signal/crypto/curve25519"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	pair, err := curve25519.Generate()
	require.NoError(t, err)

	h := Cleartext{RatchetPub: pair.Pub, PN: 3, Ns: 7}
	buf := h.Marshal()
	assert.Len(t, buf, CleartextSize)

	parsed, err := Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
}

func TestUnmarshalRejectsBadLength(t *testing.T) {
	_, err := Unmarshal(make([]byte, 10))
	assert.ErrorIs(t, err, ErrBadLayout)
}

func TestSealOpenRoundTrip(t *testing.T) {
	pair, err := curve25519.Generate()
	require.NoError(t, err)

	var hk [32]byte
	copy(hk[:], []byte("a 32 byte header encryption key"))
	info := []byte("minimal-signal")
	cleartext := Cleartext{RatchetPub: pair.Pub, PN: 1, Ns: 2}

	wire, err := Seal(hk, info, cleartext)
	require.NoError(t, err)

	opened, err := Open(hk, info, wire)
	require.NoError(t, err)
	assert.Equal(t, cleartext, opened)
}

func TestOpenRejectsWrongHeaderKey(t *testing.T) {
	pair, err := curve25519.Generate()
	require.NoError(t, err)

	var hk, otherHk [32]byte
	copy(hk[:], []byte("a 32 byte header encryption key"))
	copy(otherHk[:], []byte("a different 32-byte header key!"))
	info := []byte("minimal-signal")

	wire, err := Seal(hk, info, Cleartext{RatchetPub: pair.Pub})
	require.NoError(t, err)

	_, err = Open(otherHk, info, wire)
	assert.Error(t, err)
}

func TestSealProducesDistinctNoncesPerCall(t *testing.T) {
	pair, err := curve25519.Generate()
	require.NoError(t, err)

	var hk [32]byte
	copy(hk[:], []byte("a 32 byte header encryption key"))
	info := []byte("minimal-signal")
	cleartext := Cleartext{RatchetPub: pair.Pub}

	a, err := Seal(hk, info, cleartext)
	require.NoError(t, err)
	b, err := Seal(hk, info, cleartext)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
