package hmacutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum256IsDeterministic(t *testing.T) {
	key := []byte("chain key")
	a := Sum256(key, []byte{0x01})
	b := Sum256(key, []byte{0x01})
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestSum256DiffersByLabel(t *testing.T) {
	key := []byte("chain key")
	msgKey := Sum256(key, []byte{0x01})
	nextChainKey := Sum256(key, []byte{0x02})
	assert.NotEqual(t, msgKey, nextChainKey)
}

func TestEqual(t *testing.T) {
	a := Sum256([]byte("k"), []byte("m"))
	b := Sum256([]byte("k"), []byte("m"))
	c := Sum256([]byte("k"), []byte("n"))

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}
