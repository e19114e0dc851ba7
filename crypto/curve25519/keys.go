// Package curve25519 provides Curve25519 keypair generation and X25519
// scalar multiplication, the sole Diffie-Hellman primitive used by the
// ratchet and the X3DH handshake.
package curve25519

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/curve25519"
)

// PrivateKey and PublicKey are both 32-byte Curve25519 values. Identity,
// signed-prekey, one-time-prekey, ephemeral, and ratchet keys all share this
// representation.
type (
	PrivateKey [32]byte
	PublicKey  [32]byte
)

// Pair is a Curve25519 keypair.
type Pair struct {
	Priv PrivateKey
	Pub  PublicKey
}

var ErrInvalidSharedSecret = errors.New("curve25519: invalid shared secret")

// Generate returns a freshly generated Curve25519 keypair.
func Generate() (*Pair, error) {
	var priv PrivateKey
	if _, err := io.ReadFull(rand.Reader, priv[:]); err != nil {
		return nil, err
	}
	// Clamp per RFC 7748 so every generated scalar is a valid X25519 key.
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pub, err := priv.Public()
	if err != nil {
		return nil, err
	}
	return &Pair{Priv: priv, Pub: *pub}, nil
}

// Public derives the X25519 public key for a private key.
func (p PrivateKey) Public() (*PublicKey, error) {
	out, err := curve25519.X25519(p[:], curve25519.Basepoint)
	if err != nil {
		return nil, err
	}
	var pub PublicKey
	copy(pub[:], out)
	return &pub, nil
}

// X25519 computes the Diffie-Hellman shared secret between a private and a
// peer public key.
func X25519(priv PrivateKey, pub PublicKey) ([32]byte, error) {
	out, err := curve25519.X25519(priv[:], pub[:])
	if err != nil {
		return [32]byte{}, err
	}
	if len(out) != 32 {
		return [32]byte{}, ErrInvalidSharedSecret
	}
	var secret [32]byte
	copy(secret[:], out)
	return secret, nil
}

// RandomBytes draws n cryptographically secure random bytes, the random
// source primitive spec.md's primitives layer requires (XEdDSA signing
// randomness, header nonces).
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}
