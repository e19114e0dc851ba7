// Package header implements the fixed-layout ratchet header codec (spec
// §4.3): a 40-byte cleartext header and its encrypted wire form.
package header

import (
	"encoding/binary"
	"errors"

	"minimal-signal/crypto/curve25519"
	"minimal-signal/ratchet/aead"
)

// CleartextSize is the wire size of an unencrypted header:
// ratchet_pub (32) ‖ PN (4) ‖ Ns (4).
const CleartextSize = 32 + 4 + 4

// NonceSize is the size of the random nonce appended to an encrypted header.
const NonceSize = 16

var ErrBadLayout = errors.New("header: decrypted header is not 40 bytes")

// Cleartext is the ratchet header before encryption.
type Cleartext struct {
	RatchetPub curve25519.PublicKey
	PN         uint32
	Ns         uint32
}

// Marshal serializes a cleartext header to its fixed 40-byte big-endian layout.
func (h Cleartext) Marshal() []byte {
	buf := make([]byte, CleartextSize)
	copy(buf[0:32], h.RatchetPub[:])
	binary.BigEndian.PutUint32(buf[32:36], h.PN)
	binary.BigEndian.PutUint32(buf[36:40], h.Ns)
	return buf
}

// Unmarshal parses a 40-byte big-endian layout into a Cleartext header.
func Unmarshal(buf []byte) (Cleartext, error) {
	if len(buf) != CleartextSize {
		return Cleartext{}, ErrBadLayout
	}
	var h Cleartext
	copy(h.RatchetPub[:], buf[0:32])
	h.PN = binary.BigEndian.Uint32(buf[32:36])
	h.Ns = binary.BigEndian.Uint32(buf[36:40])
	return h, nil
}

// Seal encrypts a cleartext header under the header key hk, returning
// auth_encrypt(hk, info, nonce, header) ‖ nonce, with nonce drawn fresh
// from the random source.
func Seal(hk [32]byte, info []byte, h Cleartext) ([]byte, error) {
	nonce, err := curve25519.RandomBytes(NonceSize)
	if err != nil {
		return nil, err
	}
	encrypted, err := aead.Encrypt(hk[:], info, nonce, h.Marshal())
	if err != nil {
		return nil, err
	}
	return append(encrypted, nonce...), nil
}

// Open decrypts a header encrypted by Seal under header key hk. The nonce
// is split off the tail of wire before the tag is verified — it is never
// treated as an AES-CBC IV (the IV comes from the HKDF output inside aead).
func Open(hk [32]byte, info []byte, wire []byte) (Cleartext, error) {
	if len(wire) < NonceSize {
		return Cleartext{}, ErrBadLayout
	}
	nonce := wire[len(wire)-NonceSize:]
	encrypted := wire[:len(wire)-NonceSize]

	plaintext, err := aead.Decrypt(hk[:], info, nonce, encrypted)
	if err != nil {
		return Cleartext{}, err
	}
	return Unmarshal(plaintext)
}
