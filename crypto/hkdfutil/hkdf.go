// Package hkdfutil implements RFC 5869 HKDF extract-and-expand over
// HMAC-SHA-256, the sole key-derivation primitive used across the ratchet
// and the X3DH handshake.
package hkdfutil

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// zeroSalt is used whenever a caller does not chain an explicit salt, per
// RFC 5869's "salt defaults to a string of zeros" rule.
var zeroSalt = make([]byte, sha256.Size)

// Derive runs HKDF-SHA-256 extract-and-expand over ikm with the given info
// label, writing length bytes of output key material. If salt is nil, a
// 32-byte zero salt is used so invocations can still be chained explicitly
// by passing a prior derivation's output as salt.
func Derive(ikm, info, salt []byte, length int) ([]byte, error) {
	if salt == nil {
		salt = zeroSalt
	}
	reader := hkdf.New(sha256.New, ikm, salt, info)
	out := make([]byte, length)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}
