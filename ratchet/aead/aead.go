// Package aead implements the encrypt-then-MAC authenticated encryption
// primitive shared by payload and header encryption (spec §4.2). It is
// deliberately the same construction for both call sites: derive an
// 80-byte OKM from the input key material, split it into an AES key, a
// MAC key, and an IV, encrypt under AES-256-CBC, then MAC the nonce (not
// the ciphertext) with HMAC-SHA-256.
//
// The tag binding the nonce instead of the ciphertext is not an oversight:
// existing peers on the wire compute it this way, and a conforming
// implementation must preserve it for interoperability (see spec §4.2 and
// §9's open question).
package aead

import (
	"errors"

	"minimal-signal/crypto/aes256"
	"minimal-signal/crypto/hkdfutil"
	"minimal-signal/crypto/hmacutil"
)

// ErrInvalidTag is returned when the authentication tag does not match.
var ErrInvalidTag = errors.New("aead: invalid tag")

// ErrCiphertextTooShort is returned when the input is shorter than one tag.
var ErrCiphertextTooShort = errors.New("aead: ciphertext shorter than tag")

const (
	okmLength = 80
	tagSize   = 32
)

// Encrypt returns ciphertext‖tag for plaintext under ikm, domain-separated
// by info, with the MAC computed over nonce.
func Encrypt(ikm, info, nonce, plaintext []byte) ([]byte, error) {
	encKey, authKey, iv, err := deriveKeys(ikm, info)
	if err != nil {
		return nil, err
	}

	ciphertext, err := aes256.Encrypt(plaintext, encKey, iv)
	if err != nil {
		return nil, err
	}

	tag := hmacutil.Sum256(authKey[:], nonce)
	return append(ciphertext, tag...), nil
}

// Decrypt recovers the plaintext from ciphertext‖tag, verifying the tag
// over nonce before decrypting. Returns ErrInvalidTag on mismatch.
func Decrypt(ikm, info, nonce, ciphertextAndTag []byte) ([]byte, error) {
	if len(ciphertextAndTag) < tagSize {
		return nil, ErrCiphertextTooShort
	}

	encKey, authKey, iv, err := deriveKeys(ikm, info)
	if err != nil {
		return nil, err
	}

	ciphertext := ciphertextAndTag[:len(ciphertextAndTag)-tagSize]
	tag := ciphertextAndTag[len(ciphertextAndTag)-tagSize:]

	expected := hmacutil.Sum256(authKey[:], nonce)
	if !hmacutil.Equal(expected, tag) {
		return nil, ErrInvalidTag
	}

	return aes256.Decrypt(ciphertext, encKey, iv)
}

func deriveKeys(ikm, info []byte) (encKey, authKey [32]byte, iv [16]byte, err error) {
	okm, err := hkdfutil.Derive(ikm, info, nil, okmLength)
	if err != nil {
		return encKey, authKey, iv, err
	}
	copy(encKey[:], okm[0:32])
	copy(authKey[:], okm[32:64])
	copy(iv[:], okm[64:80])
	return encKey, authKey, iv, nil
}
