// Package xeddsa implements XEdDSA-style signatures: Ed25519 signing and
// verification keyed directly by a Curve25519 (X25519) keypair, via the
// standard birational map between the Montgomery and (twisted) Edwards
// forms of Curve25519. This lets the identity key used for X3DH's
// Diffie-Hellman operations double as a signing key for the signed-prekey
// signature, without publishing a second, Ed25519-specific public key.
package xeddsa

import (
	"crypto/sha512"
	"crypto/subtle"
	"errors"

	"filippo.io/edwards25519"
	"filippo.io/edwards25519/field"
)

const SignatureSize = 64

var (
	ErrInvalidSignatureLength = errors.New("xeddsa: signature must be 64 bytes")
	ErrInvalidNonceLength     = errors.New("xeddsa: signing nonce must be 64 bytes")
	ErrInvalidPublicKey       = errors.New("xeddsa: public key is not a valid curve point")
)

// Sign produces an XEdDSA signature over msg using the Curve25519 private
// key priv. random64 must be 64 bytes of fresh randomness; it feeds the
// nonce derivation alongside the private scalar so the nonce is unique per
// signature without requiring a deterministic hash of the seed the way
// plain Ed25519 does (there is no separate "seed" here — priv is used
// as-is, X3DH-style).
func Sign(priv [32]byte, msg []byte, random64 []byte) ([]byte, error) {
	if len(random64) != 64 {
		return nil, ErrInvalidNonceLength
	}

	a, A, err := expandPrivate(priv)
	if err != nil {
		return nil, err
	}
	aBytes := a.Bytes()
	aEnc := A.Bytes()

	rh := sha512.New()
	rh.Write(aBytes)
	rh.Write(msg)
	rh.Write(random64)
	r := edwards25519.NewScalar()
	if _, err := r.SetUniformBytes(rh.Sum(nil)); err != nil {
		return nil, err
	}

	R := new(edwards25519.Point).ScalarBaseMult(r)
	REnc := R.Bytes()

	hh := sha512.New()
	hh.Write(REnc)
	hh.Write(aEnc)
	hh.Write(msg)
	h := edwards25519.NewScalar()
	if _, err := h.SetUniformBytes(hh.Sum(nil)); err != nil {
		return nil, err
	}

	s := edwards25519.NewScalar().MultiplyAdd(h, a, r)

	sig := make([]byte, 0, SignatureSize)
	sig = append(sig, REnc...)
	sig = append(sig, s.Bytes()...)
	return sig, nil
}

// Verify reports whether sig is a valid XEdDSA signature over msg under the
// Curve25519 public key pub.
func Verify(pub [32]byte, msg, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}

	A, err := montgomeryToEdwards(pub)
	if err != nil {
		return false
	}
	aEnc := A.Bytes()

	R := new(edwards25519.Point)
	if _, err := R.SetBytes(sig[:32]); err != nil {
		return false
	}
	s := edwards25519.NewScalar()
	if _, err := s.SetCanonicalBytes(sig[32:]); err != nil {
		return false
	}

	hh := sha512.New()
	hh.Write(sig[:32])
	hh.Write(aEnc)
	hh.Write(msg)
	h := edwards25519.NewScalar()
	if _, err := h.SetUniformBytes(hh.Sum(nil)); err != nil {
		return false
	}

	sB := new(edwards25519.Point).ScalarBaseMult(s)
	hA := new(edwards25519.Point).ScalarMult(h, A)
	rhs := new(edwards25519.Point).Add(R, hA)

	return subtle.ConstantTimeCompare(sB.Bytes(), rhs.Bytes()) == 1
}

// expandPrivate derives the Edwards scalar/point pair for a Curve25519
// private key, flipping the scalar's sign if needed so the resulting point
// always encodes with sign bit 0 — the convention Verify assumes when it
// reconstructs a point from the bare Montgomery public key, which carries
// no sign information of its own.
func expandPrivate(priv [32]byte) (*edwards25519.Scalar, *edwards25519.Point, error) {
	a := edwards25519.NewScalar().SetBytesWithClamping(priv[:])
	A := new(edwards25519.Point).ScalarBaseMult(a)

	if A.Bytes()[31]&0x80 != 0 {
		a = a.Negate(a)
		A = new(edwards25519.Point).ScalarBaseMult(a)
	}
	return a, A, nil
}

// montgomeryToEdwards maps an X25519 public key (a Montgomery u-coordinate)
// to the Edwards point with the same u-coordinate and sign bit 0, using the
// standard birational map y = (u-1)/(u+1). Montgomery public keys carry no
// sign bit, so the sign-0 candidate is exactly the point expandPrivate
// commits to producing.
func montgomeryToEdwards(pub [32]byte) (*edwards25519.Point, error) {
	var u field.Element
	if _, err := u.SetBytes(pub[:]); err != nil {
		return nil, ErrInvalidPublicKey
	}

	one := new(field.Element).One()
	num := new(field.Element).Subtract(&u, one)
	den := new(field.Element).Add(&u, one)
	den.Invert(den)
	y := new(field.Element).Multiply(num, den)

	enc := y.Bytes()
	enc[31] &= 0x7f // force sign bit 0, matching expandPrivate's convention

	A := new(edwards25519.Point)
	if _, err := A.SetBytes(enc); err != nil {
		return nil, ErrInvalidPublicKey
	}
	return A, nil
}
