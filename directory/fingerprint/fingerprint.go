// Package fingerprint computes the human-verifiable safety number two
// parties compare out-of-band to confirm they share the same identity
// keys (spec §2, fingerprint verification). It is a display aid, not an
// authentication mechanism: nothing in the ratchet or X3DH packages
// consults it.
package fingerprint

import (
	"crypto/sha512"
	"encoding/binary"

	"minimal-signal/crypto/curve25519"
)

// iterations is the SHA-512 stretch count applied to each party's
// (identity key, stable identifier) pair before the two digests are
// combined, matching Signal's published safety-number algorithm.
const iterations = 5200

// digits is the number of decimal digits the combined fingerprint is
// rendered as, split into six 5-digit groups for display.
const digits = 30

// Local computes one party's stretched digest: their own identity public
// key and a stable identifier for them (e.g. their directory-assigned
// handle or relay account id).
func Local(identity curve25519.PublicKey, owner []byte) ([]byte, error) {
	return stretch(identity, owner)
}

// Combined stretches both parties' identity keys and identifiers, then
// folds the two digests into a 30-digit number with the lexicographically
// smaller digest placed first — so both sides compute the same result
// regardless of which one is "local" (spec §2, fingerprint verification).
func Combined(selfKey curve25519.PublicKey, selfOwner []byte, peerKey curve25519.PublicKey, peerOwner []byte) (*[30]int, error) {
	selfDigest, err := stretch(selfKey, selfOwner)
	if err != nil {
		return nil, err
	}
	peerDigest, err := stretch(peerKey, peerOwner)
	if err != nil {
		return nil, err
	}

	first, second := selfDigest, peerDigest
	if bytesGreater(selfDigest, peerDigest) {
		first, second = peerDigest, selfDigest
	}

	return render(first, second), nil
}

func stretch(pub curve25519.PublicKey, owner []byte) ([]byte, error) {
	digest := append(append([]byte{}, pub[:]...), owner...)
	hash := sha512.New()
	for i := 0; i < iterations; i++ {
		if _, err := hash.Write(digest); err != nil {
			return nil, err
		}
		digest = hash.Sum(nil)
		hash.Reset()
	}
	return digest[:digits], nil
}

// render folds two 30-byte digests into 30 decimal digits, alternating
// which digest supplies each 5-digit group: groups 0, 2 and 4 come from
// first and groups 1, 3 and 5 from second, so the number as a whole
// depends on both parties' identity keys while each single group depends
// on one digest only. Only the first 15 bytes of each digest are used.
func render(first, second []byte) *[30]int {
	var result [30]int
	for i := 0; i < 6; i++ {
		digest := first
		if i%2 == 1 {
			digest = second
		}
		chunk := digest[(i/2)*5 : (i/2)*5+5]
		num := binary.BigEndian.Uint64(append([]byte{0, 0, 0}, chunk...)) % 100000
		for j := 4; j >= 0; j-- {
			result[i*5+j] = int(num % 10)
			num /= 10
		}
	}
	return &result
}

func bytesGreater(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}
