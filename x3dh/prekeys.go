package x3dh

import (
	"minimal-signal/crypto/curve25519"
	"minimal-signal/crypto/xeddsa"
)

// DefaultOneTimePrekeyCount is how many one-time prekeys PublishBundle
// generates per call (spec §4.5, publish-bundle step 3).
const DefaultOneTimePrekeyCount = 10

func sign(identityPriv curve25519.PrivateKey, msg []byte) ([]byte, error) {
	random, err := curve25519.RandomBytes(64)
	if err != nil {
		return nil, err
	}
	return xeddsa.Sign(identityPriv, msg, random)
}

func verify(identityPub curve25519.PublicKey, msg, sig []byte) bool {
	return xeddsa.Verify(identityPub, msg, sig)
}

// GenerateSignedPrekey creates a new signed-prekey keypair and signs its
// public half with the identity key (spec §4.5, publish-bundle steps 1-2).
func GenerateSignedPrekey(identity curve25519.Pair) (*curve25519.Pair, []byte, error) {
	pair, err := curve25519.Generate()
	if err != nil {
		return nil, nil, err
	}
	sig, err := sign(identity.Priv, pair.Pub[:])
	if err != nil {
		return nil, nil, err
	}
	return pair, sig, nil
}

// GenerateOneTimePrekeys creates n fresh Curve25519 keypairs to append to a
// client's one-time prekey set (spec §4.5, publish-bundle step 3).
func GenerateOneTimePrekeys(n int) ([]curve25519.Pair, error) {
	pairs := make([]curve25519.Pair, n)
	for i := range pairs {
		pair, err := curve25519.Generate()
		if err != nil {
			return nil, err
		}
		pairs[i] = *pair
	}
	return pairs, nil
}
