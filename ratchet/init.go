package ratchet

import "minimal-signal/crypto/curve25519"

// InitInitiator creates the initiating side of a session: the side that
// already knows the peer's current ratchet public key DHr (spec §4.4,
// "Initiator" case). If ownKeyPair is nil a fresh Curve25519 keypair is
// generated; X3DH instead passes the initiator's own identity keypair
// here, reusing it as the first ratchet keypair (spec §4.5's note).
func InitInitiator(ad, info []byte, ownKeyPair *curve25519.Pair, dhr curve25519.PublicKey, seeds Seeds) (*Session, error) {
	pair := ownKeyPair
	if pair == nil {
		generated, err := curve25519.Generate()
		if err != nil {
			return nil, err
		}
		pair = generated
	}

	s := &Session{
		AD:      ad,
		Info:    info,
		dhs:     *pair,
		dhr:     &dhr,
		rk:      seeds[0],
		skipped: make(map[skippedKey][32]byte),
	}

	dhOut, err := curve25519.X25519(s.dhs.Priv, dhr)
	if err != nil {
		return nil, err
	}
	chainKey, nextHeaderKey, err := s.kdfRoot(dhOut)
	if err != nil {
		return nil, err
	}

	s.cks = &chainKey
	s.nhks = &nextHeaderKey
	hks := seeds[1]
	s.hks = &hks
	nhkr := seeds[2]
	s.nhkr = &nhkr

	return s, nil
}

// InitResponder creates the responding side of a session: the side with no
// peer ratchet public key yet (spec §4.4, "Responder" case). It cannot
// encrypt until its first successful Decrypt performs the initial DH
// ratchet step and derives CKs (spec §9, "Responder's first sending chain").
func InitResponder(ad, info []byte, ownKeyPair curve25519.Pair, seeds Seeds) *Session {
	s := &Session{
		AD:      ad,
		Info:    info,
		dhs:     ownKeyPair,
		rk:      seeds[0],
		skipped: make(map[skippedKey][32]byte),
	}
	nhkr := seeds[1]
	s.nhkr = &nhkr
	nhks := seeds[2]
	s.nhks = &nhks
	return s
}
