package x3dh

import (
	"bytes"

	"minimal-signal/crypto/curve25519"
	"minimal-signal/crypto/hkdfutil"
	"minimal-signal/ratchet"
)

// ikmPrefix is the 32 bytes of 0xFF prepended to the concatenated DH
// outputs before HKDF (spec §4.5 step 4), matching X3DH's fixed padding so
// the IKM always begins with a value no valid Curve25519 field element
// encodes to.
var ikmPrefix = bytes.Repeat([]byte{0xFF}, 32)

// SendInitialMessage is the initiator's half of X3DH (spec §4.5). It
// verifies the fetched bundle's signature, runs the four-DH computation,
// derives the three ratchet seeds, and initializes and uses a brand-new
// ratchet.Session to encrypt the first plaintext. The caller submits the
// returned InitialMessage to the relay and keeps the returned Session
// keyed under whatever session id the relay assigns.
func SendInitialMessage(initiatorIdentity curve25519.Pair, bundle FetchedBundle, info, plaintext []byte) (*InitialMessage, *ratchet.Session, error) {
	if err := VerifyBundle(bundle); err != nil {
		return nil, nil, err
	}

	ephemeral, err := curve25519.Generate()
	if err != nil {
		return nil, nil, err
	}

	dh1, err := curve25519.X25519(initiatorIdentity.Priv, bundle.SignedPrekeyPub)
	if err != nil {
		return nil, nil, err
	}
	dh2, err := curve25519.X25519(ephemeral.Priv, bundle.IdentityPub)
	if err != nil {
		return nil, nil, err
	}
	dh3, err := curve25519.X25519(ephemeral.Priv, bundle.SignedPrekeyPub)
	if err != nil {
		return nil, nil, err
	}
	dh4, err := curve25519.X25519(ephemeral.Priv, bundle.OneTimePrekeyPub)
	if err != nil {
		return nil, nil, err
	}

	seeds, err := deriveSeeds(info, dh1, dh2, dh3, dh4)
	if err != nil {
		return nil, nil, err
	}

	ad := concatKeys(initiatorIdentity.Pub, bundle.IdentityPub)

	session, err := ratchet.InitInitiator(ad, info, &initiatorIdentity, bundle.SignedPrekeyPub, seeds)
	if err != nil {
		return nil, nil, err
	}

	headerBytes, payload, err := session.Encrypt(plaintext)
	if err != nil {
		return nil, nil, err
	}

	msg := &InitialMessage{
		InitiatorIdentityPub:     initiatorIdentity.Pub,
		ResponderIdentityPub:     bundle.IdentityPub,
		ResponderSignedPrekeyPub: bundle.SignedPrekeyPub,
		EphemeralPub:             ephemeral.Pub,
		OneTimePrekeyPub:         bundle.OneTimePrekeyPub,
		Header:                   headerBytes,
		Payload:                  payload,
	}
	return msg, session, nil
}

// ReceiveInitialMessage is the responder's half of X3DH (spec §4.5). The
// caller has already resolved msg.ResponderSignedPrekeyPub and
// msg.OneTimePrekeyPub to their private counterparts (spec §4.5, receiver
// steps 2-3 — signed-prekey and one-time-prekey lookup live in the session
// directory, which owns that key material; see DESIGN.md).
//
// The responder's own ratchet keypair is the resolved signed prekey, not
// the bare identity key: this mirrors the initiator treating the signed
// prekey as the peer's DHr (spec §4.5 initiator step 6), which the two
// sides must agree on for the first DH ratchet step to produce matching
// root keys. See DESIGN.md for this resolution of spec.md's literal
// "keypair=IK_B" wording.
func ReceiveInitialMessage(responderIdentity curve25519.Pair, signedPrekey curve25519.Pair, oneTimePrekey curve25519.Pair, msg InitialMessage, info []byte) (*ratchet.Session, []byte, error) {
	dh1, err := curve25519.X25519(signedPrekey.Priv, msg.InitiatorIdentityPub)
	if err != nil {
		return nil, nil, err
	}
	dh2, err := curve25519.X25519(responderIdentity.Priv, msg.EphemeralPub)
	if err != nil {
		return nil, nil, err
	}
	dh3, err := curve25519.X25519(signedPrekey.Priv, msg.EphemeralPub)
	if err != nil {
		return nil, nil, err
	}
	dh4, err := curve25519.X25519(oneTimePrekey.Priv, msg.EphemeralPub)
	if err != nil {
		return nil, nil, err
	}

	seeds, err := deriveSeeds(info, dh1, dh2, dh3, dh4)
	if err != nil {
		return nil, nil, err
	}

	ad := concatKeys(msg.InitiatorIdentityPub, responderIdentity.Pub)

	session := ratchet.InitResponder(ad, info, signedPrekey, seeds)
	plaintext, err := session.Decrypt(msg.Header, msg.Payload)
	if err != nil {
		return nil, nil, err
	}
	return session, plaintext, nil
}

func deriveSeeds(info []byte, dhs ...[32]byte) (ratchet.Seeds, error) {
	ikm := make([]byte, 0, len(ikmPrefix)+32*len(dhs))
	ikm = append(ikm, ikmPrefix...)
	for _, dh := range dhs {
		ikm = append(ikm, dh[:]...)
	}

	okm, err := hkdfutil.Derive(ikm, info, nil, 96)
	if err != nil {
		return ratchet.Seeds{}, err
	}

	var seeds ratchet.Seeds
	copy(seeds[0][:], okm[0:32])
	copy(seeds[1][:], okm[32:64])
	copy(seeds[2][:], okm[64:96])
	return seeds, nil
}

func concatKeys(a, b curve25519.PublicKey) []byte {
	out := make([]byte, 0, 64)
	out = append(out, a[:]...)
	out = append(out, b[:]...)
	return out
}
