package ratchet

import (
	"minimal-signal/ratchet/aead"
	"minimal-signal/ratchet/header"
)

// Encrypt derives the next sending message key, advances the sending
// chain, and returns the header and payload wire bytes (spec §4.4,
// Encrypt). It fails with ErrNotReady if no sending chain exists yet —
// this happens for a freshly created responder session until it has
// successfully decrypted one incoming message.
func (s *Session) Encrypt(plaintext []byte) (headerBytes, payload []byte, err error) {
	if s.cks == nil || s.hks == nil {
		return nil, nil, ErrNotReady
	}

	newCk, msgKey := kdfChain(*s.cks)
	s.cks = &newCk

	cleartext := header.Cleartext{
		RatchetPub: s.dhs.Pub,
		PN:         s.pn,
		Ns:         s.ns,
	}
	headerBytes, err = header.Seal(*s.hks, s.Info, cleartext)
	if err != nil {
		return nil, nil, err
	}

	nonce := concatAD(s.AD, headerBytes)
	payload, err = aead.Encrypt(msgKey[:], s.Info, nonce, plaintext)
	if err != nil {
		return nil, nil, err
	}

	s.ns++
	return headerBytes, payload, nil
}

func concatAD(ad, headerBytes []byte) []byte {
	out := make([]byte, 0, len(ad)+len(headerBytes))
	out = append(out, ad...)
	out = append(out, headerBytes...)
	return out
}
