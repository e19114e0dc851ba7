package ratchet

import (
	"minimal-signal/crypto/curve25519"
	"minimal-signal/ratchet/aead"
	"minimal-signal/ratchet/header"
)

// Decrypt authenticates and decrypts one incoming (header, payload) pair,
// tolerating out-of-order delivery within MaxSkip and at most one epoch
// rollover per call (spec §4.4, Decrypt). No partial state is ever
// committed: every path below either returns an error with the session
// byte-for-byte as it was, or returns a plaintext with every touched field
// updated together.
func (s *Session) Decrypt(headerBytes, payload []byte) ([]byte, error) {
	if pt, ok, err := s.tryskippedBuffer(headerBytes, payload); ok {
		return pt, err
	}

	if s.hkr != nil {
		if cleartext, err := header.Open(*s.hkr, s.Info, headerBytes); err == nil {
			return s.decryptCurrentEpoch(cleartext, headerBytes, payload)
		}
	}

	cleartext, err := header.Open(*s.nhkr, s.Info, headerBytes)
	if err != nil {
		return nil, ErrHeaderDecryptFailed
	}
	return s.decryptNextEpoch(cleartext, headerBytes, payload)
}

// tryskippedBuffer is step 1 of Decrypt: linear-scan the skipped-message
// buffer for an entry whose header key authenticates this header and whose
// message number matches. ok reports whether a matching entry was found at
// all (regardless of whether the payload then decrypted).
func (s *Session) tryskippedBuffer(headerBytes, payload []byte) (plaintext []byte, ok bool, err error) {
	for _, k := range s.skippedOrder {
		mk, present := s.skipped[k]
		if !present {
			continue
		}
		cleartext, openErr := header.Open(k.hk, s.Info, headerBytes)
		if openErr != nil || cleartext.Ns != k.n {
			continue
		}

		nonce := concatAD(s.AD, headerBytes)
		plaintext, decErr := aead.Decrypt(mk[:], s.Info, nonce, payload)
		if decErr == nil {
			s.deleteSkipped(k)
		}
		return plaintext, true, decErr
	}
	return nil, false, nil
}

// decryptCurrentEpoch is step 2 of Decrypt: the header authenticated under
// HKr, so no DH ratchet step is needed. State commits only if the payload
// also decrypts.
func (s *Session) decryptCurrentEpoch(cleartext header.Cleartext, headerBytes, payload []byte) ([]byte, error) {
	plan, err := planSkip(*s.ckr, s.nr, cleartext.Ns, *s.hkr)
	if err != nil {
		return nil, err
	}

	finalCk, msgKey := kdfChain(plan.chainKeyAt(cleartext.Ns))
	nonce := concatAD(s.AD, headerBytes)
	plaintext, err := aead.Decrypt(msgKey[:], s.Info, nonce, payload)
	if err != nil {
		return nil, err
	}

	s.ckr = &finalCk
	s.nr = cleartext.Ns + 1
	s.mergeSkipped(plan.entries)
	return plaintext, nil
}

// decryptNextEpoch is step 3 of Decrypt: the header authenticated under
// NHKr, meaning the peer has advanced to a new DH ratchet epoch. Everything
// from the old-chain skip through the final payload decrypt is computed
// into local values first; the session is mutated only once, after the
// payload decrypt succeeds (spec §9, "DH-step atomicity").
func (s *Session) decryptNextEpoch(cleartext header.Cleartext, headerBytes, payload []byte) ([]byte, error) {
	var oldChainPlan skipPlan
	if s.ckr != nil {
		plan, err := planSkip(*s.ckr, s.nr, cleartext.PN, *s.hkr)
		if err != nil {
			return nil, err
		}
		oldChainPlan = plan
	}

	newDhs, err := curve25519.Generate()
	if err != nil {
		return nil, err
	}

	dhRecv, err := curve25519.X25519(s.dhs.Priv, cleartext.RatchetPub)
	if err != nil {
		return nil, err
	}
	rootAfterRecv := s.rk
	recvChainKey, newNhkr, err := kdfRootWithState(&rootAfterRecv, s.Info, dhRecv)
	if err != nil {
		return nil, err
	}

	dhSend, err := curve25519.X25519(newDhs.Priv, cleartext.RatchetPub)
	if err != nil {
		return nil, err
	}
	sendChainKey, newNhks, err := kdfRootWithState(&rootAfterRecv, s.Info, dhSend)
	if err != nil {
		return nil, err
	}

	newHks := *s.nhks
	newHkr := *s.nhkr

	newChainPlan, err := planSkip(recvChainKey, 0, cleartext.Ns, newHkr)
	if err != nil {
		return nil, err
	}
	finalCk, msgKey := kdfChain(newChainPlan.chainKeyAt(cleartext.Ns))

	nonce := concatAD(s.AD, headerBytes)
	plaintext, err := aead.Decrypt(msgKey[:], s.Info, nonce, payload)
	if err != nil {
		return nil, err
	}

	// Every field below commits together: this is the only mutation point
	// in the whole DH-ratchet-step path.
	s.pn = s.ns
	s.ns = 0
	s.nr = cleartext.Ns + 1
	s.dhr = &cleartext.RatchetPub
	s.hks = &newHks
	s.hkr = &newHkr
	s.nhkr = &newNhkr
	s.nhks = &newNhks
	s.dhs = *newDhs
	s.cks = &sendChainKey
	s.ckr = &finalCk
	s.rk = rootAfterRecv
	s.mergeSkipped(oldChainPlan.entries)
	s.mergeSkipped(newChainPlan.entries)

	return plaintext, nil
}

// kdfRootWithState runs kdf_root against an explicit root-key pointer
// instead of a *Session, so decryptNextEpoch can chain the receiving-chain
// and sending-chain root advances without mutating s.rk until the whole
// step is known to succeed.
func kdfRootWithState(rk *[32]byte, info []byte, dhOut [32]byte) (chainKey, nextHeaderKey [32]byte, err error) {
	scratch := &Session{Info: info, rk: *rk}
	chainKey, nextHeaderKey, err = scratch.kdfRoot(dhOut)
	if err != nil {
		return chainKey, nextHeaderKey, err
	}
	*rk = scratch.rk
	return chainKey, nextHeaderKey, nil
}

func (s *Session) deleteSkipped(k skippedKey) {
	delete(s.skipped, k)
	for i, existing := range s.skippedOrder {
		if existing == k {
			s.skippedOrder = append(s.skippedOrder[:i], s.skippedOrder[i+1:]...)
			break
		}
	}
}

func (s *Session) mergeSkipped(entries map[skippedKey][32]byte) {
	for k, v := range entries {
		if _, exists := s.skipped[k]; !exists {
			s.skippedOrder = append(s.skippedOrder, k)
		}
		s.skipped[k] = v
	}
}
