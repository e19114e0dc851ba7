package ratchet

import "minimal-signal/crypto/curve25519"

// MaxSkip is the maximum number of message keys a single decrypt call may
// skip within one receiving chain.
const MaxSkip = 10

// Seeds is the three 32-byte secrets X3DH hands to a freshly initialized
// session: the initial root key and the two parties' initial header keys.
type Seeds [3][32]byte

// skippedKey identifies one buffered out-of-order message key: the header
// key of the epoch it belongs to, plus its position within that epoch's
// receiving chain. Keying on the header key (not just the message number)
// is what lets Decrypt's skipped-buffer pass try a header under the right
// epoch even after the DH ratchet has since moved on.
type skippedKey struct {
	hk [32]byte
	n  uint32
}

// Session is one Double Ratchet session with header encryption, per spec
// §3/§4.4. It is a single-writer object: the owner must serialize Encrypt,
// Decrypt, and any state inspection on one Session — see §5. Session never
// locks internally.
type Session struct {
	AD   []byte
	Info []byte

	dhs curve25519.Pair
	dhr *curve25519.PublicKey

	rk [32]byte

	cks *[32]byte
	ckr *[32]byte

	ns uint32
	nr uint32
	pn uint32

	hks  *[32]byte
	hkr  *[32]byte
	nhks *[32]byte
	nhkr *[32]byte

	skipped      map[skippedKey][32]byte
	skippedOrder []skippedKey
}

// Ready reports whether the session has derived a sending chain, i.e.
// whether it has left the Fresh state for SenderReady (spec §4.4's state
// machine).
func (s *Session) Ready() bool {
	return s.cks != nil
}

// RatchetPublic returns the session's current sending ratchet public key,
// the value an initiator embeds in its very first header.
func (s *Session) RatchetPublic() curve25519.PublicKey {
	return s.dhs.Pub
}
