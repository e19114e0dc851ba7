package ratchet

// skipPlan is the staged result of walking a receiving chain from one
// message number up to (not including) another, generating the keys
// skip() would persist, without mutating anything. Callers derive the
// message key from chainKey, and commit by merging entries into the
// session and storing the chain key that derivation yields as the new CKr
// once the rest of the decrypt has also succeeded (spec §9, "DH-step
// atomicity").
type skipPlan struct {
	entries  map[skippedKey][32]byte
	chainKey [32]byte
}

// planSkip stages spec §4.4's Skip(until) against an explicit chain key
// and count, rather than a *Session, so it can be used both for the
// current receiving chain and for a tentative post-DH-step chain.
//
// If from+MaxSkip < until, it fails with ErrTooManySkipped (spec's skip
// bound). If there is nothing to skip (from == until), it still returns a
// valid plan whose chainKey equals the input chain key.
func planSkip(chainKey [32]byte, from, until uint32, hk [32]byte) (skipPlan, error) {
	if from+MaxSkip < until {
		return skipPlan{}, ErrTooManySkipped
	}

	entries := make(map[skippedKey][32]byte, until-from)
	cur := chainKey
	for n := from; n < until; n++ {
		next, msgKey := kdfChain(cur)
		entries[skippedKey{hk: hk, n: n}] = msgKey
		cur = next
	}

	return skipPlan{entries: entries, chainKey: cur}, nil
}

// chainKeyAt returns the chain key this plan leaves the chain at — i.e.
// the key from which the message at the plan's "until" position derives.
// The argument exists only to keep call sites self-documenting about which
// message number they are about to derive a key for.
func (p skipPlan) chainKeyAt(uint32) [32]byte {
	return p.chainKey
}
