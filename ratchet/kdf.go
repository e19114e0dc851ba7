package ratchet

import (
	"minimal-signal/crypto/hkdfutil"
	"minimal-signal/crypto/hmacutil"
)

// kdfRoot advances the root chain: okm = hkdf(ikm=dhOut, info, 96,
// salt=RK), with info the session's Info string; RK is updated in place;
// returns (chain_key, next_header_key).
func (s *Session) kdfRoot(dhOut [32]byte) (chainKey, nextHeaderKey [32]byte, err error) {
	okm, err := hkdfutil.Derive(dhOut[:], s.Info, s.rk[:], 96)
	if err != nil {
		return chainKey, nextHeaderKey, err
	}
	copy(s.rk[:], okm[0:32])
	copy(chainKey[:], okm[32:64])
	copy(nextHeaderKey[:], okm[64:96])
	return chainKey, nextHeaderKey, nil
}

// kdfChain advances a symmetric chain key: msg_key = hmac(ck, 0x01),
// new_chain_key = hmac(ck, 0x02).
func kdfChain(ck [32]byte) (newChainKey, msgKey [32]byte) {
	mk := hmacutil.Sum256(ck[:], []byte{0x01})
	nck := hmacutil.Sum256(ck[:], []byte{0x02})
	copy(msgKey[:], mk)
	copy(newChainKey[:], nck)
	return newChainKey, msgKey
}
