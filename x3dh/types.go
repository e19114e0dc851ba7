// Package x3dh implements the Extended Triple Diffie-Hellman handshake
// (spec §4.5): prekey-bundle generation and validation, the initiator's
// send-initial-message derivation, and the responder's receive-initial-
// message acceptance. Both sides end by handing a new ratchet.Session its
// three seed secrets.
package x3dh

import (
	"errors"

	"minimal-signal/crypto/curve25519"
)

var (
	ErrInvalidBundleSignature = errors.New("x3dh: signed prekey signature does not verify")
	ErrMissingOneTimePrekey   = errors.New("x3dh: bundle has no one-time prekey")
)

// PublishedBundle is the tuple a client publishes to the relay (spec §3,
// "Prekey bundle (published)").
type PublishedBundle struct {
	IdentityPub       curve25519.PublicKey
	SignedPrekeyPub   curve25519.PublicKey
	SignedPrekeySig   []byte
	OneTimePrekeysPub []curve25519.PublicKey
}

// FetchedBundle is what an initiator receives from the relay after it pops
// one one-time prekey (spec §3, "Prekey bundle (fetched by initiator)").
type FetchedBundle struct {
	IdentityPub      curve25519.PublicKey
	SignedPrekeyPub  curve25519.PublicKey
	SignedPrekeySig  []byte
	OneTimePrekeyPub curve25519.PublicKey
}

// InitialMessage is the handshake message the initiator submits to the
// relay and the responder fetches back (spec §6, "Initial-message wire
// object").
type InitialMessage struct {
	InitiatorIdentityPub     curve25519.PublicKey
	ResponderIdentityPub     curve25519.PublicKey
	ResponderSignedPrekeyPub curve25519.PublicKey
	EphemeralPub             curve25519.PublicKey
	OneTimePrekeyPub         curve25519.PublicKey
	Header                   []byte
	Payload                  []byte
}

// VerifyBundle checks a fetched bundle's signed-prekey signature against
// its identity key (spec §4.5, initiator step 1).
func VerifyBundle(b FetchedBundle) error {
	if !verify(b.IdentityPub, b.SignedPrekeyPub[:], b.SignedPrekeySig) {
		return ErrInvalidBundleSignature
	}
	return nil
}
