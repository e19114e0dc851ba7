package relay

import "errors"

var (
	// ErrNoBundle is returned when no bundle has ever been published for an
	// identity.
	ErrNoBundle = errors.New("relay: no bundle published for identity")

	// ErrNoOneTimePrekey is returned when an identity's bundle has no
	// one-time prekeys left to pop (spec §4.6, relay bundle store).
	ErrNoOneTimePrekey = errors.New("relay: identity has no one-time prekeys left")

	// ErrNoMessage is returned when no initial message is stored under a
	// session id (never posted, already fetched, or expired).
	ErrNoMessage = errors.New("relay: no queued message")

	// ErrIdenticalSignature is returned when a PUT bundle carries the same
	// signed-prekey signature as the identity's currently stored bundle
	// (spec §6, "Cannot publish bundle with same signature").
	ErrIdenticalSignature = errors.New("relay: cannot publish bundle with same signature")
)
