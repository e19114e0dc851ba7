package directory

import "errors"

var (
	// ErrUnknownSignedPrekey is returned when an incoming handshake names a
	// signed prekey that is neither the client's current nor immediately
	// previous one (spec §4.5, receiver step 2).
	ErrUnknownSignedPrekey = errors.New("directory: unknown signed prekey")

	// ErrUnknownOneTimePrekey is returned when an incoming handshake names
	// a one-time prekey the client never published or has already
	// consumed (spec §4.5, receiver step 3).
	ErrUnknownOneTimePrekey = errors.New("directory: unknown one-time prekey")

	// ErrUnknownSession is returned when Encrypt/Decrypt is called with a
	// session id the client has no ratchet session for.
	ErrUnknownSession = errors.New("directory: unknown session id")

	// ErrIdenticalSignature is returned by PublishBundle when re-publishing
	// would carry the same signed-prekey signature as the currently
	// published bundle (spec §3's bundle
	// invariant, enforced by the relay — kept here too as a defensive
	// client-side check since signing is randomized and should never
	// collide in practice).
	ErrIdenticalSignature = errors.New("directory: bundle signature unchanged since last publish")
)
