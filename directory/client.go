// Package directory implements the per-peer session directory (spec §2
// item 6, §3 "Session directory entry", §4.6): a client's long-term
// identity keypair, its current and previous signed prekey, its unused
// one-time prekeys, and the mapping from session id to ratchet session.
package directory

import (
	"bytes"

	"github.com/google/uuid"

	"minimal-signal/crypto/curve25519"
	"minimal-signal/ratchet"
	"minimal-signal/x3dh"
)

// Client owns one peer's identity and every ratchet session it is a party
// to. A Client is destroyed with its owning process; it performs no
// internal locking — spec §5 makes the caller responsible for serializing
// operations on any one session, and the directory's own map access is
// only ever touched from that same serial execution context.
type Client struct {
	Identity curve25519.Pair

	hasSignedPrekey         bool
	signedPrekey            curve25519.Pair
	signedPrekeySig         []byte
	previousSignedPrekey    *curve25519.Pair
	previousSignedPrekeySig []byte

	oneTimePrekeys map[curve25519.PublicKey]curve25519.Pair
	sessions       map[uuid.UUID]*ratchet.Session
}

// NewClient creates a session directory for one identity keypair.
func NewClient(identity curve25519.Pair) *Client {
	return &Client{
		Identity:       identity,
		oneTimePrekeys: make(map[curve25519.PublicKey]curve25519.Pair),
		sessions:       make(map[uuid.UUID]*ratchet.Session),
	}
}

// PublishBundle rotates the signed prekey (retaining the old one as
// "previous"), tops up the one-time prekey set, and returns the bundle to
// publish to the relay (spec §4.5, publish-bundle).
func (c *Client) PublishBundle() (x3dh.PublishedBundle, error) {
	if c.hasSignedPrekey {
		previous := c.signedPrekey
		c.previousSignedPrekey = &previous
		c.previousSignedPrekeySig = c.signedPrekeySig
	}

	pair, sig, err := x3dh.GenerateSignedPrekey(c.Identity)
	if err != nil {
		return x3dh.PublishedBundle{}, err
	}
	if bytes.Equal(sig, c.previousSignedPrekeySig) {
		return x3dh.PublishedBundle{}, ErrIdenticalSignature
	}
	c.signedPrekey = *pair
	c.signedPrekeySig = sig
	c.hasSignedPrekey = true

	fresh, err := x3dh.GenerateOneTimePrekeys(x3dh.DefaultOneTimePrekeyCount)
	if err != nil {
		return x3dh.PublishedBundle{}, err
	}
	pubs := make([]curve25519.PublicKey, len(fresh))
	for i, pair := range fresh {
		c.oneTimePrekeys[pair.Pub] = pair
		pubs[i] = pair.Pub
	}

	return x3dh.PublishedBundle{
		IdentityPub:       c.Identity.Pub,
		SignedPrekeyPub:   c.signedPrekey.Pub,
		SignedPrekeySig:   c.signedPrekeySig,
		OneTimePrekeysPub: pubs,
	}, nil
}

// BeginSession runs the initiator half of X3DH against a fetched bundle,
// returning the initial message to submit to the relay. The caller must
// call RegisterSession with the session id the relay assigns before the
// session can be used again.
func (c *Client) BeginSession(bundle x3dh.FetchedBundle, info, plaintext []byte) (*x3dh.InitialMessage, *ratchet.Session, error) {
	return x3dh.SendInitialMessage(c.Identity, bundle, info, plaintext)
}

// RegisterSession adopts an already-initialized ratchet session under a
// session id, for use by both BeginSession's caller and tests.
func (c *Client) RegisterSession(sid uuid.UUID, s *ratchet.Session) {
	c.sessions[sid] = s
}

// AcceptSession runs the responder half of X3DH against a fetched initial
// message, resolving the signed prekey and one-time prekey the sender
// used, then registers the resulting session under sid (spec §4.5,
// receive-initial-message).
func (c *Client) AcceptSession(sid uuid.UUID, msg x3dh.InitialMessage, info []byte) ([]byte, error) {
	spk, err := c.resolveSignedPrekey(msg.ResponderSignedPrekeyPub)
	if err != nil {
		return nil, err
	}
	otp, err := c.takeOneTimePrekey(msg.OneTimePrekeyPub)
	if err != nil {
		return nil, err
	}

	session, plaintext, err := x3dh.ReceiveInitialMessage(c.Identity, *spk, *otp, msg, info)
	if err != nil {
		return nil, err
	}

	c.sessions[sid] = session
	return plaintext, nil
}

// Encrypt dispatches to the ratchet session registered under sid.
func (c *Client) Encrypt(sid uuid.UUID, plaintext []byte) (headerBytes, payload []byte, err error) {
	session, ok := c.sessions[sid]
	if !ok {
		return nil, nil, ErrUnknownSession
	}
	return session.Encrypt(plaintext)
}

// Decrypt dispatches to the ratchet session registered under sid.
func (c *Client) Decrypt(sid uuid.UUID, headerBytes, payload []byte) ([]byte, error) {
	session, ok := c.sessions[sid]
	if !ok {
		return nil, ErrUnknownSession
	}
	return session.Decrypt(headerBytes, payload)
}

// Session exposes the raw ratchet session registered under sid for
// callers that need it directly.
func (c *Client) Session(sid uuid.UUID) (*ratchet.Session, bool) {
	s, ok := c.sessions[sid]
	return s, ok
}

func (c *Client) resolveSignedPrekey(pub curve25519.PublicKey) (*curve25519.Pair, error) {
	if c.hasSignedPrekey && pub == c.signedPrekey.Pub {
		return &c.signedPrekey, nil
	}
	if c.previousSignedPrekey != nil && pub == c.previousSignedPrekey.Pub {
		return c.previousSignedPrekey, nil
	}
	return nil, ErrUnknownSignedPrekey
}

// takeOneTimePrekey removes the matching prekey from the set immediately
// upon lookup, regardless of whether the handshake ultimately succeeds:
// removal is the commit point for single-use (spec §9, "One-time prekey
// consumption"), not successful decryption.
func (c *Client) takeOneTimePrekey(pub curve25519.PublicKey) (*curve25519.Pair, error) {
	pair, ok := c.oneTimePrekeys[pub]
	if !ok {
		return nil, ErrUnknownOneTimePrekey
	}
	delete(c.oneTimePrekeys, pub)
	return &pair, nil
}
