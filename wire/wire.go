// Package wire defines the JSON objects exchanged with the relay (spec
// §6): base64-encoded key and ciphertext fields, named to match the
// relay's bundle, initial-message, and frame wire formats exactly.
package wire

import "encoding/base64"

// Bundle is the JSON form PUT to the relay's bundle store (spec §6,
// "Bundle wire object").
type Bundle struct {
	PubKey        string   `json:"pubKey"`
	PubSignPreKey string   `json:"pubSignPreKey"`
	PreKeySig     string   `json:"preKeySig"`
	OneTimeKeys   []string `json:"oneTimeKeys,omitempty"`
}

// FetchedBundle is the JSON form GET back from the relay's bundle store,
// after it pops one one-time prekey (spec §6).
type FetchedBundle struct {
	PubKey        string `json:"pubKey"`
	PubSignPreKey string `json:"pubSignPreKey"`
	PreKeySig     string `json:"preKeySig"`
	OneTimeKey    string `json:"oneTimeKey"`
}

// InitialMessage is the JSON form POSTed by the initiator and GET back by
// the responder (spec §6, "Initial-message wire object"). To is a relay
// routing convenience outside the spec's wire fields (spec §6 preamble
// leaves relay internals free to reimplement): the human-readable
// recipient label the relay indexes pending handshakes by, since the
// spec's own fields identify peers only by public key.
//
// Fields decode straight to base64 strings with no struct-tag validation:
// decodeKey (wire/codec.go) rejects a key field that is not valid base64
// of exactly 32 bytes, and decode rejects invalid base64. Header and
// payload lengths are not checked here; the ratchet rejects malformed ones
// when it opens them.
type InitialMessage struct {
	PubKey        string `json:"pubKey"`
	PeerKey       string `json:"peerKey"`
	PubSignPreKey string `json:"pubSignPreKey"`
	EphemeralKey  string `json:"ephemeralKey"`
	OneTimeKey    string `json:"oneTimeKey"`
	Header        string `json:"header"`
	Payload       string `json:"payload"`
	To            string `json:"to,omitempty"`
}

// Frame is one ratchet-encrypted message exchanged over the live bridge,
// opaque to the relay (spec §6, "Frame format on the live bridge").
type Frame struct {
	Header  string `json:"header"`
	Payload string `json:"payload"`
}

func encode(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func decode(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }
