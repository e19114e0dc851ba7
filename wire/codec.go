package wire

import (
	"errors"

	"minimal-signal/crypto/curve25519"
	"minimal-signal/x3dh"
)

// ErrKeyLengthInvalid is returned when a base64 field decodes to the
// wrong number of bytes for a Curve25519 key.
var ErrKeyLengthInvalid = errors.New("wire: key has wrong length")

func decodeKey(s string) (curve25519.PublicKey, error) {
	var pub curve25519.PublicKey
	raw, err := decode(s)
	if err != nil {
		return pub, err
	}
	if len(raw) != len(pub) {
		return pub, ErrKeyLengthInvalid
	}
	copy(pub[:], raw)
	return pub, nil
}

// EncodeBundle converts a published bundle to its wire form.
func EncodeBundle(b x3dh.PublishedBundle) Bundle {
	otps := make([]string, len(b.OneTimePrekeysPub))
	for i, k := range b.OneTimePrekeysPub {
		otps[i] = encode(k[:])
	}
	return Bundle{
		PubKey:        encode(b.IdentityPub[:]),
		PubSignPreKey: encode(b.SignedPrekeyPub[:]),
		PreKeySig:     encode(b.SignedPrekeySig),
		OneTimeKeys:   otps,
	}
}

// DecodeFetchedBundle parses a relay bundle-fetch response.
func DecodeFetchedBundle(b FetchedBundle) (x3dh.FetchedBundle, error) {
	identity, err := decodeKey(b.PubKey)
	if err != nil {
		return x3dh.FetchedBundle{}, err
	}
	spk, err := decodeKey(b.PubSignPreKey)
	if err != nil {
		return x3dh.FetchedBundle{}, err
	}
	otp, err := decodeKey(b.OneTimeKey)
	if err != nil {
		return x3dh.FetchedBundle{}, err
	}
	sig, err := decode(b.PreKeySig)
	if err != nil {
		return x3dh.FetchedBundle{}, err
	}
	return x3dh.FetchedBundle{
		IdentityPub:      identity,
		SignedPrekeyPub:  spk,
		SignedPrekeySig:  sig,
		OneTimePrekeyPub: otp,
	}, nil
}

// EncodeInitialMessage converts an X3DH initial message to its wire form.
// to is the relay-routing label (see InitialMessage.To); pass "" if the
// relay being used does not key handshakes by a human label.
func EncodeInitialMessage(m x3dh.InitialMessage, to string) InitialMessage {
	return InitialMessage{
		PubKey:        encode(m.InitiatorIdentityPub[:]),
		PeerKey:       encode(m.ResponderIdentityPub[:]),
		PubSignPreKey: encode(m.ResponderSignedPrekeyPub[:]),
		EphemeralKey:  encode(m.EphemeralPub[:]),
		OneTimeKey:    encode(m.OneTimePrekeyPub[:]),
		Header:        encode(m.Header),
		Payload:       encode(m.Payload),
		To:            to,
	}
}

// DecodeInitialMessage parses a wire-form X3DH initial message.
func DecodeInitialMessage(m InitialMessage) (x3dh.InitialMessage, error) {
	initiator, err := decodeKey(m.PubKey)
	if err != nil {
		return x3dh.InitialMessage{}, err
	}
	responder, err := decodeKey(m.PeerKey)
	if err != nil {
		return x3dh.InitialMessage{}, err
	}
	spk, err := decodeKey(m.PubSignPreKey)
	if err != nil {
		return x3dh.InitialMessage{}, err
	}
	eph, err := decodeKey(m.EphemeralKey)
	if err != nil {
		return x3dh.InitialMessage{}, err
	}
	otp, err := decodeKey(m.OneTimeKey)
	if err != nil {
		return x3dh.InitialMessage{}, err
	}
	header, err := decode(m.Header)
	if err != nil {
		return x3dh.InitialMessage{}, err
	}
	payload, err := decode(m.Payload)
	if err != nil {
		return x3dh.InitialMessage{}, err
	}
	return x3dh.InitialMessage{
		InitiatorIdentityPub:     initiator,
		ResponderIdentityPub:     responder,
		ResponderSignedPrekeyPub: spk,
		EphemeralPub:             eph,
		OneTimePrekeyPub:         otp,
		Header:                   header,
		Payload:                  payload,
	}, nil
}

// EncodeFrame builds the wire frame for one ratchet-encrypted message.
func EncodeFrame(headerBytes, payload []byte) Frame {
	return Frame{
		Header:  encode(headerBytes),
		Payload: encode(payload),
	}
}

// DecodeFrame parses a wire frame back into header and payload bytes.
func DecodeFrame(f Frame) (headerBytes, payload []byte, err error) {
	headerBytes, err = decode(f.Header)
	if err != nil {
		return nil, nil, err
	}
	payload, err = decode(f.Payload)
	if err != nil {
		return nil, nil, err
	}
	return headerBytes, payload, nil
}
