package ratchet

import "errors"

var (
	// ErrNotReady is returned by Encrypt before the session has derived a
	// sending chain (CKs is still absent).
	ErrNotReady = errors.New("ratchet: session not ready to encrypt")

	// ErrHeaderDecryptFailed is returned when neither the current nor the
	// next header key authenticates an incoming header.
	ErrHeaderDecryptFailed = errors.New("ratchet: header decryption failed")

	// ErrTooManySkipped is returned when a decrypt call would need to skip
	// more than MaxSkip message keys in a single receiving chain.
	ErrTooManySkipped = errors.New("ratchet: too many skipped messages")
)
