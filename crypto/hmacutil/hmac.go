// Package hmacutil wraps crypto/hmac with the SHA-256 hash this protocol
// fixes throughout.
package hmacutil

import (
	"crypto/hmac"
	"crypto/sha256"
)

// Sum256 returns HMAC-SHA-256(key, data).
func Sum256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// Equal reports whether two MACs are equal, in constant time.
func Equal(a, b []byte) bool {
	return hmac.Equal(a, b)
}
