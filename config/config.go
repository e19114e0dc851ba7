// Package config centralizes the environment-driven settings shared by
// the relay server and the client: network addresses, the domain
// separation string mixed into every HKDF call, and where per-user key
// material is cached on disk. Values are sourced from the environment,
// loaded via godotenv for local development, with defaults matching the
// teacher's single-machine debug setup.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var (
	// HKDFInfo is the info string mixed into every HKDF derivation across
	// X3DH and the ratchet (spec §4.5 step 4, §4.4 kdf_root), binding all
	// derived keys to this protocol instance.
	HKDFInfo = []byte("minimal-signal")

	// RelayAddress is the relay's HTTP/WebSocket listen and dial address.
	RelayAddress = getEnv("RELAY_ADDRESS", "localhost:8080")

	// RedisAddress is the relay's backing Redis instance.
	RedisAddress = getEnv("REDIS_ADDRESS", "localhost:6379")

	// DebugSecretDir is where the client caches its generated identity
	// material between runs, for local testing only (cmd/genkeys only
	// prints the keys it generates).
	DebugSecretDir = getEnv("DEBUG_SECRET_DIR", "./.secrets")
)

const (
	BundlePathPrefix  = "/bundle"
	MessagePathPrefix = "/message"
	BridgePathPrefix  = "/bridge"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadDotenv loads a per-user .env file if one exists under
// DebugSecretDir, matching the teacher's per-identity key caching scheme.
func LoadDotenv(userID string) error {
	path := fmt.Sprintf("%s/.env.%s", DebugSecretDir, userID)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

func EnvPath(userID string) string {
	return fmt.Sprintf("%s/.env.%s", DebugSecretDir, userID)
}
