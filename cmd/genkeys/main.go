// Command genkeys generates a Curve25519 identity keypair and prints it
// in hex, the same debug workflow the teacher's cmd/gen_keys offered for
// its Ed25519-group keys.
package main

import (
	"fmt"
	"log"

	"minimal-signal/crypto/curve25519"
)

func main() {
	identity, err := curve25519.Generate()
	if err != nil {
		log.Fatalf("failed to generate identity keypair: %v", err)
	}

	fmt.Printf("PRIVATE: %x\n", identity.Priv)
	fmt.Printf("PUBLIC: %x\n", identity.Pub)
}
