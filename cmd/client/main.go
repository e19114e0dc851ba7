// Command client runs the gocui terminal chat client against a single
// long-term Curve25519 identity, caching that identity under
// config.DebugSecretDir between runs.
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/jroimartin/gocui"
	"github.com/sirupsen/logrus"

	"minimal-signal/client"
	"minimal-signal/config"
	"minimal-signal/crypto/curve25519"
)

var logger = logrus.New()

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go <userID>")
		return
	}
	userID := os.Args[1]

	if err := createIdentityIfNotExists(userID); err != nil {
		logger.Fatalf("Error creating identity: %v", err)
	}
	if err := config.LoadDotenv(userID); err != nil {
		logger.Fatalf("Error loading .env file: %v", err)
	}

	priv, err := decodeHex32(os.Getenv("IDENTITY_PRIVATE"))
	if err != nil {
		logger.Fatalf("Failed to decode IDENTITY_PRIVATE: %v", err)
	}
	pub, err := curve25519.PrivateKey(priv).Public()
	if err != nil {
		logger.Fatalf("Failed to derive public identity key: %v", err)
	}

	identity := curve25519.Pair{Priv: priv, Pub: *pub}
	chatApp := client.NewChatApp(userID, identity)

	if err := chatApp.InitGui(); err != nil {
		logger.Fatalf("Error initializing gocui interface: %v", err)
	}

	if err := chatApp.PostKeys(); err != nil {
		logger.Fatalf("Error publishing keys: %v", err)
	}

	if err := chatApp.PromptRecipientID(); err != nil {
		logger.Fatalf("Error prompting recipient ID: %v", err)
	}

	if err := chatApp.Gui.MainLoop(); err != nil && !errors.Is(err, gocui.ErrQuit) {
		logger.Fatalf("Error in gocui main loop: %v", err)
	}

	logger.Info("Application exited.")
}

func decodeHex32(hexStr string) (curve25519.PrivateKey, error) {
	var key curve25519.PrivateKey
	if len(hexStr) == 0 {
		return key, fmt.Errorf("hex string is empty")
	}
	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return key, err
	}
	if len(decoded) != len(key) {
		return key, fmt.Errorf("decoded key is not %d bytes long", len(key))
	}
	copy(key[:], decoded)
	return key, nil
}

func createIdentityIfNotExists(userID string) error {
	path := config.EnvPath(userID)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	identity, err := curve25519.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate identity key: %v", err)
	}

	if err := os.MkdirAll(config.DebugSecretDir, 0o700); err != nil {
		return fmt.Errorf("failed to create secrets dir: %v", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create env file: %v", err)
	}
	defer file.Close()

	if _, err := file.WriteString(fmt.Sprintf("IDENTITY_PRIVATE=%x\n", identity.Priv)); err != nil {
		return fmt.Errorf("failed to write identity key: %v", err)
	}
	return nil
}
