// Command server runs the relay: the untrusted bundle store, message
// queue, and live bridge described in spec §6.
package main

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"minimal-signal/config"
	"minimal-signal/relay"
)

func main() {
	logger := logrus.New()

	s := relay.NewServer(
		context.Background(),
		redis.NewClient(&redis.Options{Addr: config.RedisAddress}),
		logger,
	)
	defer s.Close()

	logger.Infof("relay running on %s", config.RelayAddress)
	if err := http.ListenAndServe(config.RelayAddress, s.Router()); err != nil {
		logger.Fatalf("relay: %v", err)
	}
}
