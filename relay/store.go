package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"minimal-signal/wire"
)

// coreFields is the part of a published bundle that does not change
// between one-time prekey pops: identity key, signed prekey, and its
// signature (spec §3, "Prekey bundle (published)").
type coreFields struct {
	PubKey        string `json:"pubKey"`
	PubSignPreKey string `json:"pubSignPreKey"`
	PreKeySig     string `json:"preKeySig"`
}

// Store is the relay's untrusted prekey bundle store (spec §4.6). Each
// identity's core fields live under one Redis string key; its one-time
// prekeys live in a Redis list so fetching one is an atomic LPOP — two
// concurrent fetches can never be handed the same prekey.
type Store struct {
	redis  *redis.Client
	logger *logrus.Logger
}

func NewStore(redisClient *redis.Client, logger *logrus.Logger) *Store {
	return &Store{redis: redisClient, logger: logger}
}

func coreKey(identity string) string { return fmt.Sprintf("bundle:%s:core", identity) }
func otpKey(identity string) string  { return fmt.Sprintf("bundle:%s:otps", identity) }

// PutBundle stores a client's current signed prekey and appends its fresh
// one-time prekeys. Re-publishing never discards one-time prekeys a peer
// has not yet consumed (spec §4.6, publish-bundle is additive on the
// one-time prekey set). Republishing the same signed-prekey signature as
// the currently stored bundle is rejected (spec §6, PUT bundle 400).
func (s *Store) PutBundle(ctx context.Context, identity string, b wire.Bundle) error {
	existing, err := s.redis.Get(ctx, coreKey(identity)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	if err == nil {
		var prior coreFields
		if jsonErr := json.Unmarshal([]byte(existing), &prior); jsonErr == nil && prior.PreKeySig == b.PreKeySig {
			return ErrIdenticalSignature
		}
	}

	core := coreFields{
		PubKey:        b.PubKey,
		PubSignPreKey: b.PubSignPreKey,
		PreKeySig:     b.PreKeySig,
	}
	payload, err := json.Marshal(core)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, coreKey(identity), payload, 0).Err(); err != nil {
		return err
	}

	if len(b.OneTimeKeys) == 0 {
		return nil
	}
	args := make([]interface{}, len(b.OneTimeKeys))
	for i, otp := range b.OneTimeKeys {
		args[i] = otp
	}
	if err := s.redis.RPush(ctx, otpKey(identity), args...).Err(); err != nil {
		return err
	}

	if remaining, err := s.redis.LLen(ctx, otpKey(identity)).Result(); err == nil {
		oneTimePrekeysRemaining.WithLabelValues(identity).Set(float64(remaining))
	}
	return nil
}

// FetchBundle pops one one-time prekey from identity's pool and returns a
// bundle an initiator can run X3DH against (spec §4.6, fetch-bundle). It
// returns ErrNoBundle if identity never published, ErrNoOneTimePrekey if
// its pool is currently empty ("No more oneTimeKeys", spec §6).
func (s *Store) FetchBundle(ctx context.Context, identity string) (wire.FetchedBundle, error) {
	raw, err := s.redis.Get(ctx, coreKey(identity)).Result()
	if err == redis.Nil {
		return wire.FetchedBundle{}, ErrNoBundle
	} else if err != nil {
		return wire.FetchedBundle{}, err
	}

	var core coreFields
	if err := json.Unmarshal([]byte(raw), &core); err != nil {
		return wire.FetchedBundle{}, err
	}

	otp, err := s.redis.LPop(ctx, otpKey(identity)).Result()
	if err == redis.Nil {
		return wire.FetchedBundle{}, ErrNoOneTimePrekey
	} else if err != nil {
		return wire.FetchedBundle{}, err
	}

	if remaining, err := s.redis.LLen(ctx, otpKey(identity)).Result(); err == nil {
		oneTimePrekeysRemaining.WithLabelValues(identity).Set(float64(remaining))
	}

	return wire.FetchedBundle{
		PubKey:        core.PubKey,
		PubSignPreKey: core.PubSignPreKey,
		PreKeySig:     core.PreKeySig,
		OneTimeKey:    otp,
	}, nil
}
