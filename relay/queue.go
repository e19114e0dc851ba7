package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"minimal-signal/wire"
)

// messageTTL is how long a queued initial message and its recipient's
// pending-handshake index survive before silent eviction (spec §6).
const messageTTL = 60 * time.Second

// Queue is the relay's message queue (spec §4.6): initial handshake
// messages keyed by a server-minted session id, held for one retrieval or
// until they expire.
type Queue struct {
	redis *redis.Client
}

func NewQueue(redisClient *redis.Client) *Queue {
	return &Queue{redis: redisClient}
}

func messageKey(sid uuid.UUID) string { return fmt.Sprintf("message:%s", sid) }
func pendingKey(peerKey string) string { return fmt.Sprintf("pending:%s", peerKey) }

// PostMessage stores an initial message under a freshly minted session id
// and returns it (spec §6, POST message → 201 with new session UUID). It
// also indexes the session id under the addressed peer's key so that
// peer can discover it without an out-of-band channel — an addition the
// spec leaves to the relay's discretion (spec §6 preamble, "NOT part of
// this spec's internals").
func (q *Queue) PostMessage(ctx context.Context, msg wire.InitialMessage) (uuid.UUID, error) {
	sid := uuid.New()
	payload, err := json.Marshal(msg)
	if err != nil {
		return uuid.Nil, err
	}
	if err := q.redis.Set(ctx, messageKey(sid), payload, messageTTL).Err(); err != nil {
		return uuid.Nil, err
	}
	if err := q.redis.RPush(ctx, pendingKey(msg.To), sid.String()).Err(); err != nil {
		return uuid.Nil, err
	}
	q.redis.Expire(ctx, pendingKey(msg.To), messageTTL)
	framesForwardedTotal.WithLabelValues("queued").Inc()
	return sid, nil
}

// GetMessage retrieves and removes the initial message queued under sid
// (spec §6, GET message(sid), "removed on successful GET").
func (q *Queue) GetMessage(ctx context.Context, sid uuid.UUID) (wire.InitialMessage, error) {
	key := messageKey(sid)
	raw, err := q.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return wire.InitialMessage{}, ErrNoMessage
	} else if err != nil {
		return wire.InitialMessage{}, err
	}
	q.redis.Del(ctx, key)

	var msg wire.InitialMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return wire.InitialMessage{}, err
	}
	q.redis.LRem(ctx, pendingKey(msg.To), 1, sid.String())
	return msg, nil
}

// ListPending returns the session ids of initial messages still queued
// for the given recipient label.
func (q *Queue) ListPending(ctx context.Context, identity string) ([]uuid.UUID, error) {
	raw, err := q.redis.LRange(ctx, pendingKey(identity), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	sids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		sid, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		sids = append(sids, sid)
	}
	return sids, nil
}
