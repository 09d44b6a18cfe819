package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"liveshop/internal/domain"
)

// ErrSessionNotFound is returned when a checkout session is unknown or
// already consumed.
var ErrSessionNotFound = errors.New("checkout session not found")

// RedisCheckoutStore keeps pending checkout sessions keyed by session id.
// Entries expire on their own when the buyer never completes payment.
type RedisCheckoutStore struct {
	client *redis.Client
}

func NewRedisCheckoutStore(client *redis.Client) *RedisCheckoutStore {
	return &RedisCheckoutStore{client: client}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("checkout:%s", sessionID)
}

func (r *RedisCheckoutStore) SavePending(ctx context.Context, session *domain.CheckoutSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(session.ID), data, ttl).Err()
}

// TakePending fetches and deletes the session in one round trip, so a
// replayed success redirect cannot complete the same payment twice.
func (r *RedisCheckoutStore) TakePending(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	data, err := r.client.GetDel(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.CheckoutSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}
