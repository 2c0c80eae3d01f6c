// Package redis implements the transient keyed store on a Redis client.
// It backs the webhook dedup fast path; entries expire on their TTL and the
// durable dedup authority remains the payments table.
package redis

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// KeyedStore implements ports.KeyedStore using SET NX with expiry.
type KeyedStore struct {
	client *redis.Client
}

// NewKeyedStore creates a keyed store over an existing Redis client.
func NewKeyedStore(client *redis.Client) *KeyedStore {
	return &KeyedStore{client: client}
}

// NewClient dials a Redis server at addr with default options.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// SetIfAbsent atomically stores value under key with a TTL when the key does
// not exist. Returns true when this call created the entry.
func (s *KeyedStore) SetIfAbsent(
	ctx context.Context, key string, value string, ttl time.Duration,
) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

// Get retrieves the value stored under key.
func (s *KeyedStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errs.NewObjectNotFoundError("key", key)
		}
		return "", err
	}
	return value, nil
}
