package ports

import (
	"context"
	"time"
)

// KeyedStore is a transient key/value store with expiring entries. Used as
// the webhook reconciliation dedup fast path; the durable dedup authority
// remains the unique provider transaction id in the payments table.
type KeyedStore interface {
	// SetIfAbsent atomically stores value under key with a TTL when the
	// key does not exist. Returns true when this call created the entry.
	SetIfAbsent(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)

	// Get retrieves the value stored under key. Returns an
	// ObjectNotFoundError for missing or expired keys.
	Get(ctx context.Context, key string) (string, error)
}
