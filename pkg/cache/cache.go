package cache

import (
	"context"
	"time"
)

// Counter is a keyed expiring counter store.
type Counter interface {
	// Increment adds one to key and returns the new value. A missing key starts at 1.
	Increment(ctx context.Context, key string) (int64, error)
	// Expire sets the key's time to live. Returns false if the key does not exist.
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
	// TTL returns the remaining time to live, or a negative duration if the key has none.
	TTL(ctx context.Context, key string) (time.Duration, error)
	Close() error
}
