package ratelimit

import (
	"context"
	"time"

	"PairView/pkg/cache"
	applogger "PairView/pkg/logger"
)

// Limiter is a fixed-window counter per key backed by a cache.Counter.
// Store errors let the request through.
type Limiter struct {
	store  cache.Counter
	limit  int64
	window time.Duration
	prefix string
	log    *applogger.Logger
}

// New allows limit hits per window for each key.
func New(store cache.Counter, limit int, window time.Duration, l *applogger.Logger) *Limiter {
	if l == nil {
		l = applogger.Nop()
	}
	return &Limiter{
		store:  store,
		limit:  int64(limit),
		window: window,
		prefix: "ratelimit:submit",
		log:    l,
	}
}

// Allow counts one hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l.limit <= 0 {
		return true
	}
	k := cache.GenerateKeyWithParams(l.prefix, key)

	n, err := l.store.Increment(ctx, k)
	if err != nil {
		l.log.Warn("rate limit store unavailable", applogger.String("key", k), applogger.Error(err))
		return true
	}

	if n == 1 {
		l.expire(ctx, k)
	} else if n > l.limit {
		// a lost EXPIRE would otherwise block the key forever
		if ttl, err := l.store.TTL(ctx, k); err == nil && ttl < 0 {
			l.expire(ctx, k)
		}
	}

	return n <= l.limit
}

func (l *Limiter) expire(ctx context.Context, k string) {
	if _, err := l.store.Expire(ctx, k, l.window); err != nil {
		l.log.Warn("rate limit expire failed", applogger.String("key", k), applogger.Error(err))
	}
}
