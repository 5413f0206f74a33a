package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"PairView/pkg/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCounter struct{}

func (failingCounter) Increment(context.Context, string) (int64, error) {
	return 0, errors.New("connection refused")
}
func (failingCounter) Expire(context.Context, string, time.Duration) (bool, error) { return false, nil }
func (failingCounter) TTL(context.Context, string) (time.Duration, error)         { return 0, nil }
func (failingCounter) Close() error                                             { return nil }

func TestLimiter_Memory(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := cache.NewMemoryCache(cache.WithMemoryClock(func() time.Time { return now }))
	defer store.Close()

	l := New(store, 3, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "10.0.0.1"), "hit %d", i+1)
	}
	assert.False(t, l.Allow(ctx, "10.0.0.1"))
	assert.True(t, l.Allow(ctx, "10.0.0.2"), "keys are independent")

	now = now.Add(time.Minute)
	assert.True(t, l.Allow(ctx, "10.0.0.1"), "new window")
}

func TestLimiter_Redis(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	store := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: s.Addr()}), "pairview")
	defer store.Close()

	l := New(store, 2, 10*time.Second, nil)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "1.2.3.4"))
	assert.True(t, l.Allow(ctx, "1.2.3.4"))
	assert.False(t, l.Allow(ctx, "1.2.3.4"))
	assert.Equal(t, 10*time.Second, s.TTL("pairview:ratelimit:submit:1.2.3.4"))

	s.FastForward(11 * time.Second)
	assert.True(t, l.Allow(ctx, "1.2.3.4"))
}

func TestLimiter_RepairsMissingExpiry(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("pairview:ratelimit:submit:k", "5"))
	store := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: s.Addr()}), "pairview")
	defer store.Close()

	l := New(store, 2, 10*time.Second, nil)
	assert.False(t, l.Allow(context.Background(), "k"))
	assert.Equal(t, 10*time.Second, s.TTL("pairview:ratelimit:submit:k"))
}

func TestLimiter_FailsOpen(t *testing.T) {
	l := New(failingCounter{}, 1, time.Minute, nil)
	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow(context.Background(), "k"))
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l := New(failingCounter{}, 0, time.Minute, nil)
	assert.True(t, l.Allow(context.Background(), "k"))
}
