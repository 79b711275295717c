package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-api/internal/ratelimit"
)

func newLimiter(t *testing.T) ratelimit.Limiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return ratelimit.Limiter{Client: client, Prefix: "rl:"}
}

func TestAllowWithinLimit(t *testing.T) {
	l := newLimiter(t)

	for i := 0; i < 3; i++ {
		allowed, _, _, err := l.Allow(context.Background(), "1.2.3.4", time.Minute, 3)
		require.NoError(t, err)
		require.True(t, allowed, "request %d should pass", i)
	}

	allowed, remaining, _, err := l.Allow(context.Background(), "1.2.3.4", time.Minute, 3)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)
}

func TestAllowIsolatesKeys(t *testing.T) {
	l := newLimiter(t)

	_, _, _, err := l.Allow(context.Background(), "1.2.3.4", time.Minute, 1)
	require.NoError(t, err)

	allowed, _, _, err := l.Allow(context.Background(), "5.6.7.8", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestAllowDisabledWithoutClient(t *testing.T) {
	l := ratelimit.Limiter{}
	allowed, _, _, err := l.Allow(context.Background(), "anyone", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)
}
