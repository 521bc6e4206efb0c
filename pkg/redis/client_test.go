package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("SP_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SP_TEST_REDIS_ADDR not set")
	}
	c, err := NewClient(config.RedisConfig{Addr: addr, PoolSize: 2})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClientRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	prefix := "search-server-test:" + time.Now().Format("150405.000000") + ":"

	_, found, err := c.Get(ctx, prefix+"missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.Set(ctx, prefix+"a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, prefix+"b", []byte("2"), time.Minute))
	value, found, err := c.Get(ctx, prefix+"a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), value)

	deleted, err := c.DeletePrefix(ctx, prefix)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)
	_, found, err = c.Get(ctx, prefix+"b")
	require.NoError(t, err)
	require.False(t, found)
}
