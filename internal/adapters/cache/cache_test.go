package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	c := New(client, "test:"+t.Name()+":", ttl)
	require.NoError(t, c.Flush(ctx))
	t.Cleanup(func() {
		_ = c.Flush(context.Background())
		_ = c.Close()
	})
	return c
}

type summary struct {
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

func TestGetSet(t *testing.T) {
	c := setupTestCache(t, time.Minute)
	ctx := context.Background()

	var got summary
	hit, err := c.Get(ctx, "supplier:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	want := summary{Revenue: decimal.RequireFromString("1234.56"), Orders: 7}
	require.NoError(t, c.Set(ctx, "supplier:1", want))

	hit, err = c.Get(ctx, "supplier:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.True(t, want.Revenue.Equal(got.Revenue))
	assert.Equal(t, want.Orders, got.Orders)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Sets)
}

func TestExpiry(t *testing.T) {
	c := setupTestCache(t, 100*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "admin:day", summary{Orders: 1}))
	time.Sleep(250 * time.Millisecond)

	var got summary
	hit, err := c.Get(ctx, "admin:day", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestFlush(t *testing.T) {
	c := setupTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", summary{Orders: 1}))
	require.NoError(t, c.Set(ctx, "b", summary{Orders: 2}))
	require.NoError(t, c.Flush(ctx))

	var got summary
	hit, err := c.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestConnect_BadURL(t *testing.T) {
	_, err := Connect(context.Background(), "not a url", time.Minute)
	assert.Error(t, err)
}
