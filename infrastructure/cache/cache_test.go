package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := NewInMemoryCache(0)
	defer c.Close()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "quickinfo:naruto", "Show Name@Naruto", time.Hour))

	value, ok, err := c.Get(ctx, "quickinfo:naruto")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Show Name@Naruto", value)

	now = now.Add(2 * time.Hour)
	_, ok, err = c.Get(ctx, "quickinfo:naruto")
	require.NoError(t, err)
	assert.False(t, ok)

	c.sweep()
	assert.Empty(t, c.items)

	require.NoError(t, c.Set(ctx, "k", "v", time.Hour))
	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

// TestRedisCache runs against a live server named by REDIS_URL
func TestRedisCache(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, redisURL, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	c := NewRedisCache(client, "ahkneemay-test")

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	value, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not a url", zap.NewNop())
	assert.Error(t, err)
}
