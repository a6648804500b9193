package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestCache_SetGetDelete(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewCache(client, zap.NewNop(), "")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "category:1", []byte(`[{"id":1}]`), 5*time.Minute))

	got, err := cache.Get(ctx, "category:1")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))
	assert.True(t, mr.Exists("category:1"), "empty prefix stores the key as given")
	assert.Equal(t, 5*time.Minute, mr.TTL("category:1"))

	require.NoError(t, cache.Delete(ctx, "category:1"))

	got, err = cache.Get(ctx, "category:1")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, cache.Delete(ctx, "category:1"), "deleting a missing key is not an error")
}

func TestCache_Prefix(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewCache(client, zap.NewNop(), "booking")

	require.NoError(t, cache.Set(context.Background(), "category:2", []byte("x"), time.Minute))

	assert.True(t, mr.Exists("booking:category:2"))
	assert.False(t, mr.Exists("category:2"))
}

func TestCache_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewCache(client, zap.NewNop(), "")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_BackendError(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	cache := NewCache(client, zap.NewNop(), "")

	_, err = cache.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, cache.Set(context.Background(), "k", []byte("v"), time.Minute))
}
