// Package cache Redis 缓存模块单元测试
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis 创建 miniredis 测试实例
func setupMiniRedis(t *testing.T) *miniredis.Miniredis {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func newTestStore(t *testing.T, s *miniredis.Miniredis) *Store {
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client)
}

func TestInit_Success(t *testing.T) {
	s := setupMiniRedis(t)

	client, err := Init(&config.RedisConfig{
		Host:        s.Host(),
		Port:        s.Server().Addr().Port,
		PoolSize:    5,
		DialTimeout: 1,
	})
	require.NoError(t, err)
	assert.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
}

func TestInit_Failure(t *testing.T) {
	_, err := Init(&config.RedisConfig{Host: "127.0.0.1", Port: 1, DialTimeout: 1})
	assert.Error(t, err)
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "restaurant:domain:bistro", BuildKey(KeyPrefixRestaurantDomain, "bistro"))
	assert.Equal(t, "ratelimit:login:127.0.0.1", BuildKey(KeyPrefixRateLimit, "login", "127.0.0.1"))
	assert.Equal(t, "ratelimit", BuildKey(KeyPrefixRateLimit))
}

func TestStore_JSON(t *testing.T) {
	s := setupMiniRedis(t)
	store := newTestStore(t, s)
	ctx := context.Background()

	type payload struct {
		ID     int64  `json:"id"`
		Domain string `json:"domain"`
	}

	require.NoError(t, store.SetJSON(ctx, "k", payload{ID: 1, Domain: "bistro"}, time.Minute))

	var got payload
	require.NoError(t, store.GetJSON(ctx, "k", &got))
	assert.Equal(t, "bistro", got.Domain)

	s.FastForward(2 * time.Minute)
	err := store.GetJSON(ctx, "k", &got)
	assert.True(t, IsMiss(err))

	require.NoError(t, store.SetJSON(ctx, "k2", payload{ID: 2}, 0))
	require.NoError(t, store.Delete(ctx, "k2"))
	assert.False(t, s.Exists("k2"))
}

func TestStore_Incr(t *testing.T) {
	s := setupMiniRedis(t)
	store := newTestStore(t, s)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		n, err := store.Incr(ctx, "ratelimit:x", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
	}
	assert.Equal(t, time.Minute, s.TTL("ratelimit:x"))
}

func TestStore_Disabled(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	assert.False(t, store.Enabled())
	assert.NoError(t, store.SetJSON(ctx, "k", 1, time.Minute))
	assert.True(t, IsMiss(store.GetJSON(ctx, "k", new(int))))
	assert.NoError(t, store.Delete(ctx, "k"))
	n, err := store.Incr(ctx, "k", time.Minute)
	assert.NoError(t, err)
	assert.Zero(t, n)
}
