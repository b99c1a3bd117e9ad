package tokenstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/appauth/internal/config"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/logger"
)

func newRedisStore(t *testing.T, maxSize int, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, maxSize, ttl, logger.NewNoopLogger())
	clock := time.UnixMilli(1_700_000_000_000)
	store.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	return store, s
}

func TestRedisStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store, s := newRedisStore(t, 10, time.Minute)

	require.NoError(t, store.Put(ctx, "app-1", "sym-1"))

	v, ok, err := store.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sym-1", v)
	assert.Equal(t, time.Minute, s.TTL(redisKeyPrefix+"app-1"))

	_, ok, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, s := newRedisStore(t, 10, time.Minute)

	require.NoError(t, store.Put(ctx, "app-1", "sym-1"))
	s.FastForward(61 * time.Second)

	_, ok, err := store.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_EvictsOldestWrites(t *testing.T) {
	ctx := context.Background()
	store, s := newRedisStore(t, 3, time.Minute)

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Put(ctx, fmt.Sprintf("app-%d", i), "sym"))
	}
	// Rewriting app-1 makes app-2 the oldest write.
	require.NoError(t, store.Put(ctx, "app-1", "sym-again"))
	require.NoError(t, store.Put(ctx, "app-4", "sym"))

	_, ok, _ := store.Get(ctx, "app-2")
	assert.False(t, ok)
	for _, key := range []string{"app-1", "app-3", "app-4"} {
		_, ok, _ := store.Get(ctx, key)
		assert.True(t, ok, key)
	}

	members, err := s.ZMembers(redisIndexKey)
	require.NoError(t, err)
	assert.Len(t, members, 3)
}

func TestRedisStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store, s := newRedisStore(t, 10, time.Minute)
	s.Close()

	err := store.Put(ctx, "app-1", "sym-1")
	require.Error(t, err)

	_, ok, err := store.Get(ctx, "app-1")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, store.Ping(ctx))
}

func TestNew(t *testing.T) {
	log := logger.NewNoopLogger()

	store, err := New(&config.TokenCacheConfig{Backend: constants.BackendMemory, MaxSize: 5, TTL: time.Minute}, nil, log)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = New(&config.TokenCacheConfig{Backend: constants.BackendRedis}, nil, log)
	assert.Error(t, err)

	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	defer client.Close()
	store, err = New(&config.TokenCacheConfig{Backend: constants.BackendRedis}, client, log)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, store)

	_, err = New(&config.TokenCacheConfig{Backend: "etcd"}, nil, log)
	assert.Error(t, err)
}
