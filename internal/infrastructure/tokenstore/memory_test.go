package tokenstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10, time.Minute)

	require.NoError(t, store.Put(ctx, "app-1", "sym-1"))

	v, ok, err := store.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sym-1", v)

	_, ok, err = store.Get(ctx, "app-2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, store.Ping(ctx))
}

func TestMemoryStore_EvictsLeastRecentlyWritten(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2, time.Minute)

	require.NoError(t, store.Put(ctx, "a", "1"))
	require.NoError(t, store.Put(ctx, "b", "2"))
	// Reading does not protect "a".
	_, ok, _ := store.Get(ctx, "a")
	require.True(t, ok)
	require.NoError(t, store.Put(ctx, "c", "3"))

	_, ok, _ = store.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "b")
	assert.True(t, ok)
	_, ok, _ = store.Get(ctx, "c")
	assert.True(t, ok)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10, 50*time.Millisecond)

	require.NoError(t, store.Put(ctx, "app-1", "sym-1"))
	time.Sleep(120 * time.Millisecond)

	_, ok, err := store.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_PurgesExpiredInBackground(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10, 50*time.Millisecond)

	require.NoError(t, store.Put(ctx, "app-1", "sym-1"))
	require.NoError(t, store.Put(ctx, "app-2", "sym-2"))
	require.Equal(t, 2, store.Len())

	// No reads: only the purge loop can shrink the cache.
	assert.Eventually(t, func() bool { return store.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMemoryStore_Defaults(t *testing.T) {
	store := NewMemoryStore(0, 0)
	ctx := context.Background()
	for i := 0; i < 1001; i++ {
		require.NoError(t, store.Put(ctx, fmt.Sprintf("app-%d", i), "sym"))
	}
	assert.Equal(t, 1000, store.Len())
	_, ok, _ := store.Get(ctx, "app-0")
	assert.False(t, ok)
}

func TestMemoryStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(100, time.Minute)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("w%d-%d", w, i)
				assert.NoError(t, store.Put(ctx, key, key))
				if v, ok, _ := store.Get(ctx, key); ok {
					assert.Equal(t, key, v)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 100, store.Len())
}
