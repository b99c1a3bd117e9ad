package pod

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/appauth/internal/domain/models"
	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/constants"
)

func newDirectory(t *testing.T, ids ...string) *MemoryDirectory {
	t.Helper()
	dir := NewMemoryDirectory()
	for _, id := range ids {
		require.NoError(t, dir.Register(context.Background(), models.PodInfo{
			PodID:   id,
			PodHost: fmt.Sprintf("https://%s.example.com", id),
		}))
	}
	return dir
}

func TestMemoryDirectory(t *testing.T) {
	ctx := context.Background()
	dir := newDirectory(t, "pod-b", "pod-a")

	info, err := dir.Lookup(ctx, "pod-a")
	require.NoError(t, err)
	assert.Equal(t, "https://pod-a.example.com", info.PodHost)

	require.NoError(t, dir.Register(ctx, models.PodInfo{PodID: "pod-a", PodHost: "https://new.example.com"}))
	info, err = dir.Lookup(ctx, "pod-a")
	require.NoError(t, err)
	assert.Equal(t, "https://new.example.com", info.PodHost)

	list, err := dir.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "pod-a", list[0].PodID)
	assert.Equal(t, "pod-b", list[1].PodID)

	_, err = dir.Lookup(ctx, "missing")
	requireCode(t, err, constants.ErrCodeUnknownTenant)

	err = dir.Register(ctx, models.PodInfo{PodHost: "https://x.example.com"})
	requireCode(t, err, constants.ErrCodeInvalidRequest)
}

func TestClientRegistry_SamePodSameClient(t *testing.T) {
	metrics := &recordingMetrics{}
	registry := NewClientRegistry(newDirectory(t, "pod-a"), http.DefaultTransport, time.Second, ClientDeps{Metrics: metrics})

	first, err := registry.GetClient(context.Background(), "pod-a")
	require.NoError(t, err)
	second, err := registry.GetClient(context.Background(), "pod-a")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "pod-a", first.PodID())
	assert.Equal(t, 1, registry.Size())
	assert.Equal(t, 1, metrics.clients)
}

func TestClientRegistry_DistinctPodsDistinctClients(t *testing.T) {
	registry := NewClientRegistry(newDirectory(t, "pod-a", "pod-b"), http.DefaultTransport, time.Second, ClientDeps{})

	a, err := registry.GetClient(context.Background(), "pod-a")
	require.NoError(t, err)
	b, err := registry.GetClient(context.Background(), "pod-b")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, "pod-b", b.PodID())
	assert.Equal(t, 2, registry.Size())
}

func TestClientRegistry_UnknownTenant(t *testing.T) {
	var built atomic.Int32
	registry := NewClientRegistryWithFactory(newDirectory(t), func(info models.PodInfo) (service.AuthenticationClient, error) {
		built.Add(1)
		return nil, nil
	}, ClientDeps{})

	_, err := registry.GetClient(context.Background(), "ghost")

	appErr := requireCode(t, err, constants.ErrCodeUnknownTenant)
	assert.Contains(t, appErr.Error(), "missing pod info for pod with ID 'ghost'")
	assert.Zero(t, built.Load())
	assert.Zero(t, registry.Size())
}

func TestClientRegistry_InvalidHostNotCached(t *testing.T) {
	dir := NewMemoryDirectory()
	require.NoError(t, dir.Register(context.Background(), models.PodInfo{PodID: "pod-a", PodHost: "not a url"}))
	registry := NewClientRegistry(dir, http.DefaultTransport, time.Second, ClientDeps{})

	_, err := registry.GetClient(context.Background(), "pod-a")

	requireCode(t, err, constants.ErrCodeTransport)
	assert.Zero(t, registry.Size())
}

func TestClientRegistry_ConcurrentFirstUseBuildsOnce(t *testing.T) {
	var built atomic.Int32
	registry := NewClientRegistryWithFactory(newDirectory(t, "pod-a"), func(info models.PodInfo) (service.AuthenticationClient, error) {
		built.Add(1)
		time.Sleep(10 * time.Millisecond)
		return NewAuthenticationClient(info.PodID, info.PodHost, http.DefaultClient, ClientDeps{})
	}, ClientDeps{})

	const workers = 50
	results := make([]service.AuthenticationClient, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			c, err := registry.GetClient(context.Background(), "pod-a")
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), built.Load())
	for _, c := range results {
		assert.Same(t, results[0], c)
	}
	assert.Equal(t, 1, registry.Size())
}
