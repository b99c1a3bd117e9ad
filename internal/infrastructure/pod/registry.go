package pod

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/appauth/internal/domain/models"
	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/logger"
)

// ClientFactory builds the client for a registered pod.
type ClientFactory func(info models.PodInfo) (service.AuthenticationClient, error)

// ClientRegistry hands out one AuthenticationClient per pod. Clients are built on first
// use and kept for the lifetime of the process.
type ClientRegistry struct {
	directory service.PodDirectory
	factory   ClientFactory
	deps      ClientDeps

	clients sync.Map // pod ID -> service.AuthenticationClient
	group   singleflight.Group
	count   atomic.Int64
}

var _ service.ClientProvider = (*ClientRegistry)(nil)

// NewClientRegistry creates a registry whose clients share transport. requestTimeout
// bounds each pod call as a whole.
func NewClientRegistry(directory service.PodDirectory, transport http.RoundTripper, requestTimeout time.Duration, deps ClientDeps) *ClientRegistry {
	deps = deps.withDefaults()
	httpClient := &http.Client{Transport: transport, Timeout: requestTimeout}
	return NewClientRegistryWithFactory(directory, func(info models.PodInfo) (service.AuthenticationClient, error) {
		return NewAuthenticationClient(info.PodID, info.PodHost, httpClient, deps)
	}, deps)
}

// NewClientRegistryWithFactory creates a registry with a custom client factory.
func NewClientRegistryWithFactory(directory service.PodDirectory, factory ClientFactory, deps ClientDeps) *ClientRegistry {
	return &ClientRegistry{
		directory: directory,
		factory:   factory,
		deps:      deps.withDefaults(),
	}
}

// GetClient returns the client for podID. Unknown pods fail with unknown_tenant; concurrent
// first use of a pod builds exactly one client.
func (r *ClientRegistry) GetClient(ctx context.Context, podID string) (service.AuthenticationClient, error) {
	info, err := r.directory.Lookup(ctx, podID)
	if err != nil {
		return nil, err
	}

	if c, ok := r.clients.Load(podID); ok {
		return c.(service.AuthenticationClient), nil
	}

	v, err, _ := r.group.Do(podID, func() (interface{}, error) {
		if c, ok := r.clients.Load(podID); ok {
			return c, nil
		}
		c, err := r.factory(info)
		if err != nil {
			return nil, err
		}
		actual, loaded := r.clients.LoadOrStore(podID, c)
		if !loaded {
			n := r.count.Add(1)
			r.deps.Metrics.SetPodClients(int(n))
			r.deps.Logger.Info(ctx, "Created pod client", logger.Fields{"pod_id": podID, "pod_host": info.PodHost})
		}
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(service.AuthenticationClient), nil
}

// Size returns the number of cached clients.
func (r *ClientRegistry) Size() int {
	return int(r.count.Load())
}
