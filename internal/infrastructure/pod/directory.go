package pod

import (
	"context"
	"sort"
	"sync"

	"github.com/turtacn/appauth/internal/domain/models"
	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/errors"
)

// MemoryDirectory keeps pod registrations in memory. Registrations are lost on restart.
type MemoryDirectory struct {
	mu   sync.RWMutex
	pods map[string]models.PodInfo
}

var _ service.PodDirectory = (*MemoryDirectory)(nil)

// NewMemoryDirectory creates an empty directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{pods: make(map[string]models.PodInfo)}
}

// Register creates or replaces the registration for info.PodID.
func (d *MemoryDirectory) Register(ctx context.Context, info models.PodInfo) error {
	if info.PodID == "" {
		return errors.ErrInvalidRequest("pod id is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pods[info.PodID] = info
	return nil
}

// Lookup returns the registration for podID.
func (d *MemoryDirectory) Lookup(ctx context.Context, podID string) (models.PodInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	info, ok := d.pods[podID]
	if !ok {
		return models.PodInfo{}, errors.ErrUnknownTenant(podID)
	}
	return info, nil
}

// List returns every registration ordered by pod ID.
func (d *MemoryDirectory) List(ctx context.Context) ([]models.PodInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.PodInfo, 0, len(d.pods))
	for _, info := range d.pods {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PodID < out[j].PodID })
	return out, nil
}
