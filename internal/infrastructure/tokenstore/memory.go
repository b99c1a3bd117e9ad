// Package tokenstore holds the pending app/symphony token pairs produced by handshakes.
package tokenstore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/constants"
)

// MemoryStore is a process-local token cache bounded by size and entry age.
// Reads do not refresh recency, so the entry evicted on overflow is the one written longest ago.
// Expired entries are purged by a background goroutine that lives as long as the process; build
// one store per process rather than one per request or reload.
type MemoryStore struct {
	lru *expirable.LRU[string, string]
}

var _ service.TokenStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding at most maxSize pairs for ttl each.
// Non-positive values fall back to 1000 entries and five minutes.
func NewMemoryStore(maxSize int, ttl time.Duration) *MemoryStore {
	if maxSize <= 0 {
		maxSize = constants.TokenCacheDefaultMaxSize
	}
	if ttl <= 0 {
		ttl = constants.TokenCacheDefaultTTL
	}
	return &MemoryStore{lru: expirable.NewLRU[string, string](maxSize, nil, ttl)}
}

// Put stores the pair, replacing any previous value for appToken.
func (s *MemoryStore) Put(ctx context.Context, appToken, symphonyToken string) error {
	s.lru.Add(appToken, symphonyToken)
	return nil
}

// Get returns the symphony token paired with appToken, if it has not expired.
func (s *MemoryStore) Get(ctx context.Context, appToken string) (string, bool, error) {
	v, ok := s.lru.Peek(appToken)
	return v, ok, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of entries, including expired ones not yet purged.
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}
