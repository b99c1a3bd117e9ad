package tokenstore

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/appauth/internal/config"
	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/logger"
)

// New builds the store selected by cfg.Backend. client may be nil unless the backend is redis.
func New(cfg *config.TokenCacheConfig, client redis.UniversalClient, log logger.Logger) (service.TokenStore, error) {
	switch cfg.Backend {
	case "", constants.BackendMemory:
		return NewMemoryStore(cfg.MaxSize, cfg.TTL), nil
	case constants.BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("token_cache.backend is redis but no redis client is configured")
		}
		return NewRedisStore(client, cfg.MaxSize, cfg.TTL, log), nil
	default:
		return nil, fmt.Errorf("unsupported token cache backend %q", cfg.Backend)
	}
}
