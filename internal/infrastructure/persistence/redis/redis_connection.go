// Package redis provides Redis connection management for the shared token store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/appauth/internal/config"
	"github.com/turtacn/appauth/pkg/logger"
)

const (
	defaultPoolSize     = 10
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
	connectPingTimeout  = 5 * time.Second
)

// RedisConnection manages Redis client lifecycle and health monitoring.
type RedisConnection struct {
	client redis.UniversalClient
	logger logger.Logger
}

// NewRedisConnection connects to the configured Redis server and verifies it with a ping.
func NewRedisConnection(cfg *config.RedisConfig, log logger.Logger) (*RedisConnection, error) {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password.Value(),
		DB:           cfg.DB,
		PoolSize:     poolSize,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Error(ctx, "Redis ping failed", err, logger.Fields{"addr": cfg.Address})
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Info(ctx, "Redis connection established successfully", logger.Fields{
		"addr":      cfg.Address,
		"db":        cfg.DB,
		"pool_size": poolSize,
	})
	return NewRedisConnectionFromClient(client, log), nil
}

// NewRedisConnectionFromClient wraps an existing client.
func NewRedisConnectionFromClient(client redis.UniversalClient, log logger.Logger) *RedisConnection {
	return &RedisConnection{client: client, logger: log}
}

// GetClient returns the Redis client instance.
func (rc *RedisConnection) GetClient() redis.UniversalClient {
	return rc.client
}

// Ping checks Redis server connectivity.
func (rc *RedisConnection) Ping(ctx context.Context) error {
	if err := rc.client.Ping(ctx).Err(); err != nil {
		rc.logger.Error(ctx, "Redis ping failed", err)
		return err
	}
	return nil
}

// HealthCheck reports connectivity and pool statistics.
func (rc *RedisConnection) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	health := make(map[string]interface{})

	start := time.Now()
	err := rc.client.Ping(ctx).Err()
	health["connected"] = err == nil
	health["latency_ms"] = time.Since(start).Milliseconds()
	if err != nil {
		health["error"] = err.Error()
		return health, err
	}

	stats := rc.client.PoolStats()
	health["pool_hits"] = stats.Hits
	health["pool_misses"] = stats.Misses
	health["pool_timeouts"] = stats.Timeouts
	health["total_conns"] = stats.TotalConns
	health["idle_conns"] = stats.IdleConns
	return health, nil
}

// Close gracefully closes Redis connection and releases resources.
func (rc *RedisConnection) Close() error {
	if err := rc.client.Close(); err != nil {
		rc.logger.Error(context.Background(), "Failed to close Redis connection", err)
		return err
	}
	rc.logger.Info(context.Background(), "Redis connection closed successfully")
	return nil
}
