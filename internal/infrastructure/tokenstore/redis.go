package tokenstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/logger"
)

// Both keys share a hash tag so the script stays in one cluster slot.
const (
	redisKeyPrefix = "{appauth}:token:"
	redisIndexKey  = "{appauth}:token-index"
)

// KEYS[1] token key, KEYS[2] write-order index.
// ARGV[1] symphony token, ARGV[2] ttl ms, ARGV[3] now ms, ARGV[4] expiry cutoff ms, ARGV[5] max entries.
var putScript = redis.NewScript(`
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
redis.call('ZADD', KEYS[2], ARGV[3], KEYS[1])
redis.call('ZREMRANGEBYSCORE', KEYS[2], '-inf', ARGV[4])

local overflow = redis.call('ZCARD', KEYS[2]) - tonumber(ARGV[5])
if overflow > 0 then
	local victims = redis.call('ZRANGE', KEYS[2], 0, overflow - 1)
	redis.call('DEL', unpack(victims))
	redis.call('ZREM', KEYS[2], unpack(victims))
end
return overflow
`)

// RedisStore keeps token pairs in Redis so several instances can share handshakes.
type RedisStore struct {
	client  redis.UniversalClient
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	logger  logger.Logger
}

var _ service.TokenStore = (*RedisStore)(nil)

// NewRedisStore creates a store with the same size and age bounds as MemoryStore.
func NewRedisStore(client redis.UniversalClient, maxSize int, ttl time.Duration, log logger.Logger) *RedisStore {
	if maxSize <= 0 {
		maxSize = constants.TokenCacheDefaultMaxSize
	}
	if ttl <= 0 {
		ttl = constants.TokenCacheDefaultTTL
	}
	return &RedisStore{
		client:  client,
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		logger:  log.WithComponent("tokenstore.redis"),
	}
}

// Put stores the pair and evicts the oldest writes beyond the size bound.
func (s *RedisStore) Put(ctx context.Context, appToken, symphonyToken string) error {
	now := s.now().UnixMilli()
	evicted, err := putScript.Run(ctx, s.client,
		[]string{redisKeyPrefix + appToken, redisIndexKey},
		symphonyToken, s.ttl.Milliseconds(), now, now-s.ttl.Milliseconds(), s.maxSize,
	).Int64()
	if err != nil {
		s.logger.Error(ctx, "Failed to store token pair", err)
		return errors.ErrServerError("token store unavailable").WithCause(err)
	}
	if evicted > 0 {
		s.logger.Debug(ctx, "Evicted token pairs", logger.Fields{"count": evicted})
	}
	return nil
}

// Get returns the symphony token paired with appToken.
func (s *RedisStore) Get(ctx context.Context, appToken string) (string, bool, error) {
	v, err := s.client.Get(ctx, redisKeyPrefix+appToken).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.ErrServerError("token store unavailable").WithCause(err)
	}
	return v, true, nil
}

// Ping checks that Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
