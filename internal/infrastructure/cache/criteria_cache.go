package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"wellness-center/internal/domain/settings"
	"wellness-center/internal/pkg/apperrors"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "wellness:settings:"

// redisKV is the subset of redis.Cmdable the cache needs.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisCriteriaCache struct {
	client redisKV
	ttl    time.Duration
	logger *slog.Logger
}

var _ settings.CriteriaCache = (*RedisCriteriaCache)(nil)

func NewRedisCriteriaCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCriteriaCache {
	if client == nil {
		panic("redis client cannot be nil for RedisCriteriaCache")
	}
	return newRedisCriteriaCache(client, ttl, logger)
}

func newRedisCriteriaCache(client redisKV, ttl time.Duration, logger *slog.Logger) *RedisCriteriaCache {
	return &RedisCriteriaCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "RedisCriteriaCache"),
	}
}

func (c *RedisCriteriaCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, settings.ErrCacheMiss
		}
		return nil, apperrors.WrapCacheError(err, "failed to read cached setting")
	}
	return value, nil
}

func (c *RedisCriteriaCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, keyPrefix+key, value, c.ttl).Err(); err != nil {
		return apperrors.WrapCacheError(err, "failed to cache setting")
	}
	c.logger.DebugContext(ctx, "Cached setting", slog.String("key", key), slog.Duration("ttl", c.ttl))
	return nil
}

func (c *RedisCriteriaCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return apperrors.WrapCacheError(err, "failed to evict cached setting")
	}
	return nil
}
