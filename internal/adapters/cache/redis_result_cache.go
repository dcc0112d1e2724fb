package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/platform/obs"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisResultCache keeps optimizer results in redis with a fixed TTL.
type RedisResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisResultCache(rdb *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{rdb: rdb, ttl: ttl}
}

// NewRedisResultCacheFromURL parses a redis:// URL and verifies the server
// answers before returning.
func NewRedisResultCacheFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisResultCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis result cache: parse url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis result cache: ping: %w", err)
	}

	return NewRedisResultCache(rdb, ttl), nil
}

func (c *RedisResultCache) Get(ctx context.Context, key string) (_ *domain.Result, _ bool, err error) {
	defer obs.Time(ctx, "result.redis.Get")(&err)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis result cache get %q: %w", key, err)
	}

	var res domain.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false, fmt.Errorf("redis result cache decode %q: %w", key, err)
	}

	return &res, true, nil
}

func (c *RedisResultCache) Put(ctx context.Context, key string, result domain.Result) (err error) {
	defer obs.Time(ctx, "result.redis.Put")(&err)

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redis result cache encode: %w", err)
	}

	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis result cache set %q: %w", key, err)
	}

	return nil
}

func (c *RedisResultCache) Close() error { return c.rdb.Close() }
