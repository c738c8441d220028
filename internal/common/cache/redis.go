// Package cache stores JSON-encoded values in Redis under a common key prefix.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "erp-assistant/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache keys every entry as prefix+key. A zero ttl keeps entries
// until they are invalidated.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Get decodes the cached value into dest. Numbers decode as json.Number so
// integers survive the round trip.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewCacheUnavailableError(err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(dest); err != nil {
		return false, apperrors.NewCacheUnavailableError(err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return apperrors.NewCacheUnavailableError(err)
	}
	return nil
}

// InvalidatePrefix deletes every entry whose key starts with keyPrefix and
// returns how many were removed.
func (c *RedisCache) InvalidatePrefix(ctx context.Context, keyPrefix string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+keyPrefix+"*", scanBatch).Result()
		if err != nil {
			return deleted, apperrors.NewCacheUnavailableError(err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, apperrors.NewCacheUnavailableError(err)
			}
			deleted += int(n)
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}
