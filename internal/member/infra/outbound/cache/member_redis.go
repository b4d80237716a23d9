package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	sharedCache "github.com/davicafu/memberquery/internal/shared/infra/platform/cache"
)

// RedisMemberCache guarda las entradas como JSON bajo un prefijo común.
type RedisMemberCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ sharedCache.Cache = (*RedisMemberCache)(nil)

func NewRedisMemberCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisMemberCache {
	return &RedisMemberCache{client: client, prefix: prefix, ttl: ttl}
}

// Ping comprueba la conexión; el arranque cae a la caché en memoria si falla.
func (c *RedisMemberCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *RedisMemberCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // miss
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisMemberCache) Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

func (c *RedisMemberCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
