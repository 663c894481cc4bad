package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aquasentra/api-go/config"
	"github.com/redis/go-redis/v9"
)

// Cache is a small JSON cache over Redis used for the hot map and analytics
// aggregates. A nil *Cache is valid and caches nothing, so Redis stays
// optional.
type Cache struct {
	rdb *redis.Client
}

func NewCache(cfg config.RedisConfig) *Cache {
	if cfg.Addr == "" {
		return nil
	}
	return &Cache{rdb: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

// Get unmarshals the cached value into dest. Returns false on miss or any
// Redis failure; callers fall through to the database.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, raw, ttl)
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
