package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// KeyProductList caches the public catalog listing.
const KeyProductList = "catalog:products"

// Cache is a small JSON read-through cache backed by Redis. A nil receiver or
// nil client disables caching, so callers never need to branch on config.
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

// GetJSON loads key into dest. The boolean reports a cache hit; a miss is not
// an error.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil || c.R == nil {
		return false, nil
	}
	raw, err := c.R.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// stale or corrupt entry, treat as a miss
		return false, nil
	}
	return true, nil
}

// SetJSON stores v under key for the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.R == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, key, raw, c.TTL).Err()
}
