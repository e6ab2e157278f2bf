package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GetJSON unmarshals a cached value into dst. found is false on a miss.
// Mirrors the teacher's GetCachedTrades/GetCachedOrderBook pair, generalized
// to any JSON-marshalable type instead of one struct per data kind.
func GetJSON(ctx context.Context, c *Cache, key string, dst any) (found bool, err error) {
	raw, found, err := c.Get(ctx, key)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("unmarshal cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON marshals value and stores it with the given TTL.
func SetJSON(ctx context.Context, c *Cache, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.Set(ctx, key, raw, ttl)
}
