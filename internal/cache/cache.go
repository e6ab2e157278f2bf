// Package cache provides a Redis-backed TTL cache. Its one caller is the
// broadcast shell's /snapshot handler; upstream vendor responses are not
// cached through it. Grounded on
// the teacher's internal/providers/guards.Cache (TTL + key-namespacing
// shape) and its redis_cache.go Redis client wrapper, generalized from
// venue/symbol trade caching to the byte-blob Get/Set the rest of this
// package builds on.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache wraps a Redis client with the Get/Set/Delete surface the rest of
// tradesignal needs: miss is reported as (nil, false, nil), never an error.
type Cache struct {
	client *redis.Client
	prefix string
}

// New dials Redis eagerly and pings once, matching the teacher's
// connection-verify-at-construction pattern.
func New(addr, password string, db int, prefix string) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Cache{client: rdb, prefix: prefix}, nil
}

// Get retrieves a value from cache. found is false on a miss; err is only
// set for an actual Redis failure.
func (c *Cache) Get(ctx context.Context, key string) (data []byte, found bool, err error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set stores a value with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}
