// Package cache is a thin Redis read-through cache. The menu is the only
// hot read path, so the API stays small: Get/Set/Del with JSON encoding.
// When Redis is unreachable every call degrades to a no-op miss and the
// caller falls back to Mongo.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/bistro-boss-server/config"
)

var (
	mu  sync.RWMutex
	rdb *redis.Client
)

// Connect initialises the Redis client and verifies it with a ping.
// A failure leaves the cache disabled rather than aborting boot.
func Connect(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: redis ping: %w", err)
	}

	mu.Lock()
	rdb = client
	mu.Unlock()
	return nil
}

// UseClient swaps the underlying client. Intended for tests.
func UseClient(client *redis.Client) {
	mu.Lock()
	rdb = client
	mu.Unlock()
}

func client() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return rdb
}

// Get unmarshals the cached value under key into dest. Returns true only on
// a hit; a miss, a decode failure, or a disabled cache all read as false.
func Get(ctx context.Context, key string, dest interface{}) bool {
	c := client()
	if c == nil {
		return false
	}

	val, err := c.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

// Set stores value under key for ttl. No-op when the cache is disabled.
func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c := client()
	if c == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl).Err()
}

// Del removes one or more keys. No-op when the cache is disabled.
func Del(ctx context.Context, keys ...string) error {
	c := client()
	if c == nil || len(keys) == 0 {
		return nil
	}
	return c.Del(ctx, keys...).Err()
}
