package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// New creates a Redis client with a short per-command timeout. Cache and
// dedup lookups are advisory, so a slow Redis must not stall checkout.
func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// SetNX writes key only if absent, returning whether this call claimed
// it. Used for callback deduplication.
func SetNX(ctx context.Context, rdb *redis.Client, key, value string, ttl time.Duration) (bool, error) {
	return rdb.SetNX(ctx, key, value, ttl).Result()
}
