package redisx

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// OrderStatusCache is a Redis-backed order status read cache. All
// operations are advisory: Redis failures are logged and swallowed so a
// cache outage never fails an order operation.
type OrderStatusCache struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

// NewOrderStatusCache creates a status cache on rdb.
func NewOrderStatusCache(rdb *redis.Client, logger zerolog.Logger) *OrderStatusCache {
	return &OrderStatusCache{
		rdb:    rdb,
		logger: logger.With().Str("component", "status_cache").Logger(),
	}
}

// SetStatus refreshes the cached status for an order.
func (c *OrderStatusCache) SetStatus(ctx context.Context, orderID uuid.UUID, status string) {
	key := fmt.Sprintf(KeyOrderStatus, orderID)
	if err := c.rdb.Set(ctx, key, status, TTLStatusCache).Err(); err != nil {
		c.logger.Warn().Err(err).Str("order_id", orderID.String()).Msg("failed to cache order status")
	}
}

// GetStatus retrieves a cached status; ok is false on miss or error.
func (c *OrderStatusCache) GetStatus(ctx context.Context, orderID uuid.UUID) (string, bool) {
	key := fmt.Sprintf(KeyOrderStatus, orderID)
	status, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("order_id", orderID.String()).Msg("failed to read status cache")
		}
		return "", false
	}
	return status, true
}

// GatewayDeduper remembers processed gateway callback references. On
// Redis failure it claims the reference anyway; the payment row's own
// pending guard is the authoritative idempotence check.
type GatewayDeduper struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

// NewGatewayDeduper creates a callback deduper on rdb.
func NewGatewayDeduper(rdb *redis.Client, logger zerolog.Logger) *GatewayDeduper {
	return &GatewayDeduper{
		rdb:    rdb,
		logger: logger.With().Str("component", "gateway_dedup").Logger(),
	}
}

// Claim returns true when this call is the first to process ref.
func (d *GatewayDeduper) Claim(ctx context.Context, ref string) bool {
	key := fmt.Sprintf(KeyGatewayDedup, ref)
	claimed, err := SetNX(ctx, d.rdb, key, "1", TTLDedup)
	if err != nil {
		d.logger.Warn().Err(err).Str("gateway_ref", ref).Msg("dedup check failed, proceeding")
		return true
	}
	return claimed
}
