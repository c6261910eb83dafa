package redisx

import "time"

// Key formats. Keep the prefixes stable; dashboards and debug tooling
// grep for them.
const (
	// Cached order status: order_status:{order_id} -> status string.
	KeyOrderStatus = "order_status:%s"

	// Gateway callback dedup: dedup:gateway:{gateway_ref}.
	KeyGatewayDedup = "dedup:gateway:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
