package redisx

import "time"

const (
	// Read cache for a fully assembled order: order:{order_id} -> order JSON
	KeyOrder = "order:%s"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderCache = 10 * time.Minute
	TTLDedup      = 48 * time.Hour
)
