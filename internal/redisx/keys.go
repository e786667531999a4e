package redisx

import "time"

const (
	// Basket state per owner: basket:{owner_id} -> JSON basket snapshot
	KeyBasket = "basket:%s"

	// Dedup for redelivered dead-letter events: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	// Baskets outlive sessions; anonymous owners carry a 10-year cookie,
	// so the record itself keeps a long horizon too.
	TTLBasket = 90 * 24 * time.Hour
	TTLDedup  = 48 * time.Hour
)
