package order

import "time"

type Item struct {
	ProductID  int64 `json:"product_id"`
	Qty        int   `json:"qty"`
	PriceCents int   `json:"price_cents"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
	Zip     string `json:"zip"`
}

// Order is an immutable snapshot taken from a basket at checkout time.
// Nothing mutates it after Insert.
type Order struct {
	ID         string    `json:"order_id"`
	BuyerID    string    `json:"buyer_id"`
	Ship       *Address  `json:"ship,omitempty"`
	Items      []Item    `json:"items"`
	TotalCents int       `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
}
