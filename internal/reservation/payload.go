package reservation

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/ariefcatur/go-checkout-reserver/internal/order"
)

// DateLayout is the calendar-date form the record key is derived from.
// Two orders created on the same day share a key; see RecordKey.
const DateLayout = "2006-01-02"

type Item struct {
	ProductID int64 `json:"productId"`
	Units     int   `json:"units"`
}

// Payload is the hand-off wire format: the full order, of which the
// receiver reads only orderDate and orderItems.
type Payload struct {
	OrderID    string         `json:"orderId"`
	OrderDate  string         `json:"orderDate"`
	Ship       *order.Address `json:"shipToAddress,omitempty"`
	OrderItems []Item         `json:"orderItems"`
	TotalCents int            `json:"totalCents"`
}

func FromOrder(o order.Order) Payload {
	return Payload{
		OrderID:   o.ID,
		OrderDate: o.CreatedAt.UTC().Format(DateLayout),
		Ship:      o.Ship,
		OrderItems: lo.Map(o.Items, func(it order.Item, _ int) Item {
			return Item{ProductID: it.ProductID, Units: it.Qty}
		}),
		TotalCents: o.TotalCents,
	}
}

// RecordKey derives the storage key from the order date alone. The key is
// not unique per order: a second order on the same date overwrites the
// first record. The receiver contract pins this key form.
func RecordKey(orderDate string) string {
	return fmt.Sprintf("order-%s.json", orderDate)
}
