package basket

import "time"

// Line is one (product, quantity) pair in a basket. Quantities may be
// zero after an update; a basket whose lines are all zero counts as empty.
type Line struct {
	ProductID int64 `json:"product_id"`
	Qty       int   `json:"qty"`
}

// Basket is the per-owner, pre-order collection of selected items.
// Owner is the authenticated user name or an anonymous cookie token.
type Basket struct {
	Owner     string    `json:"owner"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Add increments the quantity for a product, appending a new line
// when the product is not in the basket yet.
func (b *Basket) Add(productID int64, qty int) {
	for i := range b.Lines {
		if b.Lines[i].ProductID == productID {
			b.Lines[i].Qty += qty
			return
		}
	}
	b.Lines = append(b.Lines, Line{ProductID: productID, Qty: qty})
}

// SetQuantities overwrites quantities for the given products. Products not
// present in the basket are ignored; lines not mentioned keep their quantity.
func (b *Basket) SetQuantities(quantities map[int64]int) {
	for i := range b.Lines {
		if q, ok := quantities[b.Lines[i].ProductID]; ok {
			if q < 0 {
				q = 0
			}
			b.Lines[i].Qty = q
		}
	}
}

// IsEmpty reports whether the basket has no line with a positive quantity.
func (b *Basket) IsEmpty() bool {
	for _, l := range b.Lines {
		if l.Qty > 0 {
			return false
		}
	}
	return true
}
