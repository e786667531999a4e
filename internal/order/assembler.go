package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ariefcatur/go-checkout-reserver/internal/basket"
)

// ErrEmptyBasket means the basket was absent or carried no positive
// quantity at assembly time. Callers branch on it with errors.Is; it is a
// shopper-correctable outcome, not a system fault.
var ErrEmptyBasket = errors.New("basket is empty")

type BasketReader interface {
	Get(ctx context.Context, owner string) (basket.Basket, error)
}

type PriceSource interface {
	Prices(ctx context.Context, productIDs []int64) (map[int64]int, error)
}

type OrderWriter interface {
	Insert(ctx context.Context, o Order) error
}

// Assembler turns a basket snapshot into an immutable order. Prices come
// from the catalog, never from the client. The basket itself is left
// untouched; retiring it belongs to the checkout workflow.
type Assembler struct {
	Baskets BasketReader
	Catalog PriceSource
	Orders  OrderWriter
}

func (a *Assembler) CreateOrder(ctx context.Context, buyerID string, ship *Address) (Order, error) {
	b, err := a.Baskets.Get(ctx, buyerID)
	if errors.Is(err, basket.ErrNotFound) {
		return Order{}, ErrEmptyBasket
	}
	if err != nil {
		return Order{}, fmt.Errorf("load basket: %w", err)
	}

	lines := lo.Filter(b.Lines, func(l basket.Line, _ int) bool { return l.Qty > 0 })
	if len(lines) == 0 {
		return Order{}, ErrEmptyBasket
	}

	ids := lo.Map(lines, func(l basket.Line, _ int) int64 { return l.ProductID })
	prices, err := a.Catalog.Prices(ctx, ids)
	if err != nil {
		return Order{}, fmt.Errorf("reprice: %w", err)
	}

	o := Order{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		Ship:      ship,
		CreatedAt: time.Now().UTC(),
	}
	for _, l := range lines {
		price, ok := prices[l.ProductID]
		if !ok {
			return Order{}, fmt.Errorf("product not found: %d", l.ProductID)
		}
		o.Items = append(o.Items, Item{ProductID: l.ProductID, Qty: l.Qty, PriceCents: price})
		o.TotalCents += price * l.Qty
	}

	if err := a.Orders.Insert(ctx, o); err != nil {
		return Order{}, fmt.Errorf("persist order: %w", err)
	}
	return o, nil
}
