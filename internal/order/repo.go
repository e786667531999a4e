package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

type Repo struct{ DB *pgxpool.Pool }

// Insert writes the order and its items in one transaction.
func (r *Repo) Insert(ctx context.Context, o Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var street, city, country, zip *string
	if o.Ship != nil {
		street, city, country, zip = &o.Ship.Street, &o.Ship.City, &o.Ship.Country, &o.Ship.Zip
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, buyer_id, ship_street, ship_city, ship_country, ship_zip, total_cents, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, o.BuyerID, street, city, country, zip, o.TotalCents, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, qty, price_cents)
			VALUES ($1,$2,$3,$4)`,
			o.ID, it.ProductID, it.Qty, it.PriceCents)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, orderID string) (Order, error) {
	var (
		o                         Order
		street, city, country, zip *string
	)
	err := r.DB.QueryRow(ctx, `
		SELECT id, buyer_id, ship_street, ship_city, ship_country, ship_zip, total_cents, created_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.BuyerID, &street, &city, &country, &zip, &o.TotalCents, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("select order: %w", err)
	}
	if street != nil {
		o.Ship = &Address{Street: *street, City: *city, Country: *country, Zip: *zip}
	}

	rows, err := r.DB.Query(ctx, `SELECT product_id, qty, price_cents FROM order_items WHERE order_id=$1`, o.ID)
	if err != nil {
		return Order{}, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Qty, &it.PriceCents); err != nil {
			return Order{}, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func (r *Repo) ListByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, buyer_id, total_cents, created_at
		FROM orders WHERE buyer_id=$1 ORDER BY created_at DESC`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.TotalCents, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
