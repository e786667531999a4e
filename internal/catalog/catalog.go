package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Product struct {
	ID         int64     `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	Stock      int       `json:"stock"`
	PriceCents int       `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, sku, name, stock, price_cents, created_at, updated_at
                                FROM products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Stock, &p.PriceCents, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Prices resolves unit prices for the given product ids from the products
// table. Missing ids are simply absent from the result; the caller decides
// whether that is an error.
func (r *Repo) Prices(ctx context.Context, productIDs []int64) (map[int64]int, error) {
	if len(productIDs) == 0 {
		return map[int64]int{}, nil
	}
	args := make([]any, 0, len(productIDs))
	params := ""
	for i, id := range productIDs {
		if i > 0 {
			params += ","
		}
		params += fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}
	rows, err := r.DB.Query(ctx, `SELECT id, price_cents FROM products WHERE id IN (`+params+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := map[int64]int{}
	for rows.Next() {
		var id int64
		var cents int
		if err := rows.Scan(&id, &cents); err != nil {
			return nil, err
		}
		prices[id] = cents
	}
	return prices, rows.Err()
}
