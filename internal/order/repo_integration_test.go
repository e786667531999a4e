package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ariefcatur/go-checkout-reserver/internal/catalog"
	"github.com/ariefcatur/go-checkout-reserver/internal/order"
	"github.com/ariefcatur/go-checkout-reserver/internal/postgres"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("shop"),
		tcpostgres.WithUsername("app"),
		tcpostgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(ctx) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	return pool
}

func TestRepoRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test; requires docker")
	}

	pool := startPostgres(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO products(sku, name, stock, price_cents)
		VALUES ('SKU-1', $1, 10, 500), ('SKU-2', $2, 5, 250)`,
		gofakeit.ProductName(), gofakeit.ProductName())
	require.NoError(t, err)

	products := &catalog.Repo{DB: pool}
	ps, err := products.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 2)

	prices, err := products.Prices(ctx, []int64{ps[0].ID, ps[1].ID})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{ps[0].ID: 500, ps[1].ID: 250}, prices)

	repo := &order.Repo{DB: pool}
	o := order.Order{
		ID:      gofakeit.UUID(),
		BuyerID: "alice",
		Ship:    &order.Address{Street: "1 Main St", City: "Haarlem", Country: "NL", Zip: "2011"},
		Items: []order.Item{
			{ProductID: ps[0].ID, Qty: 2, PriceCents: 500},
			{ProductID: ps[1].ID, Qty: 1, PriceCents: 250},
		},
		TotalCents: 1250,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Insert(ctx, o))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.BuyerID, got.BuyerID)
	assert.Equal(t, o.TotalCents, got.TotalCents)
	assert.ElementsMatch(t, o.Items, got.Items)
	require.NotNil(t, got.Ship)
	assert.Equal(t, *o.Ship, *got.Ship)

	list, err := repo.ListByBuyer(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, o.ID, list[0].ID)

	_, err = repo.GetByID(ctx, gofakeit.UUID())
	assert.ErrorIs(t, err, order.ErrNotFound)
}
