package checkout_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ariefcatur/go-checkout-reserver/internal/checkout"
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

func TestAttemptRepoOrphanScan(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test; requires docker")
	}

	pool := startPostgres(t)
	ctx := context.Background()
	repo := &checkout.AttemptRepo{DB: pool}

	// fully completed attempt: not an orphan
	done := checkout.Attempt{ID: uuid.NewString(), BuyerID: "alice", StartedAt: time.Now().UTC()}
	require.NoError(t, repo.Begin(ctx, done))
	require.NoError(t, repo.MarkOrderCreated(ctx, done.ID, uuid.NewString()))
	require.NoError(t, repo.MarkReserved(ctx, done.ID))
	require.NoError(t, repo.MarkBasketRetired(ctx, done.ID))

	// order created, reservation never acknowledged: orphan
	orphanOrder := uuid.NewString()
	orphan := checkout.Attempt{ID: uuid.NewString(), BuyerID: "bob", StartedAt: time.Now().UTC()}
	require.NoError(t, repo.Begin(ctx, orphan))
	require.NoError(t, repo.MarkOrderCreated(ctx, orphan.ID, orphanOrder))
	require.NoError(t, repo.MarkFailed(ctx, orphan.ID, checkout.ReasonReservationUnreachable))

	// failed before order creation: nothing to reconcile
	early := checkout.Attempt{ID: uuid.NewString(), BuyerID: "carol", StartedAt: time.Now().UTC()}
	require.NoError(t, repo.Begin(ctx, early))
	require.NoError(t, repo.MarkFailed(ctx, early.ID, checkout.ReasonEmptyBasket))

	orphans, err := repo.ListOrphans(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, orphan.ID, orphans[0].ID)
	assert.Equal(t, orphanOrder, orphans[0].OrderID)
	assert.Equal(t, checkout.ReasonReservationUnreachable, orphans[0].FailReason)
	assert.NotNil(t, orphans[0].OrderCreated)
}
