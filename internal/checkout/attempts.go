package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Attempt is the persisted saga record for one checkout. The step markers
// let a recovery pass re-derive where an attempt stopped instead of
// assuming the happy path ran to the end.
type Attempt struct {
	ID            string
	BuyerID       string
	OrderID       string
	State         State
	FailReason    FailReason
	OrderCreated  *time.Time
	Reserved      *time.Time
	BasketRetired *time.Time
	StartedAt     time.Time
}

type AttemptRepo struct{ DB *pgxpool.Pool }

func (r *AttemptRepo) Begin(ctx context.Context, a Attempt) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO checkout_attempts(id, buyer_id, state, started_at)
		VALUES ($1,$2,$3,$4)`,
		a.ID, a.BuyerID, StateValidating, a.StartedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *AttemptRepo) MarkOrderCreated(ctx context.Context, attemptID, orderID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE checkout_attempts
		SET state=$2, order_id=$3, order_created=now(), updated_at=now()
		WHERE id=$1`,
		attemptID, StateOrderCreated, orderID)
	if err != nil {
		return fmt.Errorf("mark order created: %w", err)
	}
	return nil
}

func (r *AttemptRepo) MarkReserved(ctx context.Context, attemptID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE checkout_attempts
		SET state=$2, reserved=now(), updated_at=now()
		WHERE id=$1`,
		attemptID, StateReserved)
	if err != nil {
		return fmt.Errorf("mark reserved: %w", err)
	}
	return nil
}

func (r *AttemptRepo) MarkBasketRetired(ctx context.Context, attemptID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE checkout_attempts
		SET state=$2, basket_retired=now(), updated_at=now()
		WHERE id=$1`,
		attemptID, StateBasketRetired)
	if err != nil {
		return fmt.Errorf("mark basket retired: %w", err)
	}
	return nil
}

func (r *AttemptRepo) MarkFailed(ctx context.Context, attemptID string, reason FailReason) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE checkout_attempts
		SET state=$2, fail_reason=$3, updated_at=now()
		WHERE id=$1`,
		attemptID, StateFailed, reason)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// ListOrphans returns attempts whose order was created but never reserved:
// the Order exists in the order store with no matching reservation record
// downstream. The redeliver worker and operators work from this list.
func (r *AttemptRepo) ListOrphans(ctx context.Context) ([]Attempt, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, buyer_id, order_id, state, COALESCE(fail_reason,''), order_created, started_at
		FROM checkout_attempts
		WHERE order_created IS NOT NULL AND reserved IS NULL
		ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("select orphans: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.BuyerID, &a.OrderID, &a.State, &a.FailReason, &a.OrderCreated, &a.StartedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
