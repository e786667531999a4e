package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-checkout-reserver/internal/basket"
	"github.com/ariefcatur/go-checkout-reserver/internal/metrics"
	"github.com/ariefcatur/go-checkout-reserver/internal/order"
	"github.com/ariefcatur/go-checkout-reserver/internal/reservation"
	"github.com/ariefcatur/go-checkout-reserver/internal/session"
)

// Outcome is what the HTTP layer maps to a response: success redirect,
// redirect back to the basket, a validation response, or a hard failure.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeEmptyBasket  Outcome = "empty_basket"
	OutcomeInvalidInput Outcome = "invalid_input"
	OutcomeFailure      Outcome = "failure"
)

type Result struct {
	Outcome Outcome
	Reason  FailReason
	Order   order.Order
}

type BasketStore interface {
	Get(ctx context.Context, owner string) (basket.Basket, error)
	Put(ctx context.Context, b basket.Basket) error
	Delete(ctx context.Context, owner string) error
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, buyerID string, ship *order.Address) (order.Order, error)
}

type ReservationSender interface {
	Send(ctx context.Context, o order.Order) error
}

type AttemptLog interface {
	Begin(ctx context.Context, a Attempt) error
	MarkOrderCreated(ctx context.Context, attemptID, orderID string) error
	MarkReserved(ctx context.Context, attemptID string) error
	MarkBasketRetired(ctx context.Context, attemptID string) error
	MarkFailed(ctx context.Context, attemptID string, reason FailReason) error
}

type DeadLetter interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Orchestrator runs one checkout attempt as a saga: set quantities, create
// the order, hand it off to the reserver, retire the basket. There is no
// cross-store transaction; each completed step is recorded in the attempt
// log so partial progress is visible after a failure.
type Orchestrator struct {
	Baskets  BasketStore
	Orders   OrderCreator
	Reserver ReservationSender
	Attempts AttemptLog
	DLQ      DeadLetter

	// retry policy for the reservation hand-off
	MaxAttempts int
	Backoff     time.Duration

	Service string
	Log     *log.Logger
}

// Checkout processes a submission carrying per-product quantity updates and
// an optional shipping address. The basket is deleted iff order creation
// and the reservation hand-off both succeeded, in that order.
func (s *Orchestrator) Checkout(ctx context.Context, sess session.Session, updates map[int64]int, ship *order.Address) (Result, error) {
	if sess.BuyerID == "" {
		return s.done(Result{Outcome: OutcomeInvalidInput, Reason: ReasonInvalidInput}), nil
	}
	for id, qty := range updates {
		if id <= 0 || qty < 0 {
			return s.done(Result{Outcome: OutcomeInvalidInput, Reason: ReasonInvalidInput}), nil
		}
	}

	a := Attempt{ID: uuid.NewString(), BuyerID: sess.BuyerID, StartedAt: time.Now().UTC()}
	if err := s.Attempts.Begin(ctx, a); err != nil {
		return s.done(Result{Outcome: OutcomeFailure, Reason: ReasonInternal}), fmt.Errorf("begin attempt: %w", err)
	}

	// Step 1: re-synchronize quantities from the submission.
	b, err := s.Baskets.Get(ctx, sess.BuyerID)
	if errors.Is(err, basket.ErrNotFound) {
		_ = s.Attempts.MarkFailed(ctx, a.ID, ReasonEmptyBasket)
		return s.done(Result{Outcome: OutcomeEmptyBasket, Reason: ReasonEmptyBasket}), nil
	}
	if err != nil {
		_ = s.Attempts.MarkFailed(ctx, a.ID, ReasonInternal)
		return s.done(Result{Outcome: OutcomeFailure, Reason: ReasonInternal}), fmt.Errorf("load basket: %w", err)
	}
	if len(updates) > 0 {
		b.SetQuantities(updates)
		if err := s.Baskets.Put(ctx, b); err != nil {
			_ = s.Attempts.MarkFailed(ctx, a.ID, ReasonInternal)
			return s.done(Result{Outcome: OutcomeFailure, Reason: ReasonInternal}), fmt.Errorf("update basket: %w", err)
		}
	}

	// Step 2: assemble the immutable order. An empty basket is a shopper
	// outcome, not a fault; the basket stays as-is.
	o, err := s.Orders.CreateOrder(ctx, sess.BuyerID, ship)
	if errors.Is(err, order.ErrEmptyBasket) {
		_ = s.Attempts.MarkFailed(ctx, a.ID, ReasonEmptyBasket)
		return s.done(Result{Outcome: OutcomeEmptyBasket, Reason: ReasonEmptyBasket}), nil
	}
	if err != nil {
		_ = s.Attempts.MarkFailed(ctx, a.ID, ReasonInternal)
		return s.done(Result{Outcome: OutcomeFailure, Reason: ReasonInternal}), fmt.Errorf("create order: %w", err)
	}
	if err := s.Attempts.MarkOrderCreated(ctx, a.ID, o.ID); err != nil {
		s.logf("attempt %s: mark order created: %v", a.ID, err)
	}

	// Step 3: hand off to the reserver. The order already exists; on
	// exhaustion it is dead-lettered and the attempt log keeps the orphan
	// visible. The basket must survive this failure.
	if err := s.sendWithRetry(ctx, o); err != nil {
		s.deadLetter(a.ID, o, err)
		_ = s.Attempts.MarkFailed(ctx, a.ID, ReasonReservationUnreachable)
		return s.done(Result{Outcome: OutcomeFailure, Reason: ReasonReservationUnreachable, Order: o}), fmt.Errorf("reserve order %s: %w", o.ID, err)
	}
	if err := s.Attempts.MarkReserved(ctx, a.ID); err != nil {
		s.logf("attempt %s: mark reserved: %v", a.ID, err)
	}

	// Step 4: retire the basket, only now.
	if err := s.Baskets.Delete(ctx, sess.BuyerID); err != nil {
		_ = s.Attempts.MarkFailed(ctx, a.ID, ReasonBasketRetirement)
		return s.done(Result{Outcome: OutcomeFailure, Reason: ReasonBasketRetirement, Order: o}), fmt.Errorf("retire basket: %w", err)
	}
	if err := s.Attempts.MarkBasketRetired(ctx, a.ID); err != nil {
		s.logf("attempt %s: mark basket retired: %v", a.ID, err)
	}

	return s.done(Result{Outcome: OutcomeSuccess, Order: o}), nil
}

func (s *Orchestrator) sendWithRetry(ctx context.Context, o order.Order) error {
	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			metrics.ReserveRetries.Inc()
			select {
			case <-time.After(s.Backoff * time.Duration(i)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = s.Reserver.Send(ctx, o); err == nil {
			return nil
		}
		s.logf("order %s: reserve attempt %d/%d: %v", o.ID, i+1, attempts, err)
	}
	return err
}

func (s *Orchestrator) deadLetter(attemptID string, o order.Order, cause error) {
	if s.DLQ == nil {
		return
	}
	payload, err := json.Marshal(ReservationSendFailedPayload{
		AttemptID: attemptID,
		OrderID:   o.ID,
		Reason:    cause.Error(),
		Order:     reservation.FromOrder(o),
	})
	if err != nil {
		s.logf("order %s: encode dead letter: %v", o.ID, err)
		return
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventReservationSendFailed,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Service,
		CorrelationID: o.ID,
		Payload:       payload,
	}
	value, err := json.Marshal(env)
	if err != nil {
		s.logf("order %s: encode envelope: %v", o.ID, err)
		return
	}
	s.DLQ.Publish(PartitionKey(o.ID), value,
		kafkago.Header{Key: "x-event-type", Value: []byte(EventReservationSendFailed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	metrics.DeadLettered.Inc()
}

func (s *Orchestrator) done(r Result) Result {
	metrics.CheckoutOutcomes.WithLabelValues(string(r.Outcome)).Inc()
	return r
}

func (s *Orchestrator) logf(format string, args ...any) {
	if s.Log != nil {
		s.Log.Printf(format, args...)
	}
}
