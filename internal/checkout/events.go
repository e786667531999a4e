package checkout

import (
	"encoding/json"
	"time"

	"github.com/ariefcatur/go-checkout-reserver/internal/reservation"
)

const (
	// TopicReservationDeadLetter carries orders whose reservation hand-off
	// exhausted its retry budget.
	TopicReservationDeadLetter = "reservation.deadletter"

	EventReservationSendFailed = "ReservationSendFailed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type ReservationSendFailedPayload struct {
	AttemptID string              `json:"attempt_id"`
	OrderID   string              `json:"order_id"`
	Reason    string              `json:"reason"`
	Order     reservation.Payload `json:"order"`
}

// PartitionKey keeps every event for one order on one partition.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
