// Package events publishes order lifecycle events after checkout commits.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types.
const (
	TypeOrderFulfilled = "order.fulfilled"
)

const (
	eventVersion = 1
	producerName = "streamticket-api"
)

// Envelope wraps every event payload on the wire.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderFulfilled describes one fulfilled checkout line.
type OrderFulfilled struct {
	OrderID     uint64          `json:"order_id"`
	UserID      uint64          `json:"user_id"`
	ProductID   uint64          `json:"product_id"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TicketIDs   []uint64        `json:"ticket_ids"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
}

// Publisher delivers events. Implementations must not block the caller on broker I/O.
type Publisher interface {
	PublishOrderFulfilled(ctx context.Context, ev OrderFulfilled) error
}

// NewEnvelope wraps payload with a fresh event id.
func NewEnvelope(eventType, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  eventVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// Noop discards every event.
type Noop struct{}

// PublishOrderFulfilled implements Publisher.
func (Noop) PublishOrderFulfilled(context.Context, OrderFulfilled) error { return nil }
