package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type recordingWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestPublisherFlushesQueuedEventsOnClose(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, 8)
	p.Start(context.Background())

	for _, id := range []uint64{7, 8} {
		ev := OrderFulfilled{OrderID: id, UserID: 1, ProductID: 2, Quantity: 1, TotalAmount: decimal.RequireFromString("9.90"), TicketIDs: []uint64{id * 10}}
		if err := p.PublishOrderFulfilled(context.Background(), ev); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	p.Close()
	p.Wait()

	if !w.closed {
		t.Fatalf("writer not closed")
	}
	if len(w.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(w.messages))
	}
	if string(w.messages[0].Key) != "7" {
		t.Fatalf("expected order id key, got %q", w.messages[0].Key)
	}

	var env Envelope
	if err := json.Unmarshal(w.messages[1].Value, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.EventType != TypeOrderFulfilled || env.CorrelationID != "8" || env.EventID == "" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	var payload OrderFulfilled
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.OrderID != 8 || !payload.TotalAmount.Equal(decimal.RequireFromString("9.9")) {
		t.Fatalf("unexpected payload %+v", payload)
	}

	if err := p.PublishOrderFulfilled(context.Background(), OrderFulfilled{OrderID: 9}); err != ErrClosed {
		t.Fatalf("expected ErrClosed after close, got %v", err)
	}
}

func TestPublisherDropsWhenQueueFull(t *testing.T) {
	p := newKafkaPublisher(&recordingWriter{}, 1)
	if err := p.PublishOrderFulfilled(context.Background(), OrderFulfilled{OrderID: 1}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := p.PublishOrderFulfilled(context.Background(), OrderFulfilled{OrderID: 2}); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}
