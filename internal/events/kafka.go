package events

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/aifahao/streamticket/internal/metrics"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// ErrQueueFull is returned when the producer inbox cannot take another event.
var ErrQueueFull = errors.New("events: producer queue full")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("events: producer closed")

// messageWriter is the part of kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher queues events in memory and writes them from a single goroutine.
type KafkaPublisher struct {
	w     messageWriter
	inbox chan kafka.Message
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher builds a publisher for topic. buf bounds the in-memory queue.
func NewKafkaPublisher(brokers []string, topic string, buf int) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				for range messages {
					metrics.RecordEventDropped()
				}
				log.WithError(err).WithField("count", len(messages)).Error("events: kafka write failed")
			}
		},
	}
	return newKafkaPublisher(w, buf)
}

func newKafkaPublisher(w messageWriter, buf int) *KafkaPublisher {
	if buf <= 0 {
		buf = 256
	}
	return &KafkaPublisher{
		w:     w,
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
	}
}

// Start runs the write loop until Close is called or ctx ends.
func (p *KafkaPublisher) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		for {
			select {
			case <-ctx.Done():
				p.Close()
				p.drain()
				return
			case m, ok := <-p.inbox:
				if !ok {
					p.finish()
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *KafkaPublisher) drain() {
	for m := range p.inbox {
		p.write(m)
	}
	p.finish()
}

func (p *KafkaPublisher) write(m kafka.Message) {
	if errWrite := p.w.WriteMessages(context.Background(), m); errWrite != nil {
		metrics.RecordEventDropped()
		log.WithError(errWrite).WithField("key", string(m.Key)).Error("events: write message")
	}
}

func (p *KafkaPublisher) finish() {
	if errClose := p.w.Close(); errClose != nil {
		log.WithError(errClose).Warn("events: close kafka writer")
	}
}

// PublishOrderFulfilled queues ev keyed by order id. It never blocks.
func (p *KafkaPublisher) PublishOrderFulfilled(_ context.Context, ev OrderFulfilled) error {
	orderKey := strconv.FormatUint(ev.OrderID, 10)
	env, err := NewEnvelope(TypeOrderFulfilled, orderKey, ev)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(orderKey),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		metrics.RecordEventDropped()
		return ErrQueueFull
	}
}

// Close stops accepting events; queued events are still flushed by the write loop.
func (p *KafkaPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
}

// Wait blocks until the write loop has flushed and closed the writer.
func (p *KafkaPublisher) Wait() {
	<-p.done
}
