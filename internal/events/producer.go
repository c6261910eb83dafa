package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Publisher emits lifecycle events. Publishing is best-effort and never
// blocks the calling request path.
type Publisher interface {
	Publish(eventType, correlationID string, payload any)
	Close()
}

// producer publishes envelopes to a Kafka topic through a buffered inbox
// drained by a single goroutine, keeping the request path free of broker
// latency.
type producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	logger  zerolog.Logger
}

// NewProducer creates a Kafka-backed publisher and starts its drain
// loop. The loop flushes remaining messages on ctx cancellation.
func NewProducer(ctx context.Context, brokers []string, topic string, buf int, logger zerolog.Logger) Publisher {
	p := &producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		logger:  logger.With().Str("component", "event_producer").Logger(),
	}
	go p.run(ctx)
	return p
}

func (p *producer) run(ctx context.Context) {
	defer close(p.closeCh)
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return
		case m, ok := <-p.inbox:
			if !ok {
				_ = p.w.Close()
				return
			}
			p.write(m)
		}
	}
}

func (p *producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			_ = p.w.Close()
			return
		}
	}
}

func (p *producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.logger.Error().Err(err).Str("key", string(m.Key)).Msg("failed to publish event")
	}
}

// Publish wraps payload in an envelope and queues it, keyed by
// correlationID so events for one order stay ordered. A full inbox drops
// the event with a warning instead of blocking checkout.
func (p *producer) Publish(eventType, correlationID string, payload any) {
	env, err := NewEnvelope(eventType, correlationID, payload)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to build event envelope")
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event envelope")
		return
	}

	msg := kafka.Message{
		Key:   []byte(correlationID),
		Value: value,
		Time:  time.Now(),
	}
	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn().
			Str("event_type", eventType).
			Str("correlation_id", correlationID).
			Msg("event inbox full, dropping event")
	}
}

// Close stops accepting events and lets the drain loop flush and exit.
func (p *producer) Close() {
	close(p.inbox)
	<-p.closeCh
}

// nopPublisher discards all events. Used when no broker is configured
// and in tests.
type nopPublisher struct{}

// NewNopPublisher returns a Publisher that discards everything.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(string, string, any) {}
func (nopPublisher) Close()                      {}
