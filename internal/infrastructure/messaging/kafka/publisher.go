// Package kafka publishes breach events to the escalation stream.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/socialhomes/CaseClock/internal/application/worklist"
	"github.com/socialhomes/CaseClock/internal/config"
	"github.com/socialhomes/CaseClock/internal/infrastructure/monitoring/logging"
	"github.com/socialhomes/CaseClock/pkg/errors"
)

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New(errors.ErrCodeInternal, "breach publisher closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// BreachPublisher writes breach events to the configured topic.  Messages
// are keyed by case id so every event for one case lands on one partition
// in order.
type BreachPublisher struct {
	writer WriterInterface
	topic  string
	logger logging.Logger
	closed atomic.Bool
}

// NewBreachPublisher constructs a publisher from cfg.
func NewBreachPublisher(cfg config.KafkaConfig, logger logging.Logger) (*BreachPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.InvalidParam("kafka brokers are required")
	}
	if cfg.BreachTopic == "" {
		return nil, errors.InvalidParam("breach topic is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	maxAttempts := cfg.ProducerRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.BreachTopic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  maxAttempts,
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
	}

	return &BreachPublisher{writer: writer, topic: cfg.BreachTopic, logger: logger}, nil
}

// PublishBreach emits one breach event.  Delivery is at-least-once; the
// scan's dedup window keeps repeats out of the stream under normal
// operation.
func (p *BreachPublisher) PublishBreach(ctx context.Context, event worklist.BreachEvent) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}
	if event.CaseID == "" {
		return errors.InvalidParam("breach event requires a case id")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "breach event is not serialisable")
	}

	msg := kafka.Message{
		Key:   []byte(event.CaseID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("deadline.breached")},
			{Key: "category", Value: []byte(event.Category)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeMessagingError, "breach publish failed")
	}

	p.logger.Debug("kafka: breach published",
		logging.String("case_id", event.CaseID),
		logging.String("deadline", event.DeadlineName),
		logging.String("topic", p.topic),
	)
	return nil
}

// Close flushes and shuts the writer down.
func (p *BreachPublisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
