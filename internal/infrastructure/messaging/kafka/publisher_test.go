package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialhomes/CaseClock/internal/application/worklist"
	"github.com/socialhomes/CaseClock/internal/config"
	"github.com/socialhomes/CaseClock/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/socialhomes/CaseClock/pkg/errors"
)

type mockWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closed    bool
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func (m *mockWriter) Stats() kafka.WriterStats { return kafka.WriterStats{} }

func testEvent() worklist.BreachEvent {
	return worklist.BreachEvent{
		CaseID:       "c-1",
		Reference:    "REP-0001",
		Category:     "repair",
		Classifier:   "emergency",
		DeadlineName: "target",
		DueAt:        time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC),
		DetectedAt:   time.Date(2026, 2, 5, 9, 0, 0, 0, time.UTC),
	}
}

func newTestPublisher(w WriterInterface) *BreachPublisher {
	return &BreachPublisher{writer: w, topic: "caseclock.breaches", logger: logging.NewNop()}
}

func TestNewBreachPublisher_Validation(t *testing.T) {
	_, err := NewBreachPublisher(config.KafkaConfig{BreachTopic: "t"}, logging.NewNop())
	assert.Error(t, err)

	_, err = NewBreachPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}}, logging.NewNop())
	assert.Error(t, err)

	p, err := NewBreachPublisher(config.KafkaConfig{
		Brokers:     []string{"localhost:9092"},
		BreachTopic: "caseclock.breaches",
	}, logging.NewNop())
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestPublishBreach_Success(t *testing.T) {
	var captured []kafka.Message
	w := &mockWriter{writeFunc: func(_ context.Context, msgs ...kafka.Message) error {
		captured = msgs
		return nil
	}}
	p := newTestPublisher(w)

	event := testEvent()
	require.NoError(t, p.PublishBreach(context.Background(), event))

	require.Len(t, captured, 1)
	assert.Equal(t, []byte("c-1"), captured[0].Key)

	var decoded worklist.BreachEvent
	require.NoError(t, json.Unmarshal(captured[0].Value, &decoded))
	assert.Equal(t, event, decoded)

	require.Len(t, captured[0].Headers, 2)
	assert.Equal(t, "event-type", captured[0].Headers[0].Key)
	assert.Equal(t, []byte("deadline.breached"), captured[0].Headers[0].Value)
	assert.Equal(t, []byte("repair"), captured[0].Headers[1].Value)
}

func TestPublishBreach_WriteError(t *testing.T) {
	w := &mockWriter{writeFunc: func(_ context.Context, _ ...kafka.Message) error {
		return assert.AnError
	}}
	p := newTestPublisher(w)

	err := p.PublishBreach(context.Background(), testEvent())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeMessagingError))
}

func TestPublishBreach_MissingCaseID(t *testing.T) {
	p := newTestPublisher(&mockWriter{})

	event := testEvent()
	event.CaseID = ""
	err := p.PublishBreach(context.Background(), event)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeBadRequest))
}

func TestPublishBreach_AfterClose(t *testing.T) {
	w := &mockWriter{}
	p := newTestPublisher(w)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	err := p.PublishBreach(context.Background(), testEvent())
	assert.Equal(t, ErrPublisherClosed, err)

	// Close is idempotent.
	assert.NoError(t, p.Close())
}
