package worklist

import (
	"context"
	"time"

	"github.com/socialhomes/CaseClock/internal/domain/casework"
	"github.com/socialhomes/CaseClock/pkg/types/common"
)

// Logger abstracts structured logging.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// CachePort abstracts cache get/set for assessment results.
type CachePort interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CaseStore is the minimal case repository interface the worklist needs.
// The engine never writes case facts; the single mutation it performs is
// recording a validated escalation move.
type CaseStore interface {
	GetByID(ctx context.Context, id common.ID) (*casework.Case, error)
	ListOpen(ctx context.Context) ([]*casework.Case, error)
	UpdateStage(ctx context.Context, id common.ID, stage string, enteredAt time.Time) error
}

// BreachEvent is published when a scan observes a case over a statutory
// deadline.
type BreachEvent struct {
	CaseID       string    `json:"case_id"`
	Reference    string    `json:"reference"`
	Category     string    `json:"category"`
	Classifier   string    `json:"classifier,omitempty"`
	DeadlineName string    `json:"deadline_name"`
	DueAt        time.Time `json:"due_at"`
	DetectedAt   time.Time `json:"detected_at"`
}

// EventPublisher abstracts the breach event stream.
type EventPublisher interface {
	PublishBreach(ctx context.Context, event BreachEvent) error
}

// MetricsPort records scan and assessment counters.
type MetricsPort interface {
	RecordAssessment(category, status string)
	RecordScan(compliant, atRisk, breached int, took time.Duration)
	RecordBreachPublished(category string)
}
