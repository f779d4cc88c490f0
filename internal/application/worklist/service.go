// Package worklist is the application layer over the deadline engine.  It
// turns raw case records into officer-facing assessments, builds the
// most-urgent-first worklist, runs the periodic compliance scan, and
// records validated escalation moves.
package worklist

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/socialhomes/CaseClock/internal/domain/casework"
	"github.com/socialhomes/CaseClock/internal/domain/countdown"
	"github.com/socialhomes/CaseClock/internal/domain/deadline"
	"github.com/socialhomes/CaseClock/internal/domain/escalation"
	"github.com/socialhomes/CaseClock/internal/domain/sla"
	"github.com/socialhomes/CaseClock/pkg/errors"
	"github.com/socialhomes/CaseClock/pkg/types/common"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// EscalationLevel grades how much attention a case needs, 0 (none) to 3
// (breached).
type EscalationLevel int

const (
	LevelNone     EscalationLevel = 0
	LevelMonitor  EscalationLevel = 1
	LevelUrgent   EscalationLevel = 2
	LevelBreached EscalationLevel = 3
)

// Assessment is the full officer-facing view of one case at one instant.
type Assessment struct {
	CaseID      string     `json:"case_id"`
	Reference   string     `json:"reference"`
	Category    string     `json:"category"`
	Classifier  string     `json:"classifier,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Status      sla.Status      `json:"status"`
	Level       EscalationLevel `json:"level"`
	EvaluatedAt time.Time       `json:"evaluated_at"`
	Frozen      bool            `json:"frozen"`

	Deadlines []sla.DeadlineStatus  `json:"deadlines,omitempty"`
	Countdown *countdown.Projection `json:"countdown,omitempty"`

	Stage      string `json:"stage,omitempty"`
	StageStale bool   `json:"stage_stale,omitempty"`

	RiskFactors     []string `json:"risk_factors,omitempty"`
	RequiredActions []string `json:"required_actions,omitempty"`
}

// WorklistItem is one row of the prioritised worklist.
type WorklistItem struct {
	CaseID       string          `json:"case_id"`
	Reference    string          `json:"reference"`
	Category     string          `json:"category"`
	Status       sla.Status      `json:"status"`
	Level        EscalationLevel `json:"level"`
	DeadlineName string          `json:"deadline_name,omitempty"`
	DueAt        time.Time       `json:"due_at,omitempty"`
	Remaining    time.Duration   `json:"remaining"`
}

// ScanReport summarises one compliance sweep over the open caseload.
type ScanReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Total     int `json:"total"`
	Compliant int `json:"compliant"`
	AtRisk    int `json:"at_risk"`
	Breached  int `json:"breached"`
	Excluded  int `json:"excluded"`

	// Items lists deadline-bearing cases most urgent first.
	Items []WorklistItem `json:"items"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

// Service defines the application-level contract for the deadline worklist.
type Service interface {
	// Assess builds the full assessment for one case.
	Assess(ctx context.Context, caseID common.ID) (*Assessment, error)

	// Worklist returns the open deadline-bearing cases, most urgent first.
	Worklist(ctx context.Context) ([]WorklistItem, error)

	// Scan sweeps the open caseload, publishes breach events and records
	// metrics.  Intended to run on a schedule.
	Scan(ctx context.Context) (*ScanReport, error)

	// Countdown renders the nearest-deadline projection for one case.
	Countdown(ctx context.Context, caseID common.ID) (*countdown.Projection, error)

	// Advance records a validated escalation move for one case.
	Advance(ctx context.Context, caseID common.ID, to escalation.Stage) (*casework.Case, error)
}

// Config holds the service tunables.
type Config struct {
	// AssessmentTTL bounds how long a cached assessment may be served.
	AssessmentTTL time.Duration `mapstructure:"assessment_ttl"`

	// BreachDedupTTL bounds how often a still-breached case is re-announced
	// on the event stream.
	BreachDedupTTL time.Duration `mapstructure:"breach_dedup_ttl"`
}

// DefaultConfig returns the standard tunables.
func DefaultConfig() Config {
	return Config{
		AssessmentTTL:  time.Minute,
		BreachDedupTTL: 24 * time.Hour,
	}
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type serviceImpl struct {
	catalogue *deadline.Catalogue
	evaluator *sla.Evaluator
	projector *countdown.Projector
	pipelines *escalation.Registry

	store     CaseStore
	cache     CachePort
	publisher EventPublisher
	metrics   MetricsPort
	logger    Logger

	cfg   Config
	clock func() time.Time
}

// NewService constructs a worklist Service.  cache, publisher and metrics
// may be nil; the service then runs uncached, silent and unmetered.
func NewService(
	catalogue *deadline.Catalogue,
	evaluator *sla.Evaluator,
	projector *countdown.Projector,
	pipelines *escalation.Registry,
	store CaseStore,
	cache CachePort,
	publisher EventPublisher,
	metrics MetricsPort,
	logger Logger,
	cfg Config,
) Service {
	return &serviceImpl{
		catalogue: catalogue,
		evaluator: evaluator,
		projector: projector,
		pipelines: pipelines,
		store:     store,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		clock:     time.Now,
	}
}

// WithClock replaces the wall clock.  Test hook.
func (s *serviceImpl) WithClock(clock func() time.Time) *serviceImpl {
	s.clock = clock
	return s
}

// Assess builds the full assessment for one case, read-through cached.
func (s *serviceImpl) Assess(ctx context.Context, caseID common.ID) (*Assessment, error) {
	key := assessmentKey(caseID)
	if s.cache != nil {
		var cached Assessment
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	c, err := s.store.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	a, err := s.buildAssessment(c, s.clock())
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordAssessment(a.Category, string(a.Status))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, a, s.cfg.AssessmentTTL); err != nil {
			s.logger.Warn("worklist: assessment cache write failed", "case_id", caseID, "error", err)
		}
	}
	return a, nil
}

// Worklist returns the open deadline-bearing cases, most urgent first.
func (s *serviceImpl) Worklist(ctx context.Context) ([]WorklistItem, error) {
	report, err := s.sweep(ctx, false)
	if err != nil {
		return nil, err
	}
	return report.Items, nil
}

// Scan sweeps the open caseload, publishing breach events and recording
// metrics.
func (s *serviceImpl) Scan(ctx context.Context) (*ScanReport, error) {
	report, err := s.sweep(ctx, true)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordScan(report.Compliant, report.AtRisk, report.Breached, report.FinishedAt.Sub(report.StartedAt))
	}
	s.logger.Info("worklist: scan complete",
		"total", report.Total,
		"compliant", report.Compliant,
		"at_risk", report.AtRisk,
		"breached", report.Breached,
		"excluded", report.Excluded,
	)
	return report, nil
}

// Countdown renders the nearest-deadline projection for one case.
func (s *serviceImpl) Countdown(ctx context.Context, caseID common.ID) (*countdown.Projection, error) {
	c, err := s.store.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	proj, err := s.projector.Project(c, s.clock())
	if err != nil {
		return nil, err
	}
	if proj == nil {
		return nil, errors.InvalidParam(fmt.Sprintf("case %s: category %q carries no fixed deadline", caseID, c.Category))
	}
	return proj, nil
}

// Advance records a validated escalation move for one case.
func (s *serviceImpl) Advance(ctx context.Context, caseID common.ID, to escalation.Stage) (*casework.Case, error) {
	c, err := s.store.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	moved, err := s.pipelines.Advance(c, to, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateStage(ctx, caseID, moved.EscalationStage, now); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, assessmentKey(caseID)); err != nil {
			s.logger.Warn("worklist: assessment cache invalidation failed", "case_id", caseID, "error", err)
		}
	}
	s.logger.Info("worklist: stage advanced", "case_id", caseID, "stage", moved.EscalationStage)
	return moved, nil
}

// ---------------------------------------------------------------------------
// Sweep
// ---------------------------------------------------------------------------

func (s *serviceImpl) sweep(ctx context.Context, publish bool) (*ScanReport, error) {
	started := s.clock()
	cases, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	report := &ScanReport{StartedAt: started, Total: len(cases)}
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeTimeout, "worklist: sweep cancelled")
		}
		a, err := s.buildAssessment(c, started)
		if err != nil {
			// A case with corrupt facts must not sink the whole sweep.
			s.logger.Warn("worklist: skipping unassessable case", "case_id", c.ID, "error", err)
			continue
		}

		switch a.Status {
		case sla.StatusWithin:
			report.Compliant++
		case sla.StatusApproaching:
			report.AtRisk++
		case sla.StatusBreached:
			report.Breached++
			if publish {
				s.publishBreach(ctx, c, a)
			}
		default:
			report.Excluded++
			continue
		}

		item := WorklistItem{
			CaseID:    a.CaseID,
			Reference: a.Reference,
			Category:  a.Category,
			Status:    a.Status,
			Level:     a.Level,
		}
		if a.Countdown != nil {
			item.DeadlineName = a.Countdown.DeadlineName
			item.DueAt = a.Countdown.DueAt
			item.Remaining = a.Countdown.Remaining
		}
		report.Items = append(report.Items, item)
	}

	// Most urgent first: higher level, then least time in hand.
	sort.SliceStable(report.Items, func(i, j int) bool {
		if report.Items[i].Level != report.Items[j].Level {
			return report.Items[i].Level > report.Items[j].Level
		}
		return report.Items[i].Remaining < report.Items[j].Remaining
	})

	report.FinishedAt = s.clock()
	return report, nil
}

func (s *serviceImpl) publishBreach(ctx context.Context, c *casework.Case, a *Assessment) {
	if s.publisher == nil {
		return
	}
	var breached *sla.DeadlineStatus
	for i := range a.Deadlines {
		if a.Deadlines[i].Status == sla.StatusBreached {
			breached = &a.Deadlines[i]
			break
		}
	}
	if breached == nil {
		return
	}

	// The event stream is at-least-once; the dedup key only throttles
	// re-announcements of a case that stays breached across sweeps.
	dedupKey := fmt.Sprintf("caseclock:breach:%s:%s", c.ID, breached.Deadline.Name)
	if s.cache != nil {
		var seen bool
		if err := s.cache.Get(ctx, dedupKey, &seen); err == nil {
			return
		}
	}

	event := BreachEvent{
		CaseID:       c.ID.String(),
		Reference:    c.Reference,
		Category:     string(c.Category),
		Classifier:   c.Classifier,
		DeadlineName: breached.Deadline.Name,
		DueAt:        breached.Deadline.DueAt,
		DetectedAt:   a.EvaluatedAt,
	}
	if err := s.publisher.PublishBreach(ctx, event); err != nil {
		s.logger.Error("worklist: breach event publish failed", "case_id", c.ID, "error", err)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordBreachPublished(string(c.Category))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, dedupKey, true, s.cfg.BreachDedupTTL); err != nil {
			s.logger.Warn("worklist: breach dedup write failed", "case_id", c.ID, "error", err)
		}
	}
}

// ---------------------------------------------------------------------------
// Assessment assembly
// ---------------------------------------------------------------------------

func (s *serviceImpl) buildAssessment(c *casework.Case, now time.Time) (*Assessment, error) {
	ds, err := s.catalogue.Derive(c)
	if err != nil {
		return nil, err
	}
	res, err := s.evaluator.Evaluate(c, ds, now)
	if err != nil {
		return nil, err
	}
	proj, err := s.projector.Project(c, now)
	if err != nil {
		return nil, err
	}

	a := &Assessment{
		CaseID:      c.ID.String(),
		Reference:   c.Reference,
		Category:    string(c.Category),
		Classifier:  c.Classifier,
		CreatedAt:   c.CreatedAt,
		CompletedAt: c.CompletedAt,
		Status:      res.Status,
		EvaluatedAt: res.EvaluatedAt,
		Frozen:      res.Frozen,
		Deadlines:   res.PerDeadline,
		Countdown:   proj,
	}
	a.Level = levelFor(res.Status, proj)

	if p, err := s.pipelines.Pipeline(c.Category); err == nil {
		stage := escalation.Stage(c.EscalationStage)
		if stage == "" {
			stage = p.Initial()
		}
		a.Stage = stage.String()
		if stale, err := p.Stale(stage, c.StageEnteredAt, res.EvaluatedAt); err == nil {
			a.StageStale = stale
		} else {
			s.logger.Warn("worklist: unreadable escalation stage", "case_id", c.ID, "stage", c.EscalationStage, "error", err)
		}
	}

	a.RiskFactors = riskFactors(c, res, a.StageStale, a.Stage)
	a.RequiredActions = requiredActions(c, res, a.Stage, s.pipelines)
	return a, nil
}

// levelFor grades attention from the evaluation: breached cases are level 3,
// then the countdown bands step down through 2 and 1.
func levelFor(status sla.Status, proj *countdown.Projection) EscalationLevel {
	switch status {
	case sla.StatusBreached:
		return LevelBreached
	case sla.StatusApproaching:
		return LevelUrgent
	case sla.StatusWithin:
		if proj != nil && proj.Tier == countdown.TierWatch {
			return LevelMonitor
		}
		return LevelNone
	default:
		return LevelNone
	}
}

func riskFactors(c *casework.Case, res *sla.Result, stageStale bool, stage string) []string {
	var out []string
	if c.Category == casework.CategoryHazard {
		out = append(out, "damp and mould hazard subject to statutory timescales")
		if c.Classifier == string(casework.HazardEmergency) {
			out = append(out, "emergency hazard requires remedial action within 24 hours")
		}
	}
	for _, d := range res.PerDeadline {
		switch d.Status {
		case sla.StatusBreached:
			out = append(out, fmt.Sprintf("deadline %q missed on %s", d.Deadline.Name, d.Deadline.DueAt.Format("2 Jan 2006")))
		case sla.StatusApproaching:
			out = append(out, fmt.Sprintf("deadline %q inside the warning window", d.Deadline.Name))
		}
	}
	if stageStale {
		out = append(out, fmt.Sprintf("case has sat at stage %q beyond the expected dwell", stage))
	}
	return out
}

// deadlineActions maps each deadline to the concrete step it obliges.
var deadlineActions = map[string]string{
	deadline.NameTarget:            "complete the repair",
	deadline.NameAcknowledgeBy:     "send the acknowledgement letter",
	deadline.NameRespondBy:         "issue the written response",
	deadline.NameEmergencyActionBy: "take emergency remedial action",
	deadline.NameInvestigateBy:     "carry out the hazard investigation",
	deadline.NameSummariseBy:       "send the written summary of findings",
	deadline.NameSafetyWorksBy:     "begin the safety works",
	deadline.NameFullRepairBy:      "complete the full repair",
}

func requiredActions(c *casework.Case, res *sla.Result, stage string, pipelines *escalation.Registry) []string {
	var out []string
	for _, d := range res.PerDeadline {
		action, ok := deadlineActions[d.Deadline.Name]
		if !ok {
			continue
		}
		if d.Status == sla.StatusBreached {
			out = append(out, fmt.Sprintf("%s (overdue); record the delay and notify the resident", action))
			continue
		}
		out = append(out, fmt.Sprintf("%s by %s", action, d.Deadline.DueAt.Format("2 Jan 2006 15:04")))
	}

	if p, err := pipelines.Pipeline(c.Category); err == nil && stage != "" && !c.Completed() {
		if next, err := p.Next(escalation.Stage(stage)); err == nil {
			out = append(out, fmt.Sprintf("review whether to progress from %q to %q", stage, next))
		}
	}
	return out
}

func assessmentKey(caseID common.ID) string {
	return fmt.Sprintf("caseclock:assessment:%s", caseID)
}
