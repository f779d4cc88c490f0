// Package countdown renders a case's nearest deadline as a human-facing
// projection: remaining days, hours and minutes, the working days left, and
// an urgency tier for display.
//
// The tier is derived from the same evaluation as the SLA status, so the
// two surfaces can never disagree: a case reads overdue exactly when the
// evaluator reads it breached.
package countdown

import (
	"context"
	"time"

	"github.com/socialhomes/CaseClock/internal/domain/calendar"
	"github.com/socialhomes/CaseClock/internal/domain/casework"
	"github.com/socialhomes/CaseClock/internal/domain/deadline"
	"github.com/socialhomes/CaseClock/internal/domain/sla"
	"github.com/socialhomes/CaseClock/pkg/errors"
)

// Tier is the display urgency band of a countdown.
type Tier string

const (
	TierPlenty  Tier = "plenty"
	TierWatch   Tier = "watch"
	TierUrgent  Tier = "urgent"
	TierOverdue Tier = "overdue"
)

func (t Tier) String() string { return string(t) }

// Projection is one rendering of a case's countdown at an instant.
type Projection struct {
	CaseID       string    `json:"case_id"`
	DeadlineName string    `json:"deadline_name"`
	DueAt        time.Time `json:"due_at"`
	ProjectedAt  time.Time `json:"projected_at"`

	// Remaining is signed: negative once the displayed deadline has
	// passed.  Days, Hours and Minutes decompose its magnitude.
	Remaining time.Duration `json:"remaining"`
	Days      int           `json:"days"`
	Hours     int           `json:"hours"`
	Minutes   int           `json:"minutes"`

	// WorkingDaysLeft counts Monday to Friday between the projection
	// instant and the displayed deadline; negative once passed.
	WorkingDaysLeft int `json:"working_days_left"`

	Tier   Tier `json:"tier"`
	Frozen bool `json:"frozen"`
}

// Projector builds countdown projections.  Stateless apart from the clock,
// which is injectable for tests; safe for concurrent use.
type Projector struct {
	catalogue *deadline.Catalogue
	evaluator *sla.Evaluator
	clock     func() time.Time
}

// NewProjector constructs a Projector over the given catalogue and
// evaluator.
func NewProjector(catalogue *deadline.Catalogue, evaluator *sla.Evaluator) *Projector {
	return &Projector{catalogue: catalogue, evaluator: evaluator, clock: time.Now}
}

// WithClock replaces the wall clock used by Stream.  Test hook.
func (p *Projector) WithClock(clock func() time.Time) *Projector {
	p.clock = clock
	return p
}

// Project renders c's countdown at now.  Returns (nil, nil) for categories
// that carry no fixed deadline; their progress is read from the escalation
// pipeline instead.
func (p *Projector) Project(c *casework.Case, now time.Time) (*Projection, error) {
	if c == nil {
		return nil, errors.InvalidParam("case must not be nil")
	}
	ds, err := p.catalogue.Derive(c)
	if err != nil {
		return nil, err
	}
	res, err := p.evaluator.Evaluate(c, ds, now)
	if err != nil {
		return nil, err
	}
	if res.Nearest == nil {
		return nil, nil
	}

	proj := &Projection{
		CaseID:          c.ID.String(),
		DeadlineName:    res.Nearest.Name,
		DueAt:           res.Nearest.DueAt,
		ProjectedAt:     res.EvaluatedAt,
		Remaining:       res.Remaining,
		WorkingDaysLeft: calendar.WorkingDaysBetween(res.EvaluatedAt, res.Nearest.DueAt),
		Frozen:          res.Frozen,
	}
	proj.Days, proj.Hours, proj.Minutes = splitDuration(res.Remaining)
	proj.Tier, err = p.tier(c, res)
	if err != nil {
		return nil, err
	}
	return proj, nil
}

// tier maps the evaluation onto a display band.  Overdue and urgent follow
// the evaluator's breached and approaching verdicts one-for-one; the
// within band splits into watch and plenty on the wider advisory boundary.
func (p *Projector) tier(c *casework.Case, res *sla.Result) (Tier, error) {
	switch res.Status {
	case sla.StatusBreached:
		return TierOverdue, nil
	case sla.StatusApproaching:
		return TierUrgent, nil
	}
	inWatch, err := p.evaluator.WatchBoundary(c, *res.Nearest, res.EvaluatedAt)
	if err != nil {
		return "", err
	}
	if inWatch {
		return TierWatch, nil
	}
	return TierPlenty, nil
}

// splitDuration decomposes |d| into whole days, hours and minutes.
func splitDuration(d time.Duration) (days, hours, minutes int) {
	if d < 0 {
		d = -d
	}
	days = int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours = int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes = int(d / time.Minute)
	return days, hours, minutes
}

// Stream emits a fresh projection for c immediately and then on every tick
// until ctx is cancelled.  The channel closes on cancellation.  Projections
// for a completed case stop changing; streaming one is permitted but
// pointless, so callers usually cancel once Frozen is observed.
func (p *Projector) Stream(ctx context.Context, c *casework.Case, interval time.Duration) (<-chan Projection, error) {
	if interval <= 0 {
		return nil, errors.InvalidParam("stream interval must be positive")
	}
	// Validate the case once up front so the caller gets a synchronous
	// error instead of a silently empty channel.
	first, err := p.Project(c, p.clock())
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, errors.InvalidParam("category carries no fixed deadline to stream")
	}

	out := make(chan Projection, 1)
	out <- *first

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				proj, err := p.Project(c, p.clock())
				if err != nil || proj == nil {
					return
				}
				select {
				case out <- *proj:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
