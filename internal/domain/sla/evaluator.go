// Package sla classifies a case's timeliness against its derived deadlines:
// within, approaching, or breached.
//
// Status is derived, never stored.  Every evaluation is a pure function of
// (deadlines, now, completedAt): calling it twice with the same arguments
// returns the same result, which is what makes caching and testing
// straightforward.  A breached legal deadline must never silently read as
// on track, so any ambiguity here resolves toward the more severe status.
package sla

import (
	"time"

	"github.com/socialhomes/CaseClock/internal/domain/calendar"
	"github.com/socialhomes/CaseClock/internal/domain/casework"
	"github.com/socialhomes/CaseClock/internal/domain/deadline"
	"github.com/socialhomes/CaseClock/pkg/errors"
)

// Status is the SLA classification of a case against its nearest unmet
// deadline.
type Status string

const (
	// StatusWithin: comfortably inside the deadline window.
	StatusWithin Status = "within"

	// StatusApproaching: inside the window but past the approaching
	// threshold; action needed soon.
	StatusApproaching Status = "approaching"

	// StatusBreached: the deadline has passed.
	StatusBreached Status = "breached"

	// StatusNotApplicable: the category carries no fixed deadline (asb,
	// financial, enquiry) and is excluded from SLA classification.
	StatusNotApplicable Status = "not-applicable"
)

func (s Status) String() string { return string(s) }

// ─────────────────────────────────────────────────────────────────────────────
// Thresholds
// ─────────────────────────────────────────────────────────────────────────────

// Thresholds carries the approaching/watch boundaries.  The dual convention
// is deliberate and carried over from the source rules: repairs use a
// fraction of their total target window, while complaint and hazard windows
// are short enough that a percentage would trigger too late, so they use an
// absolute working-day threshold.  These are configuration, not constants.
type Thresholds struct {
	// RepairWindowFraction of the repair target window that counts as
	// approaching (e.g. 0.20 of a 28-day routine target ≈ 5.6 days).
	RepairWindowFraction float64 `mapstructure:"repair_window_fraction"`

	// ApproachingWorkingDays is the absolute threshold for complaint and
	// hazard deadlines.
	ApproachingWorkingDays int `mapstructure:"approaching_working_days"`

	// WatchWorkingDays is the wider advisory boundary used by countdown
	// tiering; within but closer than this reads as "watch".
	WatchWorkingDays int `mapstructure:"watch_working_days"`
}

// DefaultThresholds returns the source system's boundaries: 20% of the
// repair window, 2 working days for complaints and hazards, watch at 5.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RepairWindowFraction:   0.20,
		ApproachingWorkingDays: 2,
		WatchWorkingDays:       5,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Result
// ─────────────────────────────────────────────────────────────────────────────

// DeadlineStatus pairs one deadline with its individual classification.
type DeadlineStatus struct {
	Deadline deadline.Deadline `json:"deadline"`
	Status   Status            `json:"status"`
}

// Result is the full evaluation of a case at one instant.
type Result struct {
	// Status is the case-level classification: the status of the earliest
	// unmet deadline, so a later-stage deadline never masks an already
	// breached earlier one.
	Status Status `json:"status"`

	// EvaluatedAt is the instant used: completedAt when the case is frozen,
	// otherwise the supplied now.
	EvaluatedAt time.Time `json:"evaluated_at"`

	// Frozen is true when the case is completed and the result is final.
	Frozen bool `json:"frozen"`

	// Nearest is the deadline that governs the countdown display: the
	// earliest deadline not yet passed at EvaluatedAt, or the earliest
	// breached one when all have passed.  Nil when the category carries no
	// deadlines.
	Nearest *deadline.Deadline `json:"nearest,omitempty"`

	// Remaining is the signed time from EvaluatedAt to Nearest.DueAt;
	// negative once passed.  Zero when Nearest is nil.
	Remaining time.Duration `json:"remaining"`

	// PerDeadline lists every deadline with its own classification, for
	// timeline renderings.
	PerDeadline []DeadlineStatus `json:"per_deadline,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Evaluator
// ─────────────────────────────────────────────────────────────────────────────

// Evaluator classifies cases against their deadlines.  Stateless and safe
// for concurrent use.
type Evaluator struct {
	thresholds Thresholds
	catalogue  *deadline.Catalogue
}

// NewEvaluator constructs an Evaluator.  The catalogue supplies repair
// window lengths for the fraction-of-window threshold.
func NewEvaluator(thresholds Thresholds, catalogue *deadline.Catalogue) *Evaluator {
	return &Evaluator{thresholds: thresholds, catalogue: catalogue}
}

// Thresholds returns the evaluator's configured thresholds.
func (e *Evaluator) Thresholds() Thresholds { return e.thresholds }

// Evaluate classifies c against ds at now.  If the case is completed, the
// completion instant replaces now for the whole calculation and the result
// is flagged Frozen: re-evaluating later can never change it.
//
// For multi-deadline cases the case-level status is that of the earliest
// unmet deadline.
func (e *Evaluator) Evaluate(c *casework.Case, ds []deadline.Deadline, now time.Time) (*Result, error) {
	if c == nil {
		return nil, errors.InvalidParam("case must not be nil")
	}
	if now.IsZero() {
		return nil, errors.InvalidDate("evaluation instant is required")
	}

	at := c.EvaluationInstant(now)
	res := &Result{
		Status:      StatusNotApplicable,
		EvaluatedAt: at,
		Frozen:      c.Completed(),
	}
	if len(ds) == 0 {
		return res, nil
	}

	res.PerDeadline = make([]DeadlineStatus, 0, len(ds))
	for _, d := range ds {
		st, err := e.classify(c, d, at)
		if err != nil {
			return nil, err
		}
		res.PerDeadline = append(res.PerDeadline, DeadlineStatus{Deadline: d, Status: st})
	}

	// Deadlines arrive ordered earliest-first from the catalogue; the
	// earliest unmet one governs.
	res.Status = res.PerDeadline[0].Status

	nearest := ds[0]
	for _, d := range ds {
		if d.DueAt.After(at) {
			nearest = d
			break
		}
	}
	res.Nearest = &nearest
	res.Remaining = nearest.DueAt.Sub(at)

	return res, nil
}

// classify returns the status of a single deadline at instant at.
func (e *Evaluator) classify(c *casework.Case, d deadline.Deadline, at time.Time) (Status, error) {
	remaining := d.DueAt.Sub(at)
	if remaining < 0 {
		return StatusBreached, nil
	}
	approaching, err := e.withinApproachingThreshold(c, d, at, remaining)
	if err != nil {
		return "", err
	}
	if approaching {
		return StatusApproaching, nil
	}
	return StatusWithin, nil
}

// withinApproachingThreshold applies the category's convention: fraction of
// window for repairs, absolute working days otherwise.
func (e *Evaluator) withinApproachingThreshold(c *casework.Case, d deadline.Deadline, at time.Time, remaining time.Duration) (bool, error) {
	if c.Category == casework.CategoryRepair {
		window, err := e.catalogue.RepairWindowDays(casework.RepairPriority(c.Classifier))
		if err != nil {
			return false, err
		}
		threshold := time.Duration(float64(window) * e.thresholds.RepairWindowFraction * 24 * float64(time.Hour))
		return remaining <= threshold, nil
	}
	if d.UsesWorkingDays {
		return calendar.WorkingDaysBetween(at, d.DueAt) <= e.thresholds.ApproachingWorkingDays, nil
	}
	// Calendar-measured hazard deadlines use the absolute threshold as a
	// plain duration.
	threshold := time.Duration(e.thresholds.ApproachingWorkingDays) * 24 * time.Hour
	return remaining <= threshold, nil
}

// WatchBoundary reports whether a deadline with the given remaining time
// sits inside the advisory "watch" band used by countdown tiering.  The
// convention mirrors withinApproachingThreshold with the wider boundary.
func (e *Evaluator) WatchBoundary(c *casework.Case, d deadline.Deadline, at time.Time) (bool, error) {
	if c.Category == casework.CategoryRepair {
		window, err := e.catalogue.RepairWindowDays(casework.RepairPriority(c.Classifier))
		if err != nil {
			return false, err
		}
		// Watch opens at twice the approaching fraction of the window.
		threshold := time.Duration(2 * float64(window) * e.thresholds.RepairWindowFraction * 24 * float64(time.Hour))
		return d.DueAt.Sub(at) <= threshold, nil
	}
	if d.UsesWorkingDays {
		return calendar.WorkingDaysBetween(at, d.DueAt) <= e.thresholds.WatchWorkingDays, nil
	}
	threshold := time.Duration(e.thresholds.WatchWorkingDays) * 24 * time.Hour
	return d.DueAt.Sub(at) <= threshold, nil
}
