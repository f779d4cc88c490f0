// Package deadline derives the ordered set of named statutory deadlines for a
// case from its category, classifier, and creation instant.
//
// Every deadline is computed from the case's CreatedAt, never from "now", so
// deriving twice for the same case always yields identical results.  The day
// counts live in a single Rules table rather than scattered conditionals; the
// evaluator and presentation layers consume the table through Derive only.
package deadline

import (
	"fmt"
	"time"

	"github.com/socialhomes/CaseClock/internal/domain/calendar"
	"github.com/socialhomes/CaseClock/internal/domain/casework"
	"github.com/socialhomes/CaseClock/pkg/errors"
)

// Canonical deadline names.  Consumers key countdown labels and audit entries
// off these values; they are stable API.
const (
	NameTarget            = "target"
	NameAcknowledgeBy     = "acknowledge-by"
	NameRespondBy         = "respond-by"
	NameEmergencyActionBy = "emergency-action-by"
	NameInvestigateBy     = "investigate-by"
	NameSummariseBy       = "summarise-by"
	NameSafetyWorksBy     = "safety-works-by"
	NameFullRepairBy      = "full-repair-by"
)

// Deadline is a named instant derived from a case, against which SLA status
// is evaluated.  Immutable once derived.
type Deadline struct {
	// Name identifies the obligation (e.g. "investigate-by").
	Name string `json:"name"`

	// DueAt is the instant the obligation falls due.
	DueAt time.Time `json:"due_at"`

	// UsesWorkingDays records whether the window was measured in working
	// days, so countdown displays can render the remaining time in the same
	// unit the regulation uses.
	UsesWorkingDays bool `json:"uses_working_days"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Rules — the single source of truth for every day count
// ─────────────────────────────────────────────────────────────────────────────

// Rules carries every day count the catalogue applies.  It is read-only,
// process-wide data: construct once (usually from configuration), share
// freely across goroutines.
type Rules struct {
	// RepairTargetDays maps repair priority to its calendar-day target window.
	RepairTargetDays map[casework.RepairPriority]int `mapstructure:"repair_target_days"`

	// ComplaintAcknowledgeWorkingDays is the acknowledgement window for both
	// complaint stages.
	ComplaintAcknowledgeWorkingDays int `mapstructure:"complaint_acknowledge_working_days"`

	// ComplaintRespondWorkingDays maps complaint stage to its response window.
	ComplaintRespondWorkingDays map[casework.ComplaintStage]int `mapstructure:"complaint_respond_working_days"`

	// HazardEmergencyActionWindow is the single window within which every
	// emergency-hazard action must complete.  The emergency track is
	// single-tier: all remediation shares this one deadline.
	HazardEmergencyActionWindow time.Duration `mapstructure:"hazard_emergency_action_window"`

	// Significant-hazard windows, all measured from CreatedAt (not chained
	// from the prior deadline, to avoid compounding rounding drift).
	HazardInvestigateWorkingDays int `mapstructure:"hazard_investigate_working_days"`
	HazardSummariseWorkingDays   int `mapstructure:"hazard_summarise_working_days"`
	HazardSafetyWorksWorkingDays int `mapstructure:"hazard_safety_works_working_days"`
	HazardFullRepairCalendarDays int `mapstructure:"hazard_full_repair_calendar_days"`
}

// DefaultRules returns the statutory day counts: repair targets of 1/5/28/90
// calendar days by priority; complaint acknowledgement within 5 working days
// and response within 10 (stage 1) or 20 (stage 2); emergency hazards made
// safe within 24 hours; significant hazards investigated within 10 working
// days, summarised within 13, safety works within 18, and full repair within
// 12 calendar weeks.
func DefaultRules() Rules {
	return Rules{
		RepairTargetDays: map[casework.RepairPriority]int{
			casework.PriorityEmergency: 1,
			casework.PriorityUrgent:    5,
			casework.PriorityRoutine:   28,
			casework.PriorityPlanned:   90,
		},
		ComplaintAcknowledgeWorkingDays: 5,
		ComplaintRespondWorkingDays: map[casework.ComplaintStage]int{
			casework.ComplaintStage1: 10,
			casework.ComplaintStage2: 20,
		},
		HazardEmergencyActionWindow:  24 * time.Hour,
		HazardInvestigateWorkingDays: 10,
		HazardSummariseWorkingDays:   13,
		HazardSafetyWorksWorkingDays: 18,
		HazardFullRepairCalendarDays: 84, // 12 calendar weeks
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Catalogue
// ─────────────────────────────────────────────────────────────────────────────

// Catalogue derives deadlines from cases according to its rule table.
type Catalogue struct {
	rules Rules
}

// NewCatalogue constructs a Catalogue over the given rules.
func NewCatalogue(rules Rules) *Catalogue {
	return &Catalogue{rules: rules}
}

// Default returns a Catalogue over DefaultRules.
func Default() *Catalogue {
	return NewCatalogue(DefaultRules())
}

// Rules returns the catalogue's rule table.
func (cat *Catalogue) Rules() Rules {
	return cat.rules
}

// Derive returns the ordered deadlines for c, earliest first.  Pure and
// deterministic: same case in, same deadlines out.  Categories with no fixed
// deadline (asb, financial, enquiry) return an empty list; they are driven by
// their escalation pipeline or carry no statutory window, and are excluded
// from SLA status classification.
//
// An unrecognised category or classifier is an error, never a default
// deadline.
func (cat *Catalogue) Derive(c *casework.Case) ([]Deadline, error) {
	if c == nil {
		return nil, errors.InvalidParam("case must not be nil")
	}
	if c.CreatedAt.IsZero() {
		return nil, errors.InvalidDate("createdAt is required").
			WithDetail("case=" + c.ID.String())
	}

	switch c.Category {
	case casework.CategoryRepair:
		return cat.repairDeadlines(c)
	case casework.CategoryComplaint:
		return cat.complaintDeadlines(c)
	case casework.CategoryHazard:
		return cat.hazardDeadlines(c)
	case casework.CategoryASB, casework.CategoryFinancial, casework.CategoryEnquiry:
		return nil, nil
	default:
		return nil, errors.UnknownCategory(
			fmt.Sprintf("no rule set for category %q", c.Category)).
			WithDetail("case=" + c.ID.String())
	}
}

// RepairWindowDays returns the total calendar-day target window for a repair
// priority.  The SLA evaluator needs the window to apply its
// fraction-of-window approaching threshold.
func (cat *Catalogue) RepairWindowDays(priority casework.RepairPriority) (int, error) {
	days, ok := cat.rules.RepairTargetDays[priority]
	if !ok {
		return 0, errors.UnknownClassifier(
			fmt.Sprintf("no repair target for priority %q", priority))
	}
	return days, nil
}

func (cat *Catalogue) repairDeadlines(c *casework.Case) ([]Deadline, error) {
	days, ok := cat.rules.RepairTargetDays[casework.RepairPriority(c.Classifier)]
	if !ok {
		return nil, errors.UnknownClassifier(
			fmt.Sprintf("no repair target for priority %q", c.Classifier)).
			WithDetail("case=" + c.ID.String())
	}
	return []Deadline{
		{Name: NameTarget, DueAt: calendar.AddDays(c.CreatedAt, days)},
	}, nil
}

func (cat *Catalogue) complaintDeadlines(c *casework.Case) ([]Deadline, error) {
	respondDays, ok := cat.rules.ComplaintRespondWorkingDays[casework.ComplaintStage(c.Classifier)]
	if !ok {
		return nil, errors.UnknownClassifier(
			fmt.Sprintf("no response window for complaint stage %q", c.Classifier)).
			WithDetail("case=" + c.ID.String())
	}
	return []Deadline{
		{
			Name:            NameAcknowledgeBy,
			DueAt:           calendar.AddWorkingDays(c.CreatedAt, cat.rules.ComplaintAcknowledgeWorkingDays),
			UsesWorkingDays: true,
		},
		{
			Name:            NameRespondBy,
			DueAt:           calendar.AddWorkingDays(c.CreatedAt, respondDays),
			UsesWorkingDays: true,
		},
	}, nil
}

func (cat *Catalogue) hazardDeadlines(c *casework.Case) ([]Deadline, error) {
	switch casework.HazardClassification(c.Classifier) {
	case casework.HazardEmergency:
		// Single-tier by design: every emergency action shares the one
		// 24-hour window, so there is exactly one deadline regardless of
		// calendar/working-day distinctions.
		return []Deadline{
			{Name: NameEmergencyActionBy, DueAt: c.CreatedAt.Add(cat.rules.HazardEmergencyActionWindow)},
		}, nil
	case casework.HazardSignificant:
		return []Deadline{
			{
				Name:            NameInvestigateBy,
				DueAt:           calendar.AddWorkingDays(c.CreatedAt, cat.rules.HazardInvestigateWorkingDays),
				UsesWorkingDays: true,
			},
			{
				Name:            NameSummariseBy,
				DueAt:           calendar.AddWorkingDays(c.CreatedAt, cat.rules.HazardSummariseWorkingDays),
				UsesWorkingDays: true,
			},
			{
				Name:            NameSafetyWorksBy,
				DueAt:           calendar.AddWorkingDays(c.CreatedAt, cat.rules.HazardSafetyWorksWorkingDays),
				UsesWorkingDays: true,
			},
			{
				Name:  NameFullRepairBy,
				DueAt: calendar.AddDays(c.CreatedAt, cat.rules.HazardFullRepairCalendarDays),
			},
		}, nil
	default:
		return nil, errors.UnknownClassifier(
			fmt.Sprintf("no hazard timeline for classification %q", c.Classifier)).
			WithDetail("case=" + c.ID.String())
	}
}
