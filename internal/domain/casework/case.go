// Package casework defines the case projection consumed by the deadline and
// escalation engine, together with the category and classifier enumerations
// that select which rule set applies.
//
// The engine does not decide whether a case is a hazard or what priority a
// repair has; those classifications arrive from upstream and are validated
// here, never defaulted.
package casework

import (
	"fmt"
	"time"

	"github.com/socialhomes/CaseClock/pkg/errors"
	"github.com/socialhomes/CaseClock/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Category enumeration
// ─────────────────────────────────────────────────────────────────────────────

// Category identifies the kind of case being tracked.
type Category string

const (
	CategoryRepair    Category = "repair"
	CategoryComplaint Category = "complaint"
	CategoryHazard    Category = "hazard" // damp/mould
	CategoryASB       Category = "asb"    // anti-social behaviour
	CategoryFinancial Category = "financial"
	CategoryEnquiry   Category = "enquiry"
)

// Categories is the canonical set of valid categories.
var Categories = []Category{
	CategoryRepair, CategoryComplaint, CategoryHazard,
	CategoryASB, CategoryFinancial, CategoryEnquiry,
}

// Valid reports whether c is a recognised category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// ─────────────────────────────────────────────────────────────────────────────
// Classifier enumerations
// ─────────────────────────────────────────────────────────────────────────────

// RepairPriority drives the repair target window.
type RepairPriority string

const (
	PriorityEmergency RepairPriority = "emergency"
	PriorityUrgent    RepairPriority = "urgent"
	PriorityRoutine   RepairPriority = "routine"
	PriorityPlanned   RepairPriority = "planned"
)

// HazardClassification is the severity tag for a damp/mould case.
type HazardClassification string

const (
	HazardEmergency   HazardClassification = "emergency"
	HazardSignificant HazardClassification = "significant"
)

// ComplaintStage is the formal complaint-procedure stage (1 or 2).
type ComplaintStage string

const (
	ComplaintStage1 ComplaintStage = "1"
	ComplaintStage2 ComplaintStage = "2"
)

// ASBSeverity categorises an anti-social-behaviour report.
type ASBSeverity string

const (
	SeverityCat1 ASBSeverity = "cat-1"
	SeverityCat2 ASBSeverity = "cat-2"
	SeverityCat3 ASBSeverity = "cat-3"
)

// validClassifiers lists, per category, the classifier values with a matching
// rule.  Categories absent from the map accept any classifier including an
// empty one (their rules do not branch on it).
var validClassifiers = map[Category][]string{
	CategoryRepair:    {string(PriorityEmergency), string(PriorityUrgent), string(PriorityRoutine), string(PriorityPlanned)},
	CategoryComplaint: {string(ComplaintStage1), string(ComplaintStage2)},
	CategoryHazard:    {string(HazardEmergency), string(HazardSignificant)},
	CategoryASB:       {string(SeverityCat1), string(SeverityCat2), string(SeverityCat3)},
}

// ─────────────────────────────────────────────────────────────────────────────
// Case — the engine's input projection
// ─────────────────────────────────────────────────────────────────────────────

// Case is the projection of a case record that the engine evaluates.  It is
// supplied by the external case store; the engine never mutates or persists
// it.
type Case struct {
	// ID uniquely identifies the case in the external store.
	ID common.ID `json:"id"`

	// Reference is the human-facing case reference (e.g. "CMP-2026-00012").
	Reference string `json:"reference"`

	// Category selects which deadline rule set and escalation pipeline apply.
	Category Category `json:"category"`

	// Classifier is the category-specific discriminator: repair priority,
	// hazard classification, complaint stage, or ASB severity.
	Classifier string `json:"classifier"`

	// CreatedAt is the clock origin for every deadline.  Immutable once set;
	// if the classifier changes, deadlines are recomputed from this instant,
	// never reset to "now".
	CreatedAt time.Time `json:"created_at"`

	// CompletedAt, once set, freezes the case: SLA status is evaluated
	// retrospectively against this instant rather than "now".
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// EscalationStage is the persisted, officer-controlled pipeline position.
	// Only meaningful for categories with an escalation pipeline; empty
	// otherwise.  Persisted rather than derived because advancement is
	// triggered by caseworker actions, not only by elapsed time.
	EscalationStage string `json:"escalation_stage,omitempty"`

	// StageEnteredAt records when the case entered its current escalation
	// stage, feeding the advisory staleness signal.  Zero when unknown.
	StageEnteredAt time.Time `json:"stage_entered_at,omitempty"`
}

// New validates the supplied attributes and returns a Case.
//
// Business rules:
//   - Category must be recognised (UnknownCategory otherwise).
//   - Classifier must carry a rule for the category (UnknownClassifier).
//   - CreatedAt must be set (InvalidDate) — a missing creation instant would
//     otherwise make every deadline silently wrong.
func New(id common.ID, reference string, category Category, classifier string, createdAt time.Time) (*Case, error) {
	if !category.Valid() {
		return nil, errors.UnknownCategory(fmt.Sprintf("no rule set for category %q", category))
	}
	if err := ValidateClassifier(category, classifier); err != nil {
		return nil, err
	}
	if createdAt.IsZero() {
		return nil, errors.InvalidDate("createdAt is required")
	}
	return &Case{
		ID:         id,
		Reference:  reference,
		Category:   category,
		Classifier: classifier,
		CreatedAt:  createdAt,
	}, nil
}

// ValidateClassifier checks that classifier has a matching rule for category.
func ValidateClassifier(category Category, classifier string) error {
	allowed, constrained := validClassifiers[category]
	if !constrained {
		return nil
	}
	for _, a := range allowed {
		if classifier == a {
			return nil
		}
	}
	return errors.UnknownClassifier(
		fmt.Sprintf("classifier %q has no rule for category %q", classifier, category))
}

// Completed reports whether the case has been closed out.
func (c *Case) Completed() bool {
	return c.CompletedAt != nil && !c.CompletedAt.IsZero()
}

// EvaluationInstant returns the instant SLA status should be evaluated
// against: CompletedAt once set (the case is frozen), otherwise now.
func (c *Case) EvaluationInstant(now time.Time) time.Time {
	if c.Completed() {
		return *c.CompletedAt
	}
	return now
}

// Reclassify returns a copy of the case with a new classifier, validated
// against the category.  CreatedAt is untouched: deadlines derived from the
// copy are computed from the original clock origin, which is the property
// that protects against silent deadline drift on re-prioritisation.
func (c *Case) Reclassify(classifier string) (*Case, error) {
	if err := ValidateClassifier(c.Category, classifier); err != nil {
		return nil, err
	}
	clone := *c
	clone.Classifier = classifier
	return &clone, nil
}
