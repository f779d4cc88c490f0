// Package escalation models the staged enforcement pipelines a case moves
// through: anti-social behaviour from first warning to possession, formal
// complaints through the two-stage procedure, and rent arrears through the
// pre-action protocol.
//
// Stage order is a legal sequence, not a suggestion.  Movement is strictly
// monotonic: one step forward at a time, with closure reachable from any
// stage.  Skipping a stage or moving backwards is rejected rather than
// clamped, because a silently corrected stage would misstate the legal
// position of the case.
package escalation

import (
	"fmt"
	"time"

	"github.com/socialhomes/CaseClock/internal/domain/casework"
	"github.com/socialhomes/CaseClock/pkg/errors"
)

// Stage is one step of an escalation pipeline.
type Stage string

func (s Stage) String() string { return string(s) }

// Anti-social behaviour stages, in escalation order.
const (
	StageWarning    Stage = "warning"
	StageABC        Stage = "abc" // acceptable behaviour contract
	StageCPW        Stage = "cpw" // community protection warning
	StageCPN        Stage = "cpn" // community protection notice
	StageInjunction Stage = "injunction"
	StagePossession Stage = "possession"
	StageClosure    Stage = "closure"
)

// Complaint procedure stages.
const (
	StageComplaintStage1 Stage = "stage-1"
	StageComplaintStage2 Stage = "stage-2"
	StageComplaintClosed Stage = "closed"
)

// Rent-arrears stages, following the pre-action protocol for social
// landlords.
const (
	StageArrearsPreAction  Stage = "pre-action"
	StageArrearsNOSP       Stage = "nosp" // notice of seeking possession
	StageArrearsCourtClaim Stage = "court-claim"
	StageArrearsPossession Stage = "possession-order"
)

// ─────────────────────────────────────────────────────────────────────────────
// Pipeline
// ─────────────────────────────────────────────────────────────────────────────

// Pipeline is an ordered stage sequence for one case category.  The final
// stage is terminal and reachable from any earlier stage.
type Pipeline struct {
	Category casework.Category
	Stages   []Stage

	// ExpectedDwell is the advisory time a case is expected to sit at each
	// stage before it reads as stale.  Stages absent from the map use
	// DefaultDwell.  Staleness never blocks a transition.
	ExpectedDwell map[Stage]time.Duration
	DefaultDwell  time.Duration

	index map[Stage]int
}

// NewPipeline builds a pipeline over the given stages.  At least two stages
// are required: an initial one and a terminal one.
func NewPipeline(category casework.Category, stages []Stage) *Pipeline {
	p := &Pipeline{
		Category:     category,
		Stages:       stages,
		DefaultDwell: 28 * 24 * time.Hour,
		index:        make(map[Stage]int, len(stages)),
	}
	for i, s := range stages {
		p.index[s] = i
	}
	return p
}

// Initial returns the pipeline's entry stage.
func (p *Pipeline) Initial() Stage { return p.Stages[0] }

// Terminal returns the pipeline's closing stage.
func (p *Pipeline) Terminal() Stage { return p.Stages[len(p.Stages)-1] }

// Index returns the zero-based position of s, or an ErrCodeUnknownStage
// error when s is not part of this pipeline.  Unknown stages are never
// clamped to a neighbour.
func (p *Pipeline) Index(s Stage) (int, error) {
	i, ok := p.index[s]
	if !ok {
		return 0, errors.UnknownStage(fmt.Sprintf("stage %q is not part of the %s pipeline", s, p.Category))
	}
	return i, nil
}

// Contains reports whether s is a stage of this pipeline.
func (p *Pipeline) Contains(s Stage) bool {
	_, ok := p.index[s]
	return ok
}

// Advance validates the transition from → to.  Permitted moves are the
// single next stage and the terminal stage; everything else returns an
// ErrCodeInvalidTransition error naming both stages.
func (p *Pipeline) Advance(from, to Stage) error {
	fi, err := p.Index(from)
	if err != nil {
		return err
	}
	ti, err := p.Index(to)
	if err != nil {
		return err
	}
	if from == p.Terminal() {
		return errors.InvalidTransition(fmt.Sprintf("%s pipeline: %q is terminal, no further movement", p.Category, from))
	}
	if to == p.Terminal() {
		return nil
	}
	if ti != fi+1 {
		return errors.InvalidTransition(fmt.Sprintf("%s pipeline: cannot move from %q to %q", p.Category, from, to))
	}
	return nil
}

// Next returns the stage following from, or an error when from is terminal
// or unknown.
func (p *Pipeline) Next(from Stage) (Stage, error) {
	fi, err := p.Index(from)
	if err != nil {
		return "", err
	}
	if from == p.Terminal() {
		return "", errors.InvalidTransition(fmt.Sprintf("%s pipeline: %q is terminal, no further movement", p.Category, from))
	}
	return p.Stages[fi+1], nil
}

// StagesSoFar returns the stages traversed up to and including current, in
// order.  A case that went straight to the terminal stage reports only its
// initial and terminal stages when nothing between was recorded; callers
// with richer stage history should prefer that history.
func (p *Pipeline) StagesSoFar(current Stage) ([]Stage, error) {
	ci, err := p.Index(current)
	if err != nil {
		return nil, err
	}
	out := make([]Stage, ci+1)
	copy(out, p.Stages[:ci+1])
	return out, nil
}

// Stale reports whether a case has sat at stage longer than the expected
// dwell.  Advisory only: a stale stage is a prompt to review, not a breach.
func (p *Pipeline) Stale(stage Stage, enteredAt, now time.Time) (bool, error) {
	if _, err := p.Index(stage); err != nil {
		return false, err
	}
	if stage == p.Terminal() || enteredAt.IsZero() {
		return false, nil
	}
	dwell := p.DefaultDwell
	if d, ok := p.ExpectedDwell[stage]; ok {
		dwell = d
	}
	return now.Sub(enteredAt) > dwell, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────────────────────────────────────

// Registry resolves the pipeline for a category.
type Registry struct {
	pipelines map[casework.Category]*Pipeline
}

// NewRegistry builds a registry over the given pipelines.
func NewRegistry(pipelines ...*Pipeline) *Registry {
	r := &Registry{pipelines: make(map[casework.Category]*Pipeline, len(pipelines))}
	for _, p := range pipelines {
		r.pipelines[p.Category] = p
	}
	return r
}

// DefaultRegistry returns the three standard pipelines.
func DefaultRegistry() *Registry {
	asb := NewPipeline(casework.CategoryASB, []Stage{
		StageWarning, StageABC, StageCPW, StageCPN,
		StageInjunction, StagePossession, StageClosure,
	})
	complaint := NewPipeline(casework.CategoryComplaint, []Stage{
		StageComplaintStage1, StageComplaintStage2, StageComplaintClosed,
	})
	arrears := NewPipeline(casework.CategoryFinancial, []Stage{
		StageArrearsPreAction, StageArrearsNOSP, StageArrearsCourtClaim,
		StageArrearsPossession, StageClosure,
	})
	return NewRegistry(asb, complaint, arrears)
}

// Pipeline returns the pipeline for category, or an ErrCodeNoPipeline error
// for categories whose progress is tracked by deadlines rather than stages.
func (r *Registry) Pipeline(category casework.Category) (*Pipeline, error) {
	p, ok := r.pipelines[category]
	if !ok {
		return nil, errors.NoPipeline(fmt.Sprintf("category %q has no escalation pipeline", category))
	}
	return p, nil
}

// Advance validates a stage move for c and returns the updated case with
// the new stage and its entry instant recorded.  The input case is not
// mutated.
func (r *Registry) Advance(c *casework.Case, to Stage, now time.Time) (*casework.Case, error) {
	if c == nil {
		return nil, errors.InvalidParam("case must not be nil")
	}
	p, err := r.Pipeline(c.Category)
	if err != nil {
		return nil, err
	}
	from := Stage(c.EscalationStage)
	if from == "" {
		from = p.Initial()
	}
	if err := p.Advance(from, to); err != nil {
		return nil, err
	}
	moved := *c
	moved.EscalationStage = string(to)
	moved.StageEnteredAt = now
	return &moved, nil
}

// ApplyDwell overrides the dwell expectations on every pipeline.  stageDwell
// is keyed by stage name; stages not named keep defaultDwell.  A zero
// defaultDwell leaves each pipeline's built-in default in place.
func (r *Registry) ApplyDwell(defaultDwell time.Duration, stageDwell map[string]time.Duration) {
	for _, p := range r.pipelines {
		if defaultDwell > 0 {
			p.DefaultDwell = defaultDwell
		}
		for name, dwell := range stageDwell {
			if !p.Contains(Stage(name)) {
				continue
			}
			if p.ExpectedDwell == nil {
				p.ExpectedDwell = make(map[Stage]time.Duration)
			}
			p.ExpectedDwell[Stage(name)] = dwell
		}
	}
}
