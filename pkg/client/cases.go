package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Assessment is the officer-facing view of one case.
type Assessment struct {
	CaseID      string     `json:"case_id"`
	Reference   string     `json:"reference"`
	Category    string     `json:"category"`
	Classifier  string     `json:"classifier,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Status      string    `json:"status"`
	Level       int       `json:"level"`
	EvaluatedAt time.Time `json:"evaluated_at"`
	Frozen      bool      `json:"frozen"`

	Deadlines []DeadlineStatus `json:"deadlines,omitempty"`
	Countdown *Countdown       `json:"countdown,omitempty"`

	Stage      string `json:"stage,omitempty"`
	StageStale bool   `json:"stage_stale,omitempty"`

	RiskFactors     []string `json:"risk_factors,omitempty"`
	RequiredActions []string `json:"required_actions,omitempty"`
}

// Deadline is one named obligation derived from the case facts.
type Deadline struct {
	Name            string    `json:"name"`
	DueAt           time.Time `json:"due_at"`
	UsesWorkingDays bool      `json:"uses_working_days"`
}

// DeadlineStatus pairs one deadline with its individual classification.
type DeadlineStatus struct {
	Deadline Deadline `json:"deadline"`
	Status   string   `json:"status"`
}

// Countdown is the nearest-deadline projection.
type Countdown struct {
	CaseID          string        `json:"case_id"`
	DeadlineName    string        `json:"deadline_name"`
	DueAt           time.Time     `json:"due_at"`
	ProjectedAt     time.Time     `json:"projected_at"`
	Remaining       time.Duration `json:"remaining"`
	Days            int           `json:"days"`
	Hours           int           `json:"hours"`
	Minutes         int           `json:"minutes"`
	WorkingDaysLeft int           `json:"working_days_left"`
	Tier            string        `json:"tier"`
	Frozen          bool          `json:"frozen"`
}

// WorklistItem is one row of the prioritised worklist.
type WorklistItem struct {
	CaseID       string        `json:"case_id"`
	Reference    string        `json:"reference"`
	Category     string        `json:"category"`
	Status       string        `json:"status"`
	Level        int           `json:"level"`
	DeadlineName string        `json:"deadline_name,omitempty"`
	DueAt        time.Time     `json:"due_at,omitempty"`
	Remaining    time.Duration `json:"remaining"`
}

// ScanReport summarises one compliance sweep.
type ScanReport struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Total      int            `json:"total"`
	Compliant  int            `json:"compliant"`
	AtRisk     int            `json:"at_risk"`
	Breached   int            `json:"breached"`
	Excluded   int            `json:"excluded"`
	Items      []WorklistItem `json:"items"`
}

// Case is the engine's case projection.
type Case struct {
	ID              string     `json:"id"`
	Reference       string     `json:"reference"`
	Category        string     `json:"category"`
	Classifier      string     `json:"classifier"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	EscalationStage string     `json:"escalation_stage,omitempty"`
	StageEnteredAt  time.Time  `json:"stage_entered_at,omitempty"`
}

// Assessment fetches the full assessment for one case.
func (c *Client) Assessment(ctx context.Context, caseID string) (*Assessment, error) {
	var out Assessment
	if err := c.do(ctx, http.MethodGet, "/api/v1/cases/"+url.PathEscape(caseID)+"/assessment", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Countdown fetches the nearest-deadline projection for one case.
func (c *Client) Countdown(ctx context.Context, caseID string) (*Countdown, error) {
	var out Countdown
	if err := c.do(ctx, http.MethodGet, "/api/v1/cases/"+url.PathEscape(caseID)+"/countdown", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Worklist fetches the prioritised worklist.
func (c *Client) Worklist(ctx context.Context) ([]WorklistItem, error) {
	var out struct {
		Items []WorklistItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/worklist", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Scan triggers a compliance sweep and returns its report.
func (c *Client) Scan(ctx context.Context) (*ScanReport, error) {
	var out ScanReport
	if err := c.do(ctx, http.MethodPost, "/api/v1/scan", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Advance moves a case to the given escalation stage.
func (c *Client) Advance(ctx context.Context, caseID, to string) (*Case, error) {
	var out Case
	body := map[string]string{"to": to}
	if err := c.do(ctx, http.MethodPost, "/api/v1/cases/"+url.PathEscape(caseID)+"/advance", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
