package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socialhomes/CaseClock/internal/domain/casework"
	"github.com/socialhomes/CaseClock/internal/infrastructure/monitoring/logging"
	"github.com/socialhomes/CaseClock/pkg/errors"
	"github.com/socialhomes/CaseClock/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// CaseStore
// ─────────────────────────────────────────────────────────────────────────────

// CaseStore is the PostgreSQL implementation of the worklist's case
// repository port.  Case facts are written upstream; this store only ever
// mutates the escalation position.
type CaseStore struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewCaseStore constructs a CaseStore over pool.
func NewCaseStore(pool *pgxpool.Pool, logger logging.Logger) *CaseStore {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CaseStore{pool: pool, logger: logger}
}

const caseColumns = `id, reference, category, classifier, created_at, completed_at, escalation_stage, stage_entered_at`

// GetByID returns the case with the given identifier.
func (s *CaseStore) GetByID(ctx context.Context, id common.ID) (*casework.Case, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = $1`, string(id))

	c, err := scanCase(row)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound(fmt.Sprintf("case %s not found", id))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "case lookup failed")
	}
	return c, nil
}

// ListOpen returns every case without a completion instant, oldest first so
// the longest-waiting residents surface first in a scan.
func (s *CaseStore) ListOpen(ctx context.Context) ([]*casework.Case, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE completed_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "open case listing failed")
	}
	defer rows.Close()

	var cases []*casework.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "case row scan failed")
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "open case listing failed")
	}
	return cases, nil
}

// UpdateStage records a validated escalation move.
func (s *CaseStore) UpdateStage(ctx context.Context, id common.ID, stage string, enteredAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE cases SET escalation_stage = $2, stage_entered_at = $3 WHERE id = $1`,
		string(id), stage, enteredAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "stage update failed")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound(fmt.Sprintf("case %s not found", id))
	}
	s.logger.Debug("postgres: stage recorded",
		logging.String("case_id", string(id)),
		logging.String("stage", stage),
	)
	return nil
}

// Save upserts a case projection.  Used by ingest and by tests; the engine
// itself never calls it.
func (s *CaseStore) Save(ctx context.Context, c *casework.Case) error {
	if c == nil {
		return errors.InvalidParam("case is required")
	}
	var stageEnteredAt *time.Time
	if !c.StageEnteredAt.IsZero() {
		t := c.StageEnteredAt
		stageEnteredAt = &t
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO cases (`+caseColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			reference        = EXCLUDED.reference,
			category         = EXCLUDED.category,
			classifier       = EXCLUDED.classifier,
			completed_at     = EXCLUDED.completed_at,
			escalation_stage = EXCLUDED.escalation_stage,
			stage_entered_at = EXCLUDED.stage_entered_at`,
		string(c.ID), c.Reference, string(c.Category), c.Classifier,
		c.CreatedAt, c.CompletedAt, c.EscalationStage, stageEnteredAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "case save failed")
	}
	return nil
}

// scanCase maps one row onto a Case.  completed_at and stage_entered_at are
// nullable; a NULL stage_entered_at comes back as the zero time.
func scanCase(row pgx.Row) (*casework.Case, error) {
	var (
		c              casework.Case
		id             string
		category       string
		stageEnteredAt *time.Time
	)
	err := row.Scan(&id, &c.Reference, &category, &c.Classifier,
		&c.CreatedAt, &c.CompletedAt, &c.EscalationStage, &stageEnteredAt)
	if err != nil {
		return nil, err
	}
	c.ID = common.ID(id)
	c.Category = casework.Category(category)
	if stageEnteredAt != nil {
		c.StageEnteredAt = *stageEnteredAt
	}
	return &c, nil
}
