package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socialhomes/CaseClock/pkg/errors"
)

// casesDDL is the full schema for the engine's single table.  The case
// record is a projection owned upstream; only escalation_stage and
// stage_entered_at are ever written here.
const casesDDL = `
CREATE TABLE IF NOT EXISTS cases (
	id               TEXT PRIMARY KEY,
	reference        TEXT NOT NULL UNIQUE,
	category         TEXT NOT NULL,
	classifier       TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL,
	completed_at     TIMESTAMPTZ,
	escalation_stage TEXT NOT NULL DEFAULT '',
	stage_entered_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_cases_open ON cases (category) WHERE completed_at IS NULL;
`

// EnsureSchema creates the cases table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, casesDDL); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "postgres: schema creation failed")
	}
	return nil
}
