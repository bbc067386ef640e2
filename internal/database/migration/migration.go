// Package migration creates the reconciliation schema on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is checked to decide whether the schema exists.
const sentinelTable = "public.reconciliation_runs"

var steps = []migrationStep{
	{
		Name: "create_table_reconciliation_runs",
		SQL: `CREATE TABLE IF NOT EXISTS reconciliation_runs (
  id               UUID          PRIMARY KEY,
  mode             TEXT          NOT NULL CHECK (mode IN ('daily', 'range')),
  group_by         TEXT          NOT NULL,
  timezone         TEXT          NOT NULL,
  target_date      DATE,
  start_date       DATE          NOT NULL,
  end_date         DATE          NOT NULL,
  payout_file      TEXT          NOT NULL,
  order_count      INTEGER       NOT NULL DEFAULT 0,
  mismatch_count   INTEGER       NOT NULL DEFAULT 0,
  total_difference NUMERIC(14,2) NOT NULL DEFAULT 0,
  status           TEXT          NOT NULL,
  error            TEXT          NOT NULL DEFAULT '',
  created_at       TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_reconciliation_runs_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reconciliation_runs_created_at ON reconciliation_runs (created_at);`,
	},
	{
		Name: "create_table_reconciliation_days",
		SQL: `CREATE TABLE IF NOT EXISTS reconciliation_days (
  run_id      UUID          NOT NULL REFERENCES reconciliation_runs (id) ON DELETE CASCADE,
  date        DATE          NOT NULL,
  order_count INTEGER       NOT NULL,
  mismatch    BOOLEAN       NOT NULL,
  difference  NUMERIC(14,2) NOT NULL,
  summary     JSONB         NOT NULL,
  PRIMARY KEY (run_id, date)
);`,
	},
	{
		Name: "create_index_reconciliation_days_mismatch",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reconciliation_days_mismatch ON reconciliation_days (run_id) WHERE mismatch;`,
	},
	{
		Name: "create_table_reconciliation_reports",
		SQL: `CREATE TABLE IF NOT EXISTS reconciliation_reports (
  id           UUID        PRIMARY KEY,
  run_id       UUID        NOT NULL REFERENCES reconciliation_runs (id) ON DELETE CASCADE,
  kind         TEXT        NOT NULL,
  filename     TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  content_type TEXT        NOT NULL,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_reconciliation_reports_run_kind",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reconciliation_reports_run_kind ON reconciliation_reports (run_id, kind);`,
	},
}

// EnsureMigrated applies the schema unless the sentinel table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))
	log.Info("migration check", zap.String("event", "db_migration_check"))

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists); err != nil {
		log.Error("migration check failed",
			zap.String("event", "db_migration_failed"),
			zap.Error(err),
			zap.Duration("duration_ms", time.Since(start)),
		)
		return fmt.Errorf("check sentinel table: %w", err)
	}
	if exists {
		log.Info("schema already exists, skipping migration",
			zap.String("event", "db_migration_skip"),
			zap.Duration("duration_ms", time.Since(start)),
		)
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("migration step failed",
				zap.String("event", "db_migration_failed"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Duration("duration_ms", time.Since(start)),
			)
			return fmt.Errorf("migration step %s: %w", step.Name, err)
		}
		log.Info("migration step applied",
			zap.String("event", "db_migration_step"),
			zap.String("migration_step", step.Name),
			zap.Duration("step_duration_ms", time.Since(stepStart)),
		)
	}

	log.Info("migration complete",
		zap.String("event", "db_migration_success"),
		zap.Int("steps", len(steps)),
		zap.Duration("duration_ms", time.Since(start)),
	)
	return nil
}
