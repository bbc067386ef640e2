package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"payoutrecon/internal/model"
	"payoutrecon/internal/repository"
)

// RunPostgres is a PostgreSQL implementation of repository.RunRepository.
type RunPostgres struct {
	db *sql.DB
}

// NewRunPostgres creates a new RunPostgres repository.
func NewRunPostgres(db *sql.DB) *RunPostgres {
	return &RunPostgres{db: db}
}

var _ repository.RunRepository = (*RunPostgres)(nil)

const runColumns = `id, mode, group_by, timezone, COALESCE(target_date::text, ''), start_date::text, end_date::text,
		payout_file, order_count, mismatch_count, total_difference, status, error, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*model.Run, error) {
	var r model.Run
	if err := s.Scan(
		&r.ID,
		&r.Mode,
		&r.GroupBy,
		&r.Timezone,
		&r.TargetDate,
		&r.StartDate,
		&r.EndDate,
		&r.PayoutFile,
		&r.OrderCount,
		&r.MismatchCount,
		&r.TotalDifference,
		&r.Status,
		&r.Error,
		&r.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts a new run row and returns the stored record.
func (r *RunPostgres) Create(ctx context.Context, run *model.Run) (*model.Run, error) {
	q := `
		INSERT INTO reconciliation_runs (id, mode, group_by, timezone, target_date, start_date, end_date,
			payout_file, order_count, mismatch_count, total_difference, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + runColumns
	row := r.db.QueryRowContext(ctx, q,
		run.ID,
		run.Mode,
		run.GroupBy,
		run.Timezone,
		nullString(run.TargetDate),
		run.StartDate,
		run.EndDate,
		run.PayoutFile,
		run.OrderCount,
		run.MismatchCount,
		run.TotalDifference,
		run.Status,
		run.Error,
		run.CreatedAt,
	)
	return scanRun(row)
}

// FindByID fetches a single run by its ID.
func (r *RunPostgres) FindByID(ctx context.Context, id string) (*model.Run, error) {
	q := `SELECT ` + runColumns + ` FROM reconciliation_runs WHERE id = $1`
	return scanRun(r.db.QueryRowContext(ctx, q, id))
}

// List returns runs using LIMIT/OFFSET pagination and a total count.
func (r *RunPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Run], error) {
	const qCount = `SELECT COUNT(*) FROM reconciliation_runs`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + runColumns + ` FROM reconciliation_runs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Run]{
		Items: items,
		Total: total,
	}, nil
}

// UpdateStatus sets the status of a run. A missing run yields sql.ErrNoRows.
func (r *RunPostgres) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	const q = `UPDATE reconciliation_runs SET status = $2, error = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, status, errMsg)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a run by ID. Days and reports are removed by ON DELETE CASCADE.
func (r *RunPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM reconciliation_runs WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// SaveDays replaces the day rows of a run.
func (r *RunPostgres) SaveDays(ctx context.Context, runID string, days []model.DailySummary) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM reconciliation_days WHERE run_id = $1`, runID); err != nil {
		return err
	}
	const q = `
		INSERT INTO reconciliation_days (run_id, date, order_count, mismatch, difference, summary)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, d := range days {
		payload, mErr := json.Marshal(d)
		if mErr != nil {
			return fmt.Errorf("marshal day %s: %w", d.Date, mErr)
		}
		if _, err = tx.ExecContext(ctx, q, runID, d.Date, d.OrderCount, d.Balance.Mismatch, d.Balance.Difference, payload); err != nil {
			return fmt.Errorf("insert day %s: %w", d.Date, err)
		}
	}
	return tx.Commit()
}

// ListDays returns day summaries decoded from their stored JSON.
func (r *RunPostgres) ListDays(ctx context.Context, runID string, mismatchOnly bool) ([]model.DailySummary, error) {
	const q = `
		SELECT summary
		FROM reconciliation_days
		WHERE run_id = $1 AND (mismatch OR NOT $2)
		ORDER BY date
	`
	rows, err := r.db.QueryContext(ctx, q, runID, mismatchOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make([]model.DailySummary, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var d model.DailySummary
		if err := json.Unmarshal(payload, &d); err != nil {
			return nil, fmt.Errorf("decode day: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return days, nil
}

// AddReport inserts a report row and returns the stored record.
func (r *RunPostgres) AddReport(ctx context.Context, rep *model.Report) (*model.Report, error) {
	const q = `
		INSERT INTO reconciliation_reports (id, run_id, kind, filename, storage_path, content_type, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, run_id, kind, filename, storage_path, content_type, size, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		rep.ID,
		rep.RunID,
		rep.Kind,
		rep.Filename,
		rep.StoragePath,
		rep.ContentType,
		rep.Size,
		rep.CreatedAt,
	)
	var out model.Report
	if err := row.Scan(
		&out.ID,
		&out.RunID,
		&out.Kind,
		&out.Filename,
		&out.StoragePath,
		&out.ContentType,
		&out.Size,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReports returns the reports of a run ordered by kind.
func (r *RunPostgres) ListReports(ctx context.Context, runID string) ([]model.Report, error) {
	const q = `
		SELECT id, run_id, kind, filename, storage_path, content_type, size, created_at
		FROM reconciliation_reports
		WHERE run_id = $1
		ORDER BY kind, filename
	`
	rows, err := r.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Report, 0)
	for rows.Next() {
		var rep model.Report
		if err := rows.Scan(
			&rep.ID,
			&rep.RunID,
			&rep.Kind,
			&rep.Filename,
			&rep.StoragePath,
			&rep.ContentType,
			&rep.Size,
			&rep.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
