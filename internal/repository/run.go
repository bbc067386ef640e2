package repository

import (
	"context"

	"payoutrecon/internal/model"
)

// RunRepository defines data access for reconciliation runs, their day rows
// and their report records. No business logic here.
type RunRepository interface {
	// Create inserts a new run. The caller provides ID and CreatedAt.
	Create(ctx context.Context, run *model.Run) (*model.Run, error)

	// FindByID returns a run by its ID, without its reports.
	FindByID(ctx context.Context, id string) (*model.Run, error)

	// List returns a page of runs, newest first, and the total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Run], error)

	// UpdateStatus sets the status and error message of a run.
	UpdateStatus(ctx context.Context, id, status, errMsg string) error

	// Delete removes a run; days and reports go with it.
	// It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// SaveDays stores the daily summaries of a run in one transaction.
	SaveDays(ctx context.Context, runID string, days []model.DailySummary) error

	// ListDays returns the day rows of a run ordered by date.
	ListDays(ctx context.Context, runID string, mismatchOnly bool) ([]model.DailySummary, error)

	// AddReport records a stored report file.
	AddReport(ctx context.Context, rep *model.Report) (*model.Report, error)

	// ListReports returns the report records of a run.
	ListReports(ctx context.Context, runID string) ([]model.Report, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
