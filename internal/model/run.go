package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Run modes.
const (
	ModeDaily = "daily"
	ModeRange = "range"
)

// Run statuses.
const (
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Run is a persisted reconciliation run.
// It carries no persistence tags; the repository maps it to tables.
type Run struct {
	ID              string          `json:"id"`
	Mode            string          `json:"mode"`
	GroupBy         string          `json:"group_by"`
	Timezone        string          `json:"timezone"`
	TargetDate      string          `json:"target_date,omitempty"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	PayoutFile      string          `json:"payout_file"`
	OrderCount      int             `json:"order_count"`
	MismatchCount   int             `json:"mismatch_count"`
	TotalDifference decimal.Decimal `json:"total_difference"`
	Status          string          `json:"status"`
	Error           string          `json:"error,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Reports         []Report        `json:"reports,omitempty"`
}

// Report kinds produced by a run.
const (
	ReportOrders     = "orders"
	ReportSummary    = "summary"
	ReportTransposed = "transposed"
	ReportSources    = "sources"
	ReportTrace      = "trace"
	ReportMismatches = "mismatches"
)

// Report is a generated artifact stored in object storage.
type Report struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	Kind        string    `json:"kind"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
