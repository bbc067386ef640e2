package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Refund sources compared by the refund analysis.
const (
	RefundSourceTransaction       = "transaction_refund"
	RefundSourceObjectTransaction = "refund_object_transaction"
)

// RefundMovement is a refund recorded either as an order transaction or as a
// transaction nested in a refund object.
type RefundMovement struct {
	Source          string          `json:"source"`
	TransactionID   string          `json:"transaction_id"`
	RefundID        string          `json:"refund_id,omitempty"`
	Kind            string          `json:"kind"`
	Gateway         string          `json:"gateway"`
	Amount          decimal.Decimal `json:"amount"`
	CreatedAt       time.Time       `json:"created_at"`
	ProcessedAt     time.Time       `json:"processed_at"`
	RefundCreatedAt time.Time       `json:"refund_created_at,omitempty"`
	Test            bool            `json:"test"`
}

// RefundDates are the dates a refund can be grouped by.
type RefundDates struct {
	OrderCreated               time.Time `json:"order_created"`
	OrderProcessed             time.Time `json:"order_processed"`
	TransactionProcessed       time.Time `json:"transaction_processed,omitempty"`
	RefundCreated              time.Time `json:"refund_created,omitempty"`
	RefundTransactionProcessed time.Time `json:"refund_transaction_processed,omitempty"`
}

// RefundAnalysis compares the four refund sources of one order.
type RefundAnalysis struct {
	OrderName               string           `json:"order_name"`
	OrderCreatedAt          time.Time        `json:"order_created_at"`
	OrderProcessedAt        time.Time        `json:"order_processed_at"`
	TotalRefunded           decimal.Decimal  `json:"total_refunded"`
	TransactionRefunds      []RefundMovement `json:"transaction_refunds"`
	LineItemsTotal          decimal.Decimal  `json:"line_items_total"`
	LineItemCount           int              `json:"line_item_count"`
	RefundTransactions      []RefundMovement `json:"refund_transactions"`
	TransactionRefundsTotal decimal.Decimal  `json:"transaction_refunds_total"`
	RefundTransactionsTotal decimal.Decimal  `json:"refund_transactions_total"`
	Discrepancies           []string         `json:"discrepancies"`
	Dates                   RefundDates      `json:"dates"`
	UniqueDates             int              `json:"unique_dates"`
	DateSpreadDays          int              `json:"date_spread_days"`
}

// HasDiscrepancies reports whether any pair of sources disagreed.
func (a RefundAnalysis) HasDiscrepancies() bool {
	return len(a.Discrepancies) > 0
}

// RefundSourceMatches counts orders on which each pair of sources agreed.
type RefundSourceMatches struct {
	OrderVsTransaction              int `json:"order_vs_transaction"`
	OrderVsLineItems                int `json:"order_vs_line_items"`
	OrderVsRefundTransactions       int `json:"order_vs_refund_transactions"`
	TransactionVsRefundTransactions int `json:"transaction_vs_refund_transactions"`
}

// RefundSummary is the overall result of a refund source analysis.
type RefundSummary struct {
	Start                 string              `json:"start"`
	End                   string              `json:"end"`
	OrdersScanned         int                 `json:"orders_scanned"`
	OrdersWithRefunds     int                 `json:"orders_with_refunds"`
	OrdersWithDiscrepancy int                 `json:"orders_with_discrepancies"`
	AccuracyRate          decimal.Decimal     `json:"accuracy_rate"`
	SameDateOrders        int                 `json:"same_date_orders"`
	DifferentDateOrders   int                 `json:"different_date_orders"`
	MaxSpreadDays         int                 `json:"max_spread_days"`
	AverageSpreadDays     decimal.Decimal     `json:"average_spread_days"`
	SourceMatches         RefundSourceMatches `json:"source_matches"`
	Recommendations       []string            `json:"recommendations"`
	Orders                []RefundAnalysis    `json:"orders"`
}

// MismatchAnalysis describes the mismatching days of a set of summaries.
type MismatchAnalysis struct {
	TotalDays              int             `json:"total_days"`
	MismatchDays           int             `json:"mismatch_days"`
	MismatchPercentage     decimal.Decimal `json:"mismatch_percentage"`
	MatchRate              decimal.Decimal `json:"match_rate"`
	Largest                []DailySummary  `json:"largest"`
	HighSalesLowPayoutDays int             `json:"high_sales_low_payout_days"`
	LowSalesHighPayoutDays int             `json:"low_sales_high_payout_days"`
	MultiDayOrderSpans     int             `json:"multi_day_order_spans"`
	MultiDayExamples       []DailySummary  `json:"multi_day_examples"`
}
