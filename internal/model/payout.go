package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payout transaction types as exported by Shopify Payments (lower-cased).
const (
	PayoutTypeCharge     = "charge"
	PayoutTypeRefund     = "refund"
	PayoutTypeAdjustment = "adjustment"
	PayoutTypeChargeback = "chargeback"
)

// PayoutStatusPaid marks rows already deposited.
const PayoutStatusPaid = "paid"

// PayoutTransaction is one row of the payout transactions export.
type PayoutTransaction struct {
	// Date is the value of the detected date column.
	Date time.Time `json:"date"`
	// DateOnly is set when Date carried no time of day.
	DateOnly        bool      `json:"date_only"`
	TransactionDate time.Time `json:"transaction_date,omitempty"`
	Type            string    `json:"type"`
	Order           string    `json:"order"`
	PayoutStatus    string    `json:"payout_status"`
	// StatusUnknown is set when the export has no Payout Status column.
	StatusUnknown bool            `json:"status_unknown,omitempty"`
	PayoutID      string          `json:"payout_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	Net           decimal.Decimal `json:"net"`
	Currency      string          `json:"currency,omitempty"`
}

// Paid reports whether the row has been deposited. Rows from exports
// without a status column are all treated as deposited.
func (p PayoutTransaction) Paid() bool {
	return p.StatusUnknown || p.PayoutStatus == PayoutStatusPaid
}
