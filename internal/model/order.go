package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a Shopify order with the financial fields needed for payout
// reconciliation. Amounts are in presentment currency.
type Order struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	SourceName        string          `json:"source_name,omitempty"`
	RetailLocation    string          `json:"retail_location,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	ProcessedAt       time.Time       `json:"processed_at"`
	FinancialStatus   string          `json:"financial_status,omitempty"`
	FulfillmentStatus string          `json:"fulfillment_status,omitempty"`
	Currency          string          `json:"currency,omitempty"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	TotalTax          decimal.Decimal `json:"total_tax"`
	TotalShipping     decimal.Decimal `json:"total_shipping"`
	TotalTips         decimal.Decimal `json:"total_tips"`
	TotalDiscounts    decimal.Decimal `json:"total_discounts"`
	TotalRefunded     decimal.Decimal `json:"total_refunded"`
	TotalReceived     decimal.Decimal `json:"total_received"`
	NetPayment        decimal.Decimal `json:"net_payment"`
	TotalOutstanding  decimal.Decimal `json:"total_outstanding"`
	Transactions      []Transaction   `json:"transactions"`
	Refunds           []Refund        `json:"refunds"`
}

// SourceLocation names where the order was taken: the POS location when
// present, otherwise the sales channel.
func (o Order) SourceLocation() string {
	switch {
	case o.RetailLocation != "":
		return o.RetailLocation
	case o.SourceName != "":
		return o.SourceName
	default:
		return "unknown"
	}
}

// Transaction kinds reported by the Admin API.
const (
	KindSale          = "SALE"
	KindAuthorization = "AUTHORIZATION"
	KindCapture       = "CAPTURE"
	KindRefund        = "REFUND"
	KindChange        = "CHANGE"
	KindVoid          = "VOID"
)

// StatusSuccess is the only transaction status that moves money.
const StatusSuccess = "SUCCESS"

// Transaction is a single payment gateway movement on an order.
type Transaction struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Gateway     string          `json:"gateway"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt time.Time       `json:"processed_at"`
	Test        bool            `json:"test"`
	Amount      decimal.Decimal `json:"amount"`
}

// Succeeded reports whether the transaction completed.
func (t Transaction) Succeeded() bool {
	return t.Status == StatusSuccess
}

// Refund is a refund object attached to an order.
type Refund struct {
	ID           string           `json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	Note         string           `json:"note,omitempty"`
	LineItems    []RefundLineItem `json:"line_items"`
	Transactions []Transaction    `json:"transactions"`
	// Total is the refund's totalRefundedSet amount.
	Total decimal.Decimal `json:"total"`
}

// RefundLineItem is one refunded line.
type RefundLineItem struct {
	ID       string          `json:"id"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}
