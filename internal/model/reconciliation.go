package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GatewayTotals holds amounts split by payment gateway.
type GatewayTotals struct {
	ShopifyPayments decimal.Decimal `json:"shopify_payments"`
	Cash            decimal.Decimal `json:"cash"`
	Manual          decimal.Decimal `json:"manual"`
	GiftCard        decimal.Decimal `json:"gift_card"`
	ShopCash        decimal.Decimal `json:"shop_cash"`
	Other           decimal.Decimal `json:"other"`
}

// Add returns the field-wise sum of g and o.
func (g GatewayTotals) Add(o GatewayTotals) GatewayTotals {
	return GatewayTotals{
		ShopifyPayments: g.ShopifyPayments.Add(o.ShopifyPayments),
		Cash:            g.Cash.Add(o.Cash),
		Manual:          g.Manual.Add(o.Manual),
		GiftCard:        g.GiftCard.Add(o.GiftCard),
		ShopCash:        g.ShopCash.Add(o.ShopCash),
		Other:           g.Other.Add(o.Other),
	}
}

// Total sums every gateway.
func (g GatewayTotals) Total() decimal.Decimal {
	return decimal.Sum(g.ShopifyPayments, g.Cash, g.Manual, g.GiftCard, g.ShopCash, g.Other)
}

// SalesTotals is the sales side of an order or a day.
type SalesTotals struct {
	GrossSales     decimal.Decimal `json:"gross_sales"`
	Discounts      decimal.Decimal `json:"discounts"`
	NetSales       decimal.Decimal `json:"net_sales"`
	Tax            decimal.Decimal `json:"tax"`
	Shipping       decimal.Decimal `json:"shipping"`
	Tips           decimal.Decimal `json:"tips"`
	TotalReceived  decimal.Decimal `json:"total_received"`
	FundsCollected decimal.Decimal `json:"funds_collected"`
	TotalRefunds   decimal.Decimal `json:"total_refunds"`
	Outstanding    decimal.Decimal `json:"outstanding"`
}

// Add returns the field-wise sum of s and o.
func (s SalesTotals) Add(o SalesTotals) SalesTotals {
	return SalesTotals{
		GrossSales:     s.GrossSales.Add(o.GrossSales),
		Discounts:      s.Discounts.Add(o.Discounts),
		NetSales:       s.NetSales.Add(o.NetSales),
		Tax:            s.Tax.Add(o.Tax),
		Shipping:       s.Shipping.Add(o.Shipping),
		Tips:           s.Tips.Add(o.Tips),
		TotalReceived:  s.TotalReceived.Add(o.TotalReceived),
		FundsCollected: s.FundsCollected.Add(o.FundsCollected),
		TotalRefunds:   s.TotalRefunds.Add(o.TotalRefunds),
		Outstanding:    s.Outstanding.Add(o.Outstanding),
	}
}

// PayoutMetrics summarises payout export rows matched to an order or day.
type PayoutMetrics struct {
	Refunds          decimal.Decimal `json:"refunds"`
	AmountBeforeFees decimal.Decimal `json:"amount_before_fees"`
	Fees             decimal.Decimal `json:"fees"`
	NetDeposit       decimal.Decimal `json:"net_deposit"`
	Count            int             `json:"count"`
	Statuses         []string        `json:"statuses"`
	Types            []string        `json:"types"`
	PendingAmount    decimal.Decimal `json:"pending_amount"`
	PendingCount     int             `json:"pending_count"`
}

// Balance is the outcome of comparing Shopify Payments receipts with the
// payout amounts before fees.
type Balance struct {
	TotalReceipts  decimal.Decimal `json:"total_receipts"`
	ExpectedPayout decimal.Decimal `json:"expected_payout"`
	Difference     decimal.Decimal `json:"difference"`
	Percentage     decimal.Decimal `json:"percentage"`
	Mismatch       bool            `json:"mismatch"`
}

// OrderReconciliation is the reconciliation of one order.
type OrderReconciliation struct {
	Date           string          `json:"date"`
	Timezone       string          `json:"timezone"`
	OrderName      string          `json:"order_name"`
	OrderID        string          `json:"order_id"`
	SourceLocation string          `json:"source_location"`
	CreatedAt      time.Time       `json:"created_at"`
	Sales          SalesTotals     `json:"sales"`
	Payments       GatewayTotals   `json:"payments"`
	Refunds        GatewayTotals   `json:"refunds"`
	CashChange     decimal.Decimal `json:"cash_change"`
	Payout         PayoutMetrics   `json:"payout"`
	RefundsSummary string          `json:"refunds_summary"`
	RefundsCount   int             `json:"refunds_count"`
	Balance        Balance         `json:"balance"`
	TimezoneNote   string          `json:"timezone_note"`
	// PayoutDate is the earliest paid payout day of the order, if any.
	PayoutDate string `json:"payout_date,omitempty"`
}

// OrderRef points at an order inside a summary.
type OrderRef struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Grouping keys for daily summaries.
const (
	GroupByOrderDate  = "order_date"
	GroupByPayoutDate = "payout_date"
)

// DailySummary aggregates order reconciliations for one calendar day.
type DailySummary struct {
	Date       string          `json:"date"`
	Timezone   string          `json:"timezone"`
	GroupBy    string          `json:"group_by"`
	OrderCount int             `json:"order_count"`
	Sales      SalesTotals     `json:"sales"`
	Payments   GatewayTotals   `json:"payments"`
	Refunds    GatewayTotals   `json:"refunds"`
	CashChange decimal.Decimal `json:"cash_change"`
	Payout     PayoutMetrics   `json:"payout"`
	// Amounts from the payout export for rows paid out on this day.
	PayoutCharges     decimal.Decimal `json:"payout_charges"`
	PayoutAdjustments decimal.Decimal `json:"payout_adjustments"`
	PayoutChargebacks decimal.Decimal `json:"payout_chargebacks"`
	PayoutTypeRefunds decimal.Decimal `json:"payout_type_refunds"`
	Balance           Balance         `json:"balance"`
	EarliestOrder     OrderRef        `json:"earliest_order"`
	LatestOrder       OrderRef        `json:"latest_order"`
	OrderNames        []string        `json:"order_names"`
}

// SourceSummary splits one day by sales channel or POS location.
type SourceSummary struct {
	Date           string        `json:"date"`
	SourceLocation string        `json:"source_location"`
	OrderCount     int           `json:"order_count"`
	Sales          SalesTotals   `json:"sales"`
	Payments       GatewayTotals `json:"payments"`
}
