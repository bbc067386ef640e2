package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"payoutrecon/internal/model"
)

// DefaultTolerance is the largest difference still treated as reconciled.
var DefaultTolerance = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// Options control how orders are placed on days and compared.
type Options struct {
	Location *time.Location
	// Tolerance defaults to DefaultTolerance when nil. Zero means exact.
	Tolerance *decimal.Decimal
	// Day, when set, keeps only orders created on that day.
	Day Day
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o Options) tolerance() decimal.Decimal {
	if o.Tolerance == nil {
		return DefaultTolerance
	}
	return *o.Tolerance
}

// TimezoneNote describes how payout dates were interpreted.
func TimezoneNote(loc *time.Location) string {
	if TimezoneLabel(loc) == "UTC" {
		return "Original UTC dates"
	}
	return "Payout dates converted to " + loc.String()
}

// ReconcileOrders builds one reconciliation row per order. Payout rows are
// matched to orders by order name. The result is ordered by creation time.
func ReconcileOrders(orders []model.Order, payouts []model.PayoutTransaction, opts Options) []model.OrderReconciliation {
	loc := opts.location()
	tol := opts.tolerance()

	byOrder := make(map[string][]model.PayoutTransaction)
	for _, p := range payouts {
		if p.Order != "" {
			byOrder[p.Order] = append(byOrder[p.Order], p)
		}
	}

	rows := make([]model.OrderReconciliation, 0, len(orders))
	for _, o := range orders {
		day := DayOf(o.CreatedAt, loc)
		if !opts.Day.IsZero() && day != opts.Day {
			continue
		}
		rows = append(rows, reconcileOrder(o, day, byOrder[o.Name], loc, tol))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].OrderName < rows[j].OrderName
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	return rows
}

func reconcileOrder(o model.Order, day Day, payouts []model.PayoutTransaction, loc *time.Location, tol decimal.Decimal) model.OrderReconciliation {
	payments, refunds, change := CategorizeTransactions(o.Transactions)
	metrics, payoutDay := PayoutMetrics(payouts, loc)

	row := model.OrderReconciliation{
		Date:           day.String(),
		Timezone:       loc.String(),
		OrderName:      o.Name,
		OrderID:        o.ID,
		SourceLocation: o.SourceLocation(),
		CreatedAt:      o.CreatedAt.In(loc),
		Sales:          SalesOf(o),
		Payments:       payments,
		Refunds:        refunds,
		CashChange:     change,
		Payout:         metrics,
		RefundsCount:   len(o.Refunds),
		RefundsSummary: refundsSummary(o.Refunds),
		Balance:        ComputeBalance(payments.ShopifyPayments, metrics, tol),
		TimezoneNote:   TimezoneNote(loc),
	}
	if !payoutDay.IsZero() {
		row.PayoutDate = payoutDay.String()
	}
	return row
}

// SalesOf extracts the sales block of an order. Discounts are negative.
func SalesOf(o model.Order) model.SalesTotals {
	return model.SalesTotals{
		GrossSales:     o.Subtotal,
		Discounts:      o.TotalDiscounts.Abs().Neg(),
		NetSales:       o.TotalPrice,
		Tax:            o.TotalTax,
		Shipping:       o.TotalShipping,
		Tips:           o.TotalTips,
		TotalReceived:  o.TotalReceived,
		FundsCollected: decimal.Sum(o.TotalPrice, o.TotalTax, o.TotalShipping, o.TotalTips),
		TotalRefunds:   o.TotalRefunded,
		Outstanding:    o.TotalOutstanding,
	}
}

// PayoutMetrics summarises payout rows. Paid rows feed the deposit figures,
// all other statuses count as pending. The earliest paid payout day is
// returned as well (zero when nothing was paid).
func PayoutMetrics(rows []model.PayoutTransaction, loc *time.Location) (model.PayoutMetrics, Day) {
	var m model.PayoutMetrics
	var first Day
	statuses := map[string]struct{}{}
	types := map[string]struct{}{}
	var paidAmount decimal.Decimal

	for _, r := range rows {
		if !r.Paid() {
			m.PendingAmount = m.PendingAmount.Add(r.Amount)
			m.PendingCount++
			continue
		}
		m.Count++
		if r.PayoutStatus != "" {
			statuses[r.PayoutStatus] = struct{}{}
		}
		if r.Type != "" {
			types[r.Type] = struct{}{}
		}
		paidAmount = paidAmount.Add(r.Amount)
		m.Fees = m.Fees.Add(r.Fee)
		switch r.Type {
		case model.PayoutTypeCharge:
			m.AmountBeforeFees = m.AmountBeforeFees.Add(r.Amount)
		case model.PayoutTypeRefund:
			m.Refunds = m.Refunds.Add(r.Amount)
		}
		if d := PayoutDay(r, loc); first.IsZero() || d.Before(first) {
			first = d
		}
	}
	m.Refunds = m.Refunds.Abs()
	if m.Count > 0 {
		m.NetDeposit = paidAmount.Sub(m.Fees)
	}
	m.Statuses = sortedKeys(statuses)
	m.Types = sortedKeys(types)
	return m, first
}

// ComputeBalance compares Shopify Payments receipts with payouts before fees.
// Refunds paid back through payouts were part of the original payments, so
// they are added to both sides. A day or order with nothing paid out yet is
// never a mismatch.
func ComputeBalance(shopifyPayments decimal.Decimal, m model.PayoutMetrics, tol decimal.Decimal) model.Balance {
	receipts := shopifyPayments.Add(m.Refunds)
	expected := m.AmountBeforeFees.Add(m.Refunds)
	diff := receipts.Sub(expected)

	b := model.Balance{
		TotalReceipts:  receipts,
		ExpectedPayout: expected,
		Difference:     diff,
		Mismatch:       expected.IsPositive() && diff.Abs().GreaterThan(tol),
	}
	if !receipts.IsZero() {
		b.Percentage = expected.Div(receipts).Mul(hundred).Round(2)
	}
	return b
}

func refundsSummary(refunds []model.Refund) string {
	if len(refunds) == 0 {
		return ""
	}
	parts := make([]string, len(refunds))
	for i, r := range refunds {
		parts[i] = "$" + r.Total.StringFixed(2)
	}
	return fmt.Sprintf("%d refunds: %s", len(refunds), strings.Join(parts, ", "))
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
