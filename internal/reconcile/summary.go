package reconcile

import (
	"sort"

	"github.com/shopspring/decimal"

	"payoutrecon/internal/model"
)

// GroupKey returns the day an order row is reported on.
func GroupKey(row model.OrderReconciliation, groupBy string) string {
	if groupBy == model.GroupByPayoutDate && row.PayoutDate != "" {
		return row.PayoutDate
	}
	return row.Date
}

// Summarize aggregates order rows per day. Paid payout rows contribute their
// per-type amounts on the day they were paid out, so days with payouts but no
// orders are reported too. The result is sorted by date.
func Summarize(rows []model.OrderReconciliation, payouts []model.PayoutTransaction, groupBy string, opts Options) []model.DailySummary {
	if groupBy == "" {
		groupBy = model.GroupByOrderDate
	}
	loc := opts.location()
	tol := opts.tolerance()
	days := map[string]*model.DailySummary{}

	get := func(date string) *model.DailySummary {
		s, ok := days[date]
		if !ok {
			s = &model.DailySummary{Date: date, Timezone: loc.String(), GroupBy: groupBy}
			days[date] = s
		}
		return s
	}

	for _, r := range rows {
		s := get(GroupKey(r, groupBy))
		s.OrderCount++
		s.Sales = s.Sales.Add(r.Sales)
		s.Payments = s.Payments.Add(r.Payments)
		s.Refunds = s.Refunds.Add(r.Refunds)
		s.CashChange = s.CashChange.Add(r.CashChange)
		s.Payout = addMetrics(s.Payout, r.Payout)
		s.OrderNames = append(s.OrderNames, r.OrderName)

		ref := model.OrderRef{Name: r.OrderName, CreatedAt: r.CreatedAt}
		if s.EarliestOrder.Name == "" || r.CreatedAt.Before(s.EarliestOrder.CreatedAt) {
			s.EarliestOrder = ref
		}
		if s.LatestOrder.Name == "" || r.CreatedAt.After(s.LatestOrder.CreatedAt) {
			s.LatestOrder = ref
		}
	}

	for _, p := range payouts {
		if !p.Paid() {
			continue
		}
		s := get(PayoutDay(p, loc).String())
		switch p.Type {
		case model.PayoutTypeCharge:
			s.PayoutCharges = s.PayoutCharges.Add(p.Amount)
		case model.PayoutTypeAdjustment:
			s.PayoutAdjustments = s.PayoutAdjustments.Add(p.Amount)
		case model.PayoutTypeChargeback:
			s.PayoutChargebacks = s.PayoutChargebacks.Add(p.Amount)
		case model.PayoutTypeRefund:
			s.PayoutTypeRefunds = s.PayoutTypeRefunds.Add(p.Amount)
		}
	}

	out := make([]model.DailySummary, 0, len(days))
	for _, s := range days {
		s.Balance = ComputeBalance(s.Payments.ShopifyPayments, s.Payout, tol)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func addMetrics(a, b model.PayoutMetrics) model.PayoutMetrics {
	return model.PayoutMetrics{
		Refunds:          a.Refunds.Add(b.Refunds),
		AmountBeforeFees: a.AmountBeforeFees.Add(b.AmountBeforeFees),
		Fees:             a.Fees.Add(b.Fees),
		NetDeposit:       a.NetDeposit.Add(b.NetDeposit),
		Count:            a.Count + b.Count,
		Statuses:         union(a.Statuses, b.Statuses),
		Types:            union(a.Types, b.Types),
		PendingAmount:    a.PendingAmount.Add(b.PendingAmount),
		PendingCount:     a.PendingCount + b.PendingCount,
	}
}

func union(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		set[v] = struct{}{}
	}
	return sortedKeys(set)
}

// SourceBreakdown splits order rows per day and source location.
func SourceBreakdown(rows []model.OrderReconciliation, groupBy string) []model.SourceSummary {
	type key struct{ date, source string }
	acc := map[key]*model.SourceSummary{}
	for _, r := range rows {
		k := key{GroupKey(r, groupBy), r.SourceLocation}
		s, ok := acc[k]
		if !ok {
			s = &model.SourceSummary{Date: k.date, SourceLocation: k.source}
			acc[k] = s
		}
		s.OrderCount++
		s.Sales = s.Sales.Add(r.Sales)
		s.Payments = s.Payments.Add(r.Payments)
	}

	out := make([]model.SourceSummary, 0, len(acc))
	for _, s := range acc {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date == out[j].Date {
			return out[i].SourceLocation < out[j].SourceLocation
		}
		return out[i].Date < out[j].Date
	})
	return out
}

// Totals is the headline block printed after a run.
type Totals struct {
	Orders          int
	NetSales        decimal.Decimal
	ShopifyPayments decimal.Decimal
	PayoutAmount    decimal.Decimal
	Difference      decimal.Decimal
	Mismatches      []model.OrderReconciliation
}

// TotalsOf sums order rows into the headline block.
func TotalsOf(rows []model.OrderReconciliation) Totals {
	t := Totals{Orders: len(rows)}
	for _, r := range rows {
		t.NetSales = t.NetSales.Add(r.Sales.NetSales)
		t.ShopifyPayments = t.ShopifyPayments.Add(r.Payments.ShopifyPayments)
		t.PayoutAmount = t.PayoutAmount.Add(r.Payout.AmountBeforeFees)
		t.Difference = t.Difference.Add(r.Balance.Difference)
		if r.Balance.Mismatch {
			t.Mismatches = append(t.Mismatches, r)
		}
	}
	return t
}
