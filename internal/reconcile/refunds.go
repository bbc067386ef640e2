package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"payoutrecon/internal/model"
)

// AnalyzeRefunds compares the four places Shopify records refunds for every
// order that has any: the order total, REFUND transactions on the order, the
// refund objects' line items and the refund objects' own transactions.
// Calendar days are taken in loc. A zero tol requires exact agreement; a
// negative one means DefaultTolerance.
func AnalyzeRefunds(orders []model.Order, loc *time.Location, tol decimal.Decimal) []model.RefundAnalysis {
	if loc == nil {
		loc = time.UTC
	}
	if tol.IsNegative() {
		tol = DefaultTolerance
	}

	var out []model.RefundAnalysis
	for _, o := range orders {
		if o.TotalRefunded.IsZero() && len(o.Refunds) == 0 {
			continue
		}
		out = append(out, analyzeOrderRefunds(o, loc, tol))
	}
	return out
}

func analyzeOrderRefunds(o model.Order, loc *time.Location, tol decimal.Decimal) model.RefundAnalysis {
	processed := o.ProcessedAt
	if processed.IsZero() {
		processed = o.CreatedAt
	}
	a := model.RefundAnalysis{
		OrderName:        o.Name,
		OrderCreatedAt:   o.CreatedAt,
		OrderProcessedAt: processed,
		TotalRefunded:    o.TotalRefunded,
		Dates: model.RefundDates{
			OrderCreated:   o.CreatedAt,
			OrderProcessed: processed,
		},
	}

	for _, t := range o.Transactions {
		if t.Kind != model.KindRefund || !t.Succeeded() {
			continue
		}
		a.TransactionRefunds = append(a.TransactionRefunds, model.RefundMovement{
			Source:        model.RefundSourceTransaction,
			TransactionID: t.ID,
			Kind:          t.Kind,
			Gateway:       t.Gateway,
			Amount:        t.Amount,
			CreatedAt:     t.CreatedAt,
			ProcessedAt:   t.ProcessedAt,
			Test:          t.Test,
		})
		a.TransactionRefundsTotal = a.TransactionRefundsTotal.Add(t.Amount)
		a.Dates.TransactionProcessed = t.ProcessedAt
	}

	for _, r := range o.Refunds {
		for _, li := range r.LineItems {
			a.LineItemsTotal = a.LineItemsTotal.Add(li.Subtotal)
			a.LineItemCount++
			a.Dates.RefundCreated = r.CreatedAt
		}
		for _, t := range r.Transactions {
			if !t.Succeeded() {
				continue
			}
			a.RefundTransactions = append(a.RefundTransactions, model.RefundMovement{
				Source:          model.RefundSourceObjectTransaction,
				TransactionID:   t.ID,
				RefundID:        r.ID,
				Kind:            t.Kind,
				Gateway:         t.Gateway,
				Amount:          t.Amount,
				CreatedAt:       t.CreatedAt,
				ProcessedAt:     t.ProcessedAt,
				RefundCreatedAt: r.CreatedAt,
			})
			a.RefundTransactionsTotal = a.RefundTransactionsTotal.Add(t.Amount)
			a.Dates.RefundTransactionProcessed = t.ProcessedAt
		}
	}

	check := func(label string, x, y decimal.Decimal) {
		if d := x.Sub(y).Abs(); d.GreaterThan(tol) {
			a.Discrepancies = append(a.Discrepancies, fmt.Sprintf("%s: $%s", label, d.StringFixed(2)))
		}
	}
	check("Order total vs Transaction refunds", a.TotalRefunded, a.TransactionRefundsTotal)
	check("Order total vs Line items", a.TotalRefunded, a.LineItemsTotal)
	check("Order total vs Refund transactions", a.TotalRefunded, a.RefundTransactionsTotal)
	check("Transaction refunds vs Refund transactions", a.TransactionRefundsTotal, a.RefundTransactionsTotal)

	a.UniqueDates, a.DateSpreadDays = dateSpread(loc,
		a.Dates.OrderCreated,
		a.Dates.OrderProcessed,
		a.Dates.TransactionProcessed,
		a.Dates.RefundCreated,
		a.Dates.RefundTransactionProcessed,
	)
	return a
}

func dateSpread(loc *time.Location, times ...time.Time) (unique, spread int) {
	seen := map[Day]struct{}{}
	var first, last Day
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		d := DayOf(t, loc)
		if len(seen) == 0 || d.Before(first) {
			first = d
		}
		if len(seen) == 0 || last.Before(d) {
			last = d
		}
		seen[d] = struct{}{}
	}
	if len(seen) < 2 {
		return len(seen), 0
	}
	return len(seen), first.DaysUntil(last)
}

// SummarizeRefunds aggregates refund analyses and derives grouping advice.
// A negative tol means DefaultTolerance.
func SummarizeRefunds(analyses []model.RefundAnalysis, tol decimal.Decimal) model.RefundSummary {
	if tol.IsNegative() {
		tol = DefaultTolerance
	}
	s := model.RefundSummary{
		OrdersWithRefunds: len(analyses),
		Orders:            analyses,
	}
	if len(analyses) == 0 {
		s.Recommendations = []string{"No refunds found in the selected period"}
		return s
	}

	within := func(x, y decimal.Decimal) bool { return x.Sub(y).Abs().LessThanOrEqual(tol) }
	totalSpread := 0
	for _, a := range analyses {
		if a.HasDiscrepancies() {
			s.OrdersWithDiscrepancy++
		}
		if a.DateSpreadDays == 0 {
			s.SameDateOrders++
		}
		if a.DateSpreadDays > s.MaxSpreadDays {
			s.MaxSpreadDays = a.DateSpreadDays
		}
		totalSpread += a.DateSpreadDays

		if within(a.TotalRefunded, a.TransactionRefundsTotal) {
			s.SourceMatches.OrderVsTransaction++
		}
		if within(a.TotalRefunded, a.LineItemsTotal) {
			s.SourceMatches.OrderVsLineItems++
		}
		if within(a.TotalRefunded, a.RefundTransactionsTotal) {
			s.SourceMatches.OrderVsRefundTransactions++
		}
		if within(a.TransactionRefundsTotal, a.RefundTransactionsTotal) {
			s.SourceMatches.TransactionVsRefundTransactions++
		}
	}

	n := decimal.NewFromInt(int64(len(analyses)))
	s.DifferentDateOrders = len(analyses) - s.SameDateOrders
	s.AccuracyRate = decimal.NewFromInt(int64(len(analyses) - s.OrdersWithDiscrepancy)).Div(n).Mul(hundred).Round(1)
	s.AverageSpreadDays = decimal.NewFromInt(int64(totalSpread)).Div(n).Round(1)

	if s.SameDateOrders > s.DifferentDateOrders {
		s.Recommendations = append(s.Recommendations,
			"Most refunds occur on the same date as the order: group by order creation date")
	} else {
		s.Recommendations = append(s.Recommendations,
			"Many refunds occur on different dates than the order: group by refund or transaction dates")
	}
	if s.MaxSpreadDays > 7 {
		s.Recommendations = append(s.Recommendations, fmt.Sprintf(
			"Some refunds are processed %d days after order creation: order dates may misalign refunds with cash flow",
			s.MaxSpreadDays))
	}
	switch {
	case s.SourceMatches.TransactionVsRefundTransactions == len(analyses):
		s.Recommendations = append(s.Recommendations,
			"Transaction refunds and refund transactions are identical: refund transactions carry the more precise dates")
	case s.SourceMatches.OrderVsTransaction == len(analyses):
		s.Recommendations = append(s.Recommendations,
			"Order totals and transaction refunds match: use transaction refunds for timing")
	default:
		s.Recommendations = append(s.Recommendations,
			"Refund sources disagree: review the orders with discrepancies")
	}
	return s
}
