package payout

import (
	"time"

	"payoutrecon/internal/model"
	"payoutrecon/internal/reconcile"
)

// DateSpan returns the first and last payout day in loc.
func (e *Export) DateSpan(loc *time.Location) (first, last reconcile.Day) {
	first, last, _ = reconcile.PayoutSpan(e.Rows, loc)
	return first, last
}

// OnDate returns the rows falling on day in loc.
func (e *Export) OnDate(day reconcile.Day, loc *time.Location) []model.PayoutTransaction {
	var out []model.PayoutTransaction
	for _, r := range e.Rows {
		if reconcile.PayoutDay(r, loc) == day {
			out = append(out, r)
		}
	}
	return out
}

// ByOrder indexes rows by order name. Rows without an order are skipped.
func ByOrder(rows []model.PayoutTransaction) map[string][]model.PayoutTransaction {
	out := make(map[string][]model.PayoutTransaction)
	for _, r := range rows {
		if r.Order == "" {
			continue
		}
		out[r.Order] = append(out[r.Order], r)
	}
	return out
}
