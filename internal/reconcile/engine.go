package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"payoutrecon/internal/model"
)

var (
	ErrNoPayouts = errors.New("no payout transactions")
	ErrNoOrders  = errors.New("no orders found for the date")
)

// OrderFetcher loads orders created between start and end inclusive.
type OrderFetcher interface {
	FetchOrders(ctx context.Context, start, end time.Time) ([]model.Order, error)
}

// Engine runs reconciliations over orders from a fetcher.
type Engine struct {
	fetcher   OrderFetcher
	tolerance decimal.Decimal
	lookback  int
}

// NewEngine returns an engine. A zero tolerance requires exact matches; a
// negative one means DefaultTolerance. lookbackDays extends the order window
// of payout_date runs so orders paid out inside the export span are found.
func NewEngine(f OrderFetcher, tolerance decimal.Decimal, lookbackDays int) *Engine {
	if tolerance.IsNegative() {
		tolerance = DefaultTolerance
	}
	if lookbackDays < 0 {
		lookbackDays = 0
	}
	return &Engine{fetcher: f, tolerance: tolerance, lookback: lookbackDays}
}

// DailyResult is the outcome of a single-day run.
type DailyResult struct {
	Day      Day
	Location *time.Location
	Orders   []model.Order
	Payouts  []model.PayoutTransaction
	Rows     []model.OrderReconciliation
	Summary  model.DailySummary
}

// RangeResult is the outcome of a run over the whole payout export.
type RangeResult struct {
	Start     Day
	End       Day
	Location  *time.Location
	GroupBy   string
	Orders    []model.Order
	Rows      []model.OrderReconciliation
	Summaries []model.DailySummary
	Sources   []model.SourceSummary
}

// Daily reconciles the orders created on day in loc against the payout rows
// of that day. Orders are fetched for the surrounding days so that timezone
// shifts cannot drop any of them.
func (e *Engine) Daily(ctx context.Context, day Day, loc *time.Location, payouts []model.PayoutTransaction) (*DailyResult, error) {
	if loc == nil {
		loc = time.UTC
	}
	if len(payouts) == 0 {
		return nil, ErrNoPayouts
	}

	var dayPayouts []model.PayoutTransaction
	for _, p := range payouts {
		if PayoutDay(p, loc) == day {
			dayPayouts = append(dayPayouts, p)
		}
	}

	orders, err := e.fetcher.FetchOrders(ctx, day.AddDays(-1).Start(time.UTC), day.AddDays(1).End(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}

	opts := Options{Location: loc, Tolerance: &e.tolerance, Day: day}
	rows := ReconcileOrders(orders, dayPayouts, opts)
	if len(rows) == 0 {
		return nil, ErrNoOrders
	}

	res := &DailyResult{
		Day:      day,
		Location: loc,
		Orders:   orders,
		Payouts:  dayPayouts,
		Rows:     rows,
	}
	summaries := Summarize(rows, dayPayouts, model.GroupByOrderDate, opts)
	for _, s := range summaries {
		if s.Date == day.String() {
			res.Summary = s
		}
	}
	return res, nil
}

// Range reconciles every day covered by the payout export.
func (e *Engine) Range(ctx context.Context, loc *time.Location, groupBy string, payouts []model.PayoutTransaction) (*RangeResult, error) {
	if loc == nil {
		loc = time.UTC
	}
	if groupBy == "" {
		groupBy = model.GroupByOrderDate
	}
	if groupBy != model.GroupByOrderDate && groupBy != model.GroupByPayoutDate {
		return nil, fmt.Errorf("unknown grouping %q", groupBy)
	}
	start, end, ok := PayoutSpan(payouts, loc)
	if !ok {
		return nil, ErrNoPayouts
	}

	from := start.AddDays(-1)
	if groupBy == model.GroupByPayoutDate {
		from = from.AddDays(-e.lookback)
	}
	orders, err := e.fetcher.FetchOrders(ctx, from.Start(time.UTC), end.AddDays(1).End(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}

	opts := Options{Location: loc, Tolerance: &e.tolerance}
	all := ReconcileOrders(orders, payouts, opts)
	lo, hi := start.String(), end.String()
	rows := make([]model.OrderReconciliation, 0, len(all))
	for _, r := range all {
		if k := GroupKey(r, groupBy); k >= lo && k <= hi {
			rows = append(rows, r)
		}
	}

	return &RangeResult{
		Start:     start,
		End:       end,
		Location:  loc,
		GroupBy:   groupBy,
		Orders:    orders,
		Rows:      rows,
		Summaries: Summarize(rows, payouts, groupBy, opts),
		Sources:   SourceBreakdown(rows, groupBy),
	}, nil
}

// PayoutSpan returns the first and last payout day in loc.
func PayoutSpan(payouts []model.PayoutTransaction, loc *time.Location) (Day, Day, bool) {
	var first, last Day
	for i, p := range payouts {
		d := PayoutDay(p, loc)
		if i == 0 || d.Before(first) {
			first = d
		}
		if i == 0 || last.Before(d) {
			last = d
		}
	}
	return first, last, len(payouts) > 0
}
