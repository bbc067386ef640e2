package reconcile

import (
	"sort"

	"github.com/shopspring/decimal"

	"payoutrecon/internal/model"
)

// Thresholds for the sales/payout outlier counts.
var (
	HighSales  = decimal.NewFromInt(5000)
	LowPayout  = decimal.NewFromInt(2000)
	LowSales   = decimal.NewFromInt(1000)
	HighPayout = decimal.NewFromInt(5000)
)

const (
	largestMismatches = 10
	multiDayExamples  = 5
)

// AnalyzeMismatches computes mismatch statistics over daily summaries.
func AnalyzeMismatches(summaries []model.DailySummary) model.MismatchAnalysis {
	a := model.MismatchAnalysis{TotalDays: len(summaries)}
	if len(summaries) == 0 {
		return a
	}

	var mismatched []model.DailySummary
	for _, s := range summaries {
		sales, paid := s.Sales.NetSales, s.Payout.AmountBeforeFees
		if sales.GreaterThan(HighSales) && paid.LessThan(LowPayout) {
			a.HighSalesLowPayoutDays++
		}
		if sales.LessThan(LowSales) && paid.GreaterThan(HighPayout) {
			a.LowSalesHighPayoutDays++
		}
		if spansDays(s) {
			a.MultiDayOrderSpans++
			if len(a.MultiDayExamples) < multiDayExamples {
				a.MultiDayExamples = append(a.MultiDayExamples, s)
			}
		}
		if s.Balance.Mismatch {
			mismatched = append(mismatched, s)
		}
	}

	total := decimal.NewFromInt(int64(a.TotalDays))
	a.MismatchDays = len(mismatched)
	a.MismatchPercentage = decimal.NewFromInt(int64(a.MismatchDays)).Div(total).Mul(hundred).Round(1)
	a.MatchRate = hundred.Sub(a.MismatchPercentage)

	sort.SliceStable(mismatched, func(i, j int) bool {
		return mismatched[i].Balance.Difference.Abs().GreaterThan(mismatched[j].Balance.Difference.Abs())
	})
	if len(mismatched) > largestMismatches {
		mismatched = mismatched[:largestMismatches]
	}
	a.Largest = mismatched
	return a
}

func spansDays(s model.DailySummary) bool {
	if s.EarliestOrder.Name == "" || s.LatestOrder.Name == "" {
		return false
	}
	first, last := s.EarliestOrder.CreatedAt, s.LatestOrder.CreatedAt
	return DayOf(first, first.Location()) != DayOf(last, last.Location())
}

// MismatchDates returns the dates of mismatching summaries.
func MismatchDates(summaries []model.DailySummary) []string {
	var out []string
	for _, s := range summaries {
		if s.Balance.Mismatch {
			out = append(out, s.Date)
		}
	}
	return out
}

// DateFilter narrows the dates shown in the mismatch workbook.
type DateFilter struct {
	// Start is the first date shown; the last one when Reverse is set.
	Start      string
	MaxDays    int
	MaxColumns int
	Reverse    bool
}

// FilterDates sorts dates and applies the start date, the day window and the
// column limit. Dates that do not parse are skipped.
func FilterDates(dates []string, f DateFilter) []string {
	days := make([]Day, 0, len(dates))
	for _, s := range dates {
		d, err := ParseDay(s)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		if f.Reverse {
			return days[j].Before(days[i])
		}
		return days[i].Before(days[j])
	})

	if start, err := ParseDay(f.Start); err == nil {
		kept := days[:0]
		for _, d := range days {
			if (!f.Reverse && !d.Before(start)) || (f.Reverse && !start.Before(d)) {
				kept = append(kept, d)
			}
		}
		days = kept
	}

	if f.MaxDays > 0 && len(days) > 0 {
		first := days[0]
		kept := days[:0]
		for _, d := range days {
			span := first.DaysUntil(d)
			if f.Reverse {
				span = -span
			}
			if span <= f.MaxDays {
				kept = append(kept, d)
			}
		}
		days = kept
	}

	if f.MaxColumns > 0 && len(days) > f.MaxColumns {
		days = days[:f.MaxColumns]
	}

	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}
