package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payoutrecon/internal/model"
)

func day(date, sales, payout, diff string, mismatch bool) model.DailySummary {
	return model.DailySummary{
		Date:    date,
		Sales:   model.SalesTotals{NetSales: dec(sales)},
		Payout:  model.PayoutMetrics{AmountBeforeFees: dec(payout)},
		Balance: model.Balance{Difference: dec(diff), Mismatch: mismatch},
	}
}

func TestAnalyzeMismatches(t *testing.T) {
	spanning := day("2024-03-04", "100", "100", "0", false)
	spanning.EarliestOrder = model.OrderRef{Name: "#1", CreatedAt: ts("2024-03-03T23:00:00Z")}
	spanning.LatestOrder = model.OrderRef{Name: "#2", CreatedAt: ts("2024-03-04T01:00:00Z")}

	summaries := []model.DailySummary{
		day("2024-03-01", "6000", "1500", "4500", true),
		day("2024-03-02", "500", "5500", "-5000", true),
		day("2024-03-03", "100", "90", "10", true),
		spanning,
	}

	a := AnalyzeMismatches(summaries)
	assert.Equal(t, 4, a.TotalDays)
	assert.Equal(t, 3, a.MismatchDays)
	assertDec(t, "75", a.MismatchPercentage)
	assertDec(t, "25", a.MatchRate)
	assert.Equal(t, 1, a.HighSalesLowPayoutDays)
	assert.Equal(t, 1, a.LowSalesHighPayoutDays)
	assert.Equal(t, 1, a.MultiDayOrderSpans)
	require.Len(t, a.Largest, 3)
	assert.Equal(t, []string{"2024-03-02", "2024-03-01", "2024-03-03"},
		[]string{a.Largest[0].Date, a.Largest[1].Date, a.Largest[2].Date})

	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"}, MismatchDates(summaries))
}

func TestAnalyzeMismatches_Empty(t *testing.T) {
	a := AnalyzeMismatches(nil)
	assert.Equal(t, 0, a.TotalDays)
	assert.Empty(t, a.Largest)
}

func TestFilterDates(t *testing.T) {
	dates := []string{"2024-03-05", "2024-01-10", "bad", "2024-02-01", "2024-03-20", "2024-01-01"}

	tests := []struct {
		name   string
		filter DateFilter
		want   []string
	}{
		{
			name:   "sorted ascending",
			filter: DateFilter{},
			want:   []string{"2024-01-01", "2024-01-10", "2024-02-01", "2024-03-05", "2024-03-20"},
		},
		{
			name:   "reverse",
			filter: DateFilter{Reverse: true, MaxColumns: 2},
			want:   []string{"2024-03-20", "2024-03-05"},
		},
		{
			name:   "start date and window",
			filter: DateFilter{Start: "2024-01-05", MaxDays: 30},
			want:   []string{"2024-01-10", "2024-02-01"},
		},
		{
			name:   "reverse start is an upper bound",
			filter: DateFilter{Start: "2024-03-10", Reverse: true, MaxDays: 40},
			want:   []string{"2024-03-05", "2024-02-01"},
		},
		{
			name:   "column limit",
			filter: DateFilter{MaxColumns: 1},
			want:   []string{"2024-01-01"},
		},
		{
			name:   "invalid start ignored",
			filter: DateFilter{Start: "soon", MaxColumns: 3},
			want:   []string{"2024-01-01", "2024-01-10", "2024-02-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterDates(dates, tt.filter))
		})
	}
}
