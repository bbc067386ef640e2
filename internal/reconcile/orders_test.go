package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payoutrecon/internal/model"
)

func TestReconcileOrders(t *testing.T) {
	orders := []model.Order{
		cardOrder("#1002", "2024-03-10T18:00:00Z", "50.00"),
		cardOrder("#1001", "2024-03-10T15:00:00Z", "100.00"),
		cardOrder("#1003", "2024-03-11T01:00:00Z", "30.00"),
	}
	payouts := []model.PayoutTransaction{
		paid("#1001", model.PayoutTypeCharge, "2024-03-12", "100.00", "3.20"),
		paid("#1002", model.PayoutTypeCharge, "2024-03-12", "45.00", "1.50"),
		{Order: "#1003", Type: model.PayoutTypeCharge, PayoutStatus: "pending", Amount: dec("30")},
	}

	rows := ReconcileOrders(orders, payouts, Options{})
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"#1001", "#1002", "#1003"}, []string{rows[0].OrderName, rows[1].OrderName, rows[2].OrderName})

	r := rows[0]
	assert.Equal(t, "2024-03-10", r.Date)
	assert.Equal(t, "UTC", r.Timezone)
	assert.Equal(t, "web", r.SourceLocation)
	assert.Equal(t, "Original UTC dates", r.TimezoneNote)
	assert.Equal(t, "2024-03-12", r.PayoutDate)
	assertDec(t, "100", r.Payout.AmountBeforeFees)
	assertDec(t, "3.2", r.Payout.Fees)
	assertDec(t, "96.8", r.Payout.NetDeposit)
	assert.Equal(t, []string{"paid"}, r.Payout.Statuses)
	assert.Equal(t, []string{"charge"}, r.Payout.Types)
	assert.False(t, r.Balance.Mismatch)
	assertDec(t, "100", r.Balance.Percentage)

	short := rows[1]
	assert.True(t, short.Balance.Mismatch)
	assertDec(t, "5", short.Balance.Difference)
	assertDec(t, "90", short.Balance.Percentage)

	pending := rows[2]
	assert.Equal(t, 1, pending.Payout.PendingCount)
	assertDec(t, "30", pending.Payout.PendingAmount)
	assert.Equal(t, 0, pending.Payout.Count)
	assert.False(t, pending.Balance.Mismatch, "nothing paid out yet")
	assert.Empty(t, pending.PayoutDate)
}

func TestReconcileOrders_DayFilterInTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	orders := []model.Order{
		cardOrder("#1", "2024-03-10T03:00:00Z", "10"),
		cardOrder("#2", "2024-03-10T15:00:00Z", "10"),
	}
	day := Day{Year: 2024, Month: time.March, Day: 9}

	rows := ReconcileOrders(orders, nil, Options{Location: ny, Day: day})
	require.Len(t, rows, 1)
	assert.Equal(t, "#1", rows[0].OrderName)
	assert.Equal(t, "2024-03-09", rows[0].Date)
	assert.Equal(t, "Payout dates converted to America/New_York", rows[0].TimezoneNote)
}

func TestReconcileOrders_Tolerance(t *testing.T) {
	orders := []model.Order{cardOrder("#1", "2024-03-10T15:00:00Z", "100.005")}
	payouts := []model.PayoutTransaction{paid("#1", model.PayoutTypeCharge, "2024-03-12", "100", "0")}
	zero := decimal.Zero
	wide := dec("1")

	tests := []struct {
		name     string
		tol      *decimal.Decimal
		mismatch bool
	}{
		{"unset uses default", nil, false},
		{"zero is exact", &zero, true},
		{"explicit", &wide, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := ReconcileOrders(orders, payouts, Options{Tolerance: tt.tol})
			require.Len(t, rows, 1)
			assert.Equal(t, tt.mismatch, rows[0].Balance.Mismatch)
			assertDec(t, "0.005", rows[0].Balance.Difference)
		})
	}
}

func TestNewEngine_Tolerance(t *testing.T) {
	assert.True(t, NewEngine(nil, decimal.Zero, 0).tolerance.IsZero())
	assertDec(t, "0.01", NewEngine(nil, dec("-1"), 0).tolerance)
	assertDec(t, "0.25", NewEngine(nil, dec("0.25"), 0).tolerance)
}

func TestSalesOf(t *testing.T) {
	o := model.Order{
		Subtotal:         dec("120"),
		TotalDiscounts:   dec("20"),
		TotalPrice:       dec("100"),
		TotalTax:         dec("8"),
		TotalShipping:    dec("5"),
		TotalTips:        dec("2"),
		TotalRefunded:    dec("10"),
		TotalOutstanding: dec("1"),
	}
	s := SalesOf(o)
	assertDec(t, "120", s.GrossSales)
	assertDec(t, "-20", s.Discounts)
	assertDec(t, "100", s.NetSales)
	assertDec(t, "115", s.FundsCollected)
	assertDec(t, "10", s.TotalRefunds)
	assertDec(t, "1", s.Outstanding)
}

func TestPayoutMetrics_Refunds(t *testing.T) {
	rows := []model.PayoutTransaction{
		paid("#1", model.PayoutTypeCharge, "2024-03-12", "100", "3"),
		paid("#1", model.PayoutTypeRefund, "2024-03-11", "-25", "0"),
	}
	m, first := PayoutMetrics(rows, time.UTC)
	assertDec(t, "25", m.Refunds)
	assertDec(t, "100", m.AmountBeforeFees)
	assertDec(t, "72", m.NetDeposit)
	assert.Equal(t, 2, m.Count)
	assert.Equal(t, []string{"charge", "refund"}, m.Types)
	assert.Equal(t, "2024-03-11", first.String())
}

func TestComputeBalance(t *testing.T) {
	tests := []struct {
		name     string
		payments string
		charged  string
		refunds  string
		mismatch bool
		diff     string
		pct      string
	}{
		{"exact", "100", "100", "0", false, "0", "100"},
		{"within tolerance", "100.01", "100", "0", false, "0.01", "99.99"},
		{"short payout", "100", "90", "0", true, "10", "90"},
		{"refunds on both sides", "80", "80", "20", false, "0", "100"},
		{"nothing paid", "100", "0", "0", false, "100", "0"},
		{"no receipts", "0", "0", "0", false, "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeBalance(dec(tt.payments), model.PayoutMetrics{
				AmountBeforeFees: dec(tt.charged),
				Refunds:          dec(tt.refunds),
			}, DefaultTolerance)
			assert.Equal(t, tt.mismatch, b.Mismatch)
			assertDec(t, tt.diff, b.Difference)
			assertDec(t, tt.pct, b.Percentage)
		})
	}
}

func TestRefundsSummary(t *testing.T) {
	assert.Equal(t, "", refundsSummary(nil))
	assert.Equal(t, "2 refunds: $5.00, $12.50", refundsSummary([]model.Refund{
		{Total: dec("5")},
		{Total: dec("12.5")},
	}))
}
