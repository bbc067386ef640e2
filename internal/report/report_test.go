package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payoutrecon/internal/model"
	"payoutrecon/internal/reconcile"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func readCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	recs, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	return recs
}

func column(t *testing.T, recs [][]string, name string) int {
	t.Helper()
	for i, h := range recs[0] {
		if h == name {
			return i
		}
	}
	t.Fatalf("column %q not found", name)
	return -1
}

func sampleSummaries() []model.DailySummary {
	return []model.DailySummary{
		{
			Date: "2024-03-10", Timezone: "UTC", GroupBy: model.GroupByOrderDate, OrderCount: 2,
			Sales:      model.SalesTotals{GrossSales: dec("150"), NetSales: dec("150"), TotalReceived: dec("150")},
			Payments:   model.GatewayTotals{ShopifyPayments: dec("150")},
			Payout:     model.PayoutMetrics{AmountBeforeFees: dec("150"), Count: 2},
			Balance:    model.Balance{TotalReceipts: dec("150"), ExpectedPayout: dec("150"), Percentage: dec("100")},
			OrderNames: []string{"#1", "#2"},
		},
		{
			Date: "2024-03-11", Timezone: "UTC", GroupBy: model.GroupByOrderDate, OrderCount: 1,
			Sales:             model.SalesTotals{GrossSales: dec("1200.5"), NetSales: dec("1200.5"), TotalReceived: dec("1200.5")},
			Payments:          model.GatewayTotals{ShopifyPayments: dec("1200.5")},
			Payout:            model.PayoutMetrics{AmountBeforeFees: dec("1000"), Count: 1, PendingCount: 1, PendingAmount: dec("5")},
			PayoutAdjustments: dec("-4"),
			Balance: model.Balance{
				TotalReceipts: dec("1200.5"), ExpectedPayout: dec("1000"),
				Difference: dec("200.5"), Percentage: dec("83.3"), Mismatch: true,
			},
			OrderNames: []string{"#3"},
		},
	}
}

func TestWriteOrderRows(t *testing.T) {
	rows := []model.OrderReconciliation{{
		Date:      "2024-03-10",
		Timezone:  "UTC",
		OrderName: "#1001",
		CreatedAt: time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC),
		Sales:     model.SalesTotals{NetSales: dec("100"), Discounts: dec("-5")},
		Payout:    model.PayoutMetrics{Statuses: []string{"paid"}, Types: []string{"charge", "refund"}},
		Balance:   model.Balance{Difference: dec("2.5"), Mismatch: true},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteOrderRows(&buf, rows))
	recs := readCSV(t, buf.Bytes())
	require.Len(t, recs, 2)

	assert.Equal(t, "date", recs[0][0])
	assert.Equal(t, "#1001", recs[1][column(t, recs, "order_name")])
	assert.Equal(t, "2024-03-10 15:04:05 UTC", recs[1][column(t, recs, "order_created_at")])
	assert.Equal(t, "-5.00", recs[1][column(t, recs, "sales_discounts")])
	assert.Equal(t, "charge, refund", recs[1][column(t, recs, "payout_types")])
	assert.Equal(t, "2.50", recs[1][column(t, recs, "reconciliation_difference")])
	assert.Equal(t, "true", recs[1][column(t, recs, "reconciliation_mismatch")])
}

func TestWriteSummariesAndTransposed(t *testing.T) {
	summaries := sampleSummaries()

	var ts bytes.Buffer
	require.NoError(t, WriteSummaries(&ts, summaries))
	recs := readCSV(t, ts.Bytes())
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"date", "timezone", "group_by", "order_count"}, recs[0][:4])
	assert.Equal(t, "1200.50", recs[2][column(t, recs, "net_sales")])
	assert.Equal(t, "-4.00", recs[2][column(t, recs, "payout_type_adjustment")])

	var tr bytes.Buffer
	require.NoError(t, WriteTransposed(&tr, summaries))
	trecs := readCSV(t, tr.Bytes())
	assert.Equal(t, []string{"metric", "2024-03-10", "2024-03-11"}, trecs[0])
	require.Len(t, trecs, len(summaryMetrics)+1)

	var mismatch []string
	for _, r := range trecs {
		if r[0] == "mismatch" {
			mismatch = r
		}
	}
	assert.Equal(t, []string{"mismatch", "false", "true"}, mismatch)
}

func TestWriteTrace(t *testing.T) {
	summaries := append(sampleSummaries(), model.DailySummary{Date: "2024-03-12"})

	var buf bytes.Buffer
	require.NoError(t, WriteTrace(&buf, summaries))
	var got map[string][]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"#1", "#2"}, got["2024-03-10"])
	assert.Equal(t, []string{}, got["2024-03-12"])
}

func TestWriteSourceBreakdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSourceBreakdown(&buf, []model.SourceSummary{{
		Date: "2024-03-10", SourceLocation: "Main Street", OrderCount: 3,
		Payments: model.GatewayTotals{Cash: dec("12")},
	}}))
	recs := readCSV(t, buf.Bytes())
	require.Len(t, recs, 2)
	assert.Equal(t, "Main Street", recs[1][1])
	assert.Equal(t, "12.00", recs[1][column(t, recs, "cash")])
}

func TestRefundWriters(t *testing.T) {
	created := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	analyses := []model.RefundAnalysis{{
		OrderName:        "#1",
		OrderCreatedAt:   created,
		OrderProcessedAt: created,
		TotalRefunded:    dec("20"),
		TransactionRefunds: []model.RefundMovement{{
			Source: model.RefundSourceTransaction, TransactionID: "t1", Kind: "REFUND",
			Gateway: "shopify_payments", Amount: dec("20"), ProcessedAt: created.Add(48 * time.Hour),
		}},
		RefundTransactions: []model.RefundMovement{{
			Source: model.RefundSourceObjectTransaction, TransactionID: "t1", RefundID: "r1",
			Amount: dec("20"), ProcessedAt: created.Add(48 * time.Hour),
		}},
		Discrepancies: []string{"Order total vs Line items: $20.00"},
		Dates:         model.RefundDates{OrderCreated: created, OrderProcessed: created},
		UniqueDates:   2,
	}}
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	var sum bytes.Buffer
	require.NoError(t, WriteRefundSummary(&sum, analyses, ny))
	recs := readCSV(t, sum.Bytes())
	assert.Equal(t, "2024-03-01", recs[1][column(t, recs, "order_created_date")])
	assert.Equal(t, "true", recs[1][column(t, recs, "has_discrepancies")])

	var tx bytes.Buffer
	require.NoError(t, WriteRefundTransactions(&tx, analyses, time.UTC))
	recs = readCSV(t, tx.Bytes())
	require.Len(t, recs, 3)
	assert.Equal(t, model.RefundSourceObjectTransaction, recs[2][1])
	assert.Equal(t, "2024-03-03", recs[2][column(t, recs, "processed_date")])
	assert.Equal(t, "", recs[2][column(t, recs, "created_date")])

	var dg bytes.Buffer
	require.NoError(t, WriteRefundDateGrouping(&dg, analyses, time.UTC))
	recs = readCSV(t, dg.Bytes())
	assert.Equal(t, "2024-03-01", recs[1][1])
	assert.Equal(t, "", recs[1][column(t, recs, "refund_created")])
}

func TestRangeArtifacts(t *testing.T) {
	res := &reconcile.RangeResult{
		Location:  time.UTC,
		GroupBy:   model.GroupByPayoutDate,
		Summaries: sampleSummaries(),
	}
	arts, err := RangeArtifacts(res, reconcile.DateFilter{})
	require.NoError(t, err)
	require.Len(t, arts, 6)
	assert.Equal(t, "order_reconciliation_payout_date_UTC.csv", arts[0].Filename)
	assert.Equal(t, model.ReportMismatches, arts[5].Kind)
	assert.Equal(t, "Payment_Reconciliation_Mismatches_UTC.xlsx", arts[5].Filename)
	assert.Equal(t, ContentTypeXLSX, arts[5].ContentType)

	res.Summaries = res.Summaries[:1]
	res.GroupBy = model.GroupByOrderDate
	arts, err = RangeArtifacts(res, reconcile.DateFilter{})
	require.NoError(t, err)
	assert.Len(t, arts, 5, "no workbook without mismatches")
	assert.Equal(t, "daily_summary_UTC.csv", arts[1].Filename)
}

func TestDailyArtifacts(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	d, _ := reconcile.ParseDay("2024-03-10")
	res := &reconcile.DailyResult{Day: d, Location: ny, Summary: sampleSummaries()[0]}

	arts, err := DailyArtifacts(res)
	require.NoError(t, err)
	require.Len(t, arts, 3)
	assert.Equal(t, "daily_orders_2024-03-10_ShopTimezone.csv", arts[0].Filename)
	assert.Equal(t, ContentTypeJSON, arts[2].ContentType)
}

func TestRefundArtifacts(t *testing.T) {
	arts, err := RefundArtifacts(nil, time.UTC)
	require.NoError(t, err)
	require.Len(t, arts, 3)
	assert.Equal(t, RefundSummaryFile, arts[0].Filename)
	assert.Contains(t, string(arts[0].Data), "order_name,")
}
