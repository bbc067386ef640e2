// Package report renders reconciliation results as CSV, JSON and XLSX files.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"payoutrecon/internal/model"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func day(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

type orderColumn struct {
	name  string
	value func(r model.OrderReconciliation) string
}

var orderColumns = []orderColumn{
	{"date", func(r model.OrderReconciliation) string { return r.Date }},
	{"timezone", func(r model.OrderReconciliation) string { return r.Timezone }},
	{"order_name", func(r model.OrderReconciliation) string { return r.OrderName }},
	{"order_id", func(r model.OrderReconciliation) string { return r.OrderID }},
	{"source_location", func(r model.OrderReconciliation) string { return r.SourceLocation }},
	{"order_created_at", func(r model.OrderReconciliation) string { return r.CreatedAt.Format("2006-01-02 15:04:05 MST") }},
	{"order_count", func(model.OrderReconciliation) string { return "1" }},
	{"sales_gross_sales", func(r model.OrderReconciliation) string { return money(r.Sales.GrossSales) }},
	{"sales_discounts", func(r model.OrderReconciliation) string { return money(r.Sales.Discounts) }},
	{"sales_net_sales", func(r model.OrderReconciliation) string { return money(r.Sales.NetSales) }},
	{"sales_tax", func(r model.OrderReconciliation) string { return money(r.Sales.Tax) }},
	{"sales_shipping", func(r model.OrderReconciliation) string { return money(r.Sales.Shipping) }},
	{"sales_tips", func(r model.OrderReconciliation) string { return money(r.Sales.Tips) }},
	{"sales_total_received", func(r model.OrderReconciliation) string { return money(r.Sales.TotalReceived) }},
	{"sales_funds_collected", func(r model.OrderReconciliation) string { return money(r.Sales.FundsCollected) }},
	{"payments_shopify_payments", func(r model.OrderReconciliation) string { return money(r.Payments.ShopifyPayments) }},
	{"payments_cash", func(r model.OrderReconciliation) string { return money(r.Payments.Cash) }},
	{"payments_manual", func(r model.OrderReconciliation) string { return money(r.Payments.Manual) }},
	{"payments_gift_card", func(r model.OrderReconciliation) string { return money(r.Payments.GiftCard) }},
	{"payments_shop_cash", func(r model.OrderReconciliation) string { return money(r.Payments.ShopCash) }},
	{"payments_other", func(r model.OrderReconciliation) string { return money(r.Payments.Other) }},
	{"payments_shopify_refunds", func(r model.OrderReconciliation) string { return money(r.Refunds.ShopifyPayments) }},
	{"payments_cash_refunds", func(r model.OrderReconciliation) string { return money(r.Refunds.Cash) }},
	{"payments_manual_refunds", func(r model.OrderReconciliation) string { return money(r.Refunds.Manual) }},
	{"payments_gift_card_refunds", func(r model.OrderReconciliation) string { return money(r.Refunds.GiftCard) }},
	{"payments_shop_cash_refunds", func(r model.OrderReconciliation) string { return money(r.Refunds.ShopCash) }},
	{"payments_other_refunds", func(r model.OrderReconciliation) string { return money(r.Refunds.Other) }},
	{"payments_cash_change", func(r model.OrderReconciliation) string { return money(r.CashChange) }},
	{"payments_total_refunds", func(r model.OrderReconciliation) string { return money(r.Sales.TotalRefunds) }},
	{"shopify_payout_refunds", func(r model.OrderReconciliation) string { return money(r.Payout.Refunds) }},
	{"shopify_amount_before_fees", func(r model.OrderReconciliation) string { return money(r.Payout.AmountBeforeFees) }},
	{"shopify_fees", func(r model.OrderReconciliation) string { return money(r.Payout.Fees) }},
	{"shopify_net_deposit", func(r model.OrderReconciliation) string { return money(r.Payout.NetDeposit) }},
	{"payout_count", func(r model.OrderReconciliation) string { return strconv.Itoa(r.Payout.Count) }},
	{"payout_statuses", func(r model.OrderReconciliation) string { return strings.Join(r.Payout.Statuses, ", ") }},
	{"payout_types", func(r model.OrderReconciliation) string { return strings.Join(r.Payout.Types, ", ") }},
	{"payout_date", func(r model.OrderReconciliation) string { return r.PayoutDate }},
	{"pending_payout_amount", func(r model.OrderReconciliation) string { return money(r.Payout.PendingAmount) }},
	{"pending_payout_count", func(r model.OrderReconciliation) string { return strconv.Itoa(r.Payout.PendingCount) }},
	{"refunds_summary", func(r model.OrderReconciliation) string { return r.RefundsSummary }},
	{"refunds_count", func(r model.OrderReconciliation) string { return strconv.Itoa(r.RefundsCount) }},
	{"reconciliation_difference", func(r model.OrderReconciliation) string { return money(r.Balance.Difference) }},
	{"reconciliation_mismatch", func(r model.OrderReconciliation) string { return strconv.FormatBool(r.Balance.Mismatch) }},
	{"reconciliation_percentage", func(r model.OrderReconciliation) string { return money(r.Balance.Percentage) }},
	{"reconciliation_total_receipts", func(r model.OrderReconciliation) string { return money(r.Balance.TotalReceipts) }},
	{"reconciliation_expected_payout", func(r model.OrderReconciliation) string { return money(r.Balance.ExpectedPayout) }},
	{"reconciliation_timezone_note", func(r model.OrderReconciliation) string { return r.TimezoneNote }},
}

// WriteOrderRows writes one line per order reconciliation.
func WriteOrderRows(w io.Writer, rows []model.OrderReconciliation) error {
	header := make([]string, len(orderColumns))
	for i, c := range orderColumns {
		header[i] = c.name
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		line := make([]string, len(orderColumns))
		for j, c := range orderColumns {
			line[j] = c.value(r)
		}
		out[i] = line
	}
	return writeAll(w, header, out)
}

type summaryMetric struct {
	name  string
	value func(s model.DailySummary) string
}

var summaryMetrics = []summaryMetric{
	{"order_count", func(s model.DailySummary) string { return strconv.Itoa(s.OrderCount) }},
	{"gross_sales", func(s model.DailySummary) string { return money(s.Sales.GrossSales) }},
	{"discounts", func(s model.DailySummary) string { return money(s.Sales.Discounts) }},
	{"net_sales", func(s model.DailySummary) string { return money(s.Sales.NetSales) }},
	{"tax", func(s model.DailySummary) string { return money(s.Sales.Tax) }},
	{"shipping", func(s model.DailySummary) string { return money(s.Sales.Shipping) }},
	{"tips", func(s model.DailySummary) string { return money(s.Sales.Tips) }},
	{"total_received", func(s model.DailySummary) string { return money(s.Sales.TotalReceived) }},
	{"funds_collected", func(s model.DailySummary) string { return money(s.Sales.FundsCollected) }},
	{"refunds", func(s model.DailySummary) string { return money(s.Sales.TotalRefunds) }},
	{"outstanding", func(s model.DailySummary) string { return money(s.Sales.Outstanding) }},
	{"shopify_payments", func(s model.DailySummary) string { return money(s.Payments.ShopifyPayments) }},
	{"cash", func(s model.DailySummary) string { return money(s.Payments.Cash) }},
	{"manual", func(s model.DailySummary) string { return money(s.Payments.Manual) }},
	{"gift_card", func(s model.DailySummary) string { return money(s.Payments.GiftCard) }},
	{"shop_cash", func(s model.DailySummary) string { return money(s.Payments.ShopCash) }},
	{"other_payments", func(s model.DailySummary) string { return money(s.Payments.Other) }},
	{"shopify_payments_refunds", func(s model.DailySummary) string { return money(s.Refunds.ShopifyPayments) }},
	{"cash_refunds", func(s model.DailySummary) string { return money(s.Refunds.Cash) }},
	{"other_refunds", func(s model.DailySummary) string {
		return money(decimal.Sum(s.Refunds.Manual, s.Refunds.GiftCard, s.Refunds.ShopCash, s.Refunds.Other))
	}},
	{"cash_change", func(s model.DailySummary) string { return money(s.CashChange) }},
	{"payout_amount", func(s model.DailySummary) string { return money(s.Payout.AmountBeforeFees) }},
	{"payout_refunds", func(s model.DailySummary) string { return money(s.Payout.Refunds) }},
	{"payout_fees", func(s model.DailySummary) string { return money(s.Payout.Fees) }},
	{"payout_net_deposit", func(s model.DailySummary) string { return money(s.Payout.NetDeposit) }},
	{"payout_count", func(s model.DailySummary) string { return strconv.Itoa(s.Payout.Count) }},
	{"pending_payout_amount", func(s model.DailySummary) string { return money(s.Payout.PendingAmount) }},
	{"pending_payout_count", func(s model.DailySummary) string { return strconv.Itoa(s.Payout.PendingCount) }},
	{"payout_charges", func(s model.DailySummary) string { return money(s.PayoutCharges) }},
	{"payout_type_adjustment", func(s model.DailySummary) string { return money(s.PayoutAdjustments) }},
	{"payout_type_chargeback", func(s model.DailySummary) string { return money(s.PayoutChargebacks) }},
	{"payout_type_refund", func(s model.DailySummary) string { return money(s.PayoutTypeRefunds) }},
	{"total_receipts", func(s model.DailySummary) string { return money(s.Balance.TotalReceipts) }},
	{"expected_payout", func(s model.DailySummary) string { return money(s.Balance.ExpectedPayout) }},
	{"reconciliation_difference", func(s model.DailySummary) string { return money(s.Balance.Difference) }},
	{"reconciliation_percentage", func(s model.DailySummary) string { return money(s.Balance.Percentage) }},
	{"mismatch", func(s model.DailySummary) string { return strconv.FormatBool(s.Balance.Mismatch) }},
	{"earliest_order", func(s model.DailySummary) string { return s.EarliestOrder.Name }},
	{"latest_order", func(s model.DailySummary) string { return s.LatestOrder.Name }},
}

// WriteSummaries writes the time series: one line per day.
func WriteSummaries(w io.Writer, summaries []model.DailySummary) error {
	header := []string{"date", "timezone", "group_by"}
	for _, m := range summaryMetrics {
		header = append(header, m.name)
	}
	out := make([][]string, len(summaries))
	for i, s := range summaries {
		line := []string{s.Date, s.Timezone, s.GroupBy}
		for _, m := range summaryMetrics {
			line = append(line, m.value(s))
		}
		out[i] = line
	}
	return writeAll(w, header, out)
}

// WriteTransposed writes metrics as rows and dates as columns.
func WriteTransposed(w io.Writer, summaries []model.DailySummary) error {
	header := []string{"metric"}
	for _, s := range summaries {
		header = append(header, s.Date)
	}
	out := make([][]string, len(summaryMetrics))
	for i, m := range summaryMetrics {
		line := []string{m.name}
		for _, s := range summaries {
			line = append(line, m.value(s))
		}
		out[i] = line
	}
	return writeAll(w, header, out)
}

// WriteSourceBreakdown writes the per-day, per-source split.
func WriteSourceBreakdown(w io.Writer, sources []model.SourceSummary) error {
	header := []string{"date", "source_location", "order_count", "gross_sales", "net_sales", "tax",
		"shipping", "tips", "refunds", "shopify_payments", "cash", "manual", "gift_card", "shop_cash", "other_payments"}
	out := make([][]string, len(sources))
	for i, s := range sources {
		out[i] = []string{
			s.Date, s.SourceLocation, strconv.Itoa(s.OrderCount),
			money(s.Sales.GrossSales), money(s.Sales.NetSales), money(s.Sales.Tax),
			money(s.Sales.Shipping), money(s.Sales.Tips), money(s.Sales.TotalRefunds),
			money(s.Payments.ShopifyPayments), money(s.Payments.Cash), money(s.Payments.Manual),
			money(s.Payments.GiftCard), money(s.Payments.ShopCash), money(s.Payments.Other),
		}
	}
	return writeAll(w, header, out)
}

// WriteTrace writes a JSON object mapping each date to its order names.
func WriteTrace(w io.Writer, summaries []model.DailySummary) error {
	trace := make(map[string][]string, len(summaries))
	for _, s := range summaries {
		names := s.OrderNames
		if names == nil {
			names = []string{}
		}
		trace[s.Date] = names
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(trace); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}

// WriteRefundSummary writes one line per analysed order.
func WriteRefundSummary(w io.Writer, analyses []model.RefundAnalysis, loc *time.Location) error {
	header := []string{"order_name", "order_created_date", "order_processed_date", "total_refunded",
		"transaction_refunds_total", "line_items_total", "refund_transactions_total", "line_item_count",
		"has_discrepancies", "discrepancies", "unique_dates", "date_spread_days"}
	out := make([][]string, len(analyses))
	for i, a := range analyses {
		out[i] = []string{
			a.OrderName, day(a.OrderCreatedAt, loc), day(a.OrderProcessedAt, loc),
			money(a.TotalRefunded), money(a.TransactionRefundsTotal), money(a.LineItemsTotal),
			money(a.RefundTransactionsTotal), strconv.Itoa(a.LineItemCount),
			strconv.FormatBool(a.HasDiscrepancies()), strings.Join(a.Discrepancies, "; "),
			strconv.Itoa(a.UniqueDates), strconv.Itoa(a.DateSpreadDays),
		}
	}
	return writeAll(w, header, out)
}

// WriteRefundTransactions writes every refund movement of both sources.
func WriteRefundTransactions(w io.Writer, analyses []model.RefundAnalysis, loc *time.Location) error {
	header := []string{"order_name", "source", "transaction_id", "refund_id", "kind", "gateway",
		"amount", "created_date", "processed_date", "refund_created_date", "test"}
	var out [][]string
	for _, a := range analyses {
		moves := append(append([]model.RefundMovement{}, a.TransactionRefunds...), a.RefundTransactions...)
		for _, m := range moves {
			out = append(out, []string{
				a.OrderName, m.Source, m.TransactionID, m.RefundID, m.Kind, m.Gateway,
				money(m.Amount), day(m.CreatedAt, loc), day(m.ProcessedAt, loc),
				day(m.RefundCreatedAt, loc), strconv.FormatBool(m.Test),
			})
		}
	}
	return writeAll(w, header, out)
}

// WriteRefundDateGrouping writes the candidate grouping dates per order.
func WriteRefundDateGrouping(w io.Writer, analyses []model.RefundAnalysis, loc *time.Location) error {
	header := []string{"order_name", "order_created", "order_processed", "transaction_processed",
		"refund_created", "refund_transaction_processed", "unique_dates", "date_spread_days"}
	out := make([][]string, len(analyses))
	for i, a := range analyses {
		d := a.Dates
		out[i] = []string{
			a.OrderName, day(d.OrderCreated, loc), day(d.OrderProcessed, loc),
			day(d.TransactionProcessed, loc), day(d.RefundCreated, loc),
			day(d.RefundTransactionProcessed, loc),
			strconv.Itoa(a.UniqueDates), strconv.Itoa(a.DateSpreadDays),
		}
	}
	return writeAll(w, header, out)
}
