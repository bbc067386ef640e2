package main

import (
	"fmt"
	"io"
	"strings"

	"payoutrecon/internal/model"
	"payoutrecon/internal/reconcile"
)

func printSummary(w io.Writer, title, timezone string, rows []model.OrderReconciliation) {
	t := reconcile.TotalsOf(rows)
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
	fmt.Fprintf(w, "Timezone:               %s\n", timezone)
	fmt.Fprintf(w, "Total Orders:           %d\n", t.Orders)
	fmt.Fprintf(w, "Total Net Sales:        $%s\n", t.NetSales.StringFixed(2))
	fmt.Fprintf(w, "Total Shopify Payments: $%s\n", t.ShopifyPayments.StringFixed(2))
	fmt.Fprintf(w, "Total Payout Amount:    $%s\n", t.PayoutAmount.StringFixed(2))
	fmt.Fprintf(w, "Total Difference:       $%s\n", t.Difference.StringFixed(2))
	fmt.Fprintf(w, "Orders with Mismatches: %d\n", len(t.Mismatches))

	if len(t.Mismatches) == 0 {
		fmt.Fprintln(w, "\nAll orders reconciled.")
		return
	}
	fmt.Fprintln(w, "\nOrders with mismatches:")
	for _, r := range t.Mismatches {
		fmt.Fprintf(w, "  %s (%s): $%s\n", r.OrderName, r.Date, r.Balance.Difference.StringFixed(2))
	}
}

func printMismatchAnalysis(w io.Writer, a model.MismatchAnalysis) {
	fmt.Fprintf(w, "\nDays analysed:  %d\n", a.TotalDays)
	fmt.Fprintf(w, "Mismatch days:  %d (%s%%)\n", a.MismatchDays, a.MismatchPercentage.StringFixed(1))
	fmt.Fprintf(w, "Match rate:     %s%%\n", a.MatchRate.StringFixed(1))
	if len(a.Largest) > 0 {
		fmt.Fprintln(w, "Largest differences:")
		for _, s := range a.Largest {
			fmt.Fprintf(w, "  %s: $%s\n", s.Date, s.Balance.Difference.StringFixed(2))
		}
	}
	fmt.Fprintf(w, "High sales, low payout days: %d\n", a.HighSalesLowPayoutDays)
	fmt.Fprintf(w, "Low sales, high payout days: %d\n", a.LowSalesHighPayoutDays)
	fmt.Fprintf(w, "Days with multi-day orders:  %d\n", a.MultiDayOrderSpans)
}
