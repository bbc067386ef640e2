package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"payoutrecon/internal/model"
	"payoutrecon/internal/reconcile"
	"payoutrecon/internal/report"
)

// defaultRefundWindow is January 1 of the current year through two days ago.
func defaultRefundWindow(now time.Time) (reconcile.Day, reconcile.Day) {
	end := reconcile.DayOf(now, now.Location()).AddDays(-2)
	start := reconcile.Day{Year: now.Year(), Month: time.January, Day: 1}
	if end.Before(start) {
		start = end
	}
	return start, end
}

func (c *cli) refundsCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "refunds",
		Short: "Compare the four sources of refund amounts per order",
		Long: `refunds compares the order's total refunded amount, REFUND transactions,
refund line items and refund-object transactions for every order created in
the window, and reports discrepancies and refund date spreads.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := reconcile.LoadTimezone("shop", c.opts.ShopTimezone)
			if err != nil {
				return err
			}
			from, to := defaultRefundWindow(c.now().In(loc))
			if start != "" {
				if from, err = reconcile.ParseDay(start); err != nil {
					return fmt.Errorf("--start: %w", err)
				}
			}
			if end != "" {
				if to, err = reconcile.ParseDay(end); err != nil {
					return fmt.Errorf("--end: %w", err)
				}
			}
			if to.Before(from) {
				return fmt.Errorf("--end %s is before --start %s", to, from)
			}

			fetcher, err := c.orders()
			if err != nil {
				return err
			}
			orders, err := fetcher.FetchOrders(cmd.Context(), from.Start(loc).UTC(), to.End(loc).UTC())
			if err != nil {
				return fmt.Errorf("fetch orders: %w", err)
			}
			c.log.Info("refund_orders_fetched", zap.Int("orders", len(orders)))

			analyses := reconcile.AnalyzeRefunds(orders, loc, c.opts.Tolerance)
			summary := reconcile.SummarizeRefunds(analyses, c.opts.Tolerance)
			summary.Start, summary.End = from.String(), to.String()
			summary.OrdersScanned = len(orders)

			arts, err := report.RefundArtifacts(analyses, loc)
			if err != nil {
				return err
			}
			if err := c.writeArtifacts(cmd, arts); err != nil {
				return err
			}
			printRefundSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first order day (default: January 1 of this year)")
	cmd.Flags().StringVar(&end, "end", "", "last order day (default: two days ago)")
	return cmd
}

func printRefundSummary(w io.Writer, s model.RefundSummary) {
	fmt.Fprintf(w, "\nREFUND SOURCE ANALYSIS %s to %s\n", s.Start, s.End)
	fmt.Fprintf(w, "Orders scanned:            %d\n", s.OrdersScanned)
	fmt.Fprintf(w, "Orders with refunds:       %d\n", s.OrdersWithRefunds)
	fmt.Fprintf(w, "Orders with discrepancies: %d\n", s.OrdersWithDiscrepancy)
	fmt.Fprintf(w, "Accuracy rate:             %s%%\n", s.AccuracyRate.StringFixed(1))
	fmt.Fprintf(w, "Refunds on the order date: %d\n", s.SameDateOrders)
	fmt.Fprintf(w, "Refunds on other dates:    %d (max spread %d days)\n", s.DifferentDateOrders, s.MaxSpreadDays)
	for _, r := range s.Recommendations {
		fmt.Fprintf(w, "  - %s\n", r)
	}
}
