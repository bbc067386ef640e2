package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"payoutrecon/internal/reconcile"
	"payoutrecon/internal/report"
)

func (c *cli) dailyCmd() *cobra.Command {
	var date, payouts string
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Reconcile the orders created on one day",
		Example: `  reconcile daily --date 2024-03-10 --payouts payouts.csv
  reconcile daily --date 2024-03-10 --timezone shop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := reconcile.ParseDay(date)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			loc, err := c.location()
			if err != nil {
				return err
			}
			exp, err := c.loadPayouts(payouts)
			if err != nil {
				return err
			}
			engine, err := c.engine()
			if err != nil {
				return err
			}

			res, err := engine.Daily(cmd.Context(), day, loc, exp.Rows)
			if err != nil {
				return err
			}
			c.log.Info("daily_reconciled",
				zap.String("date", day.String()),
				zap.Int("orders", len(res.Rows)),
				zap.Int("payout_rows", len(res.Payouts)),
			)

			arts, err := report.DailyArtifacts(res)
			if err != nil {
				return err
			}
			if err := c.writeArtifacts(cmd, arts); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), "DAILY SUMMARY for "+day.String(), loc.String(), res.Rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to reconcile (YYYY-MM-DD)")
	cmd.Flags().StringVar(&payouts, "payouts", "", "payout CSV (default: newest file in --payout-dir)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
