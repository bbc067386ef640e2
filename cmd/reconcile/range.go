package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"payoutrecon/internal/model"
	"payoutrecon/internal/reconcile"
	"payoutrecon/internal/report"
)

func (c *cli) runRange(cmd *cobra.Command, payouts, groupBy string) (*reconcile.RangeResult, error) {
	loc, err := c.location()
	if err != nil {
		return nil, err
	}
	exp, err := c.loadPayouts(payouts)
	if err != nil {
		return nil, err
	}
	engine, err := c.engine()
	if err != nil {
		return nil, err
	}
	res, err := engine.Range(cmd.Context(), loc, groupBy, exp.Rows)
	if err != nil {
		return nil, err
	}
	c.log.Info("range_reconciled",
		zap.String("start", res.Start.String()),
		zap.String("end", res.End.String()),
		zap.String("group_by", res.GroupBy),
		zap.Int("orders", len(res.Rows)),
		zap.Int("days", len(res.Summaries)),
	)
	return res, nil
}

func (c *cli) rangeCmd() *cobra.Command {
	var payouts, groupBy string
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Reconcile every day covered by a payout export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.runRange(cmd, payouts, groupBy)
			if err != nil {
				return err
			}
			arts, err := report.RangeArtifacts(res, c.opts.Filter)
			if err != nil {
				return err
			}
			if err := c.writeArtifacts(cmd, arts); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(),
				"RECONCILIATION SUMMARY "+res.Start.String()+" to "+res.End.String(),
				res.Location.String(), res.Rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&payouts, "payouts", "", "payout CSV (default: newest file in --payout-dir)")
	cmd.Flags().StringVar(&groupBy, "group-by", model.GroupByOrderDate, "order_date or payout_date")
	return cmd
}
