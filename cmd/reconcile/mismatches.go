package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"payoutrecon/internal/model"
	"payoutrecon/internal/reconcile"
	"payoutrecon/internal/report"
)

func (c *cli) mismatchesCmd() *cobra.Command {
	var (
		payouts, groupBy string
		open             bool
		filter           reconcile.DateFilter
	)
	cmd := &cobra.Command{
		Use:   "mismatches",
		Short: "Write the transposed workbook of mismatching days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := c.opts.Filter
			flags := cmd.Flags()
			if flags.Changed("start") {
				f.Start = filter.Start
			}
			if flags.Changed("days") {
				f.MaxDays = filter.MaxDays
			}
			if flags.Changed("columns") {
				f.MaxColumns = filter.MaxColumns
			}
			if flags.Changed("reverse") {
				f.Reverse = filter.Reverse
			}
			if f.Start != "" {
				if _, err := reconcile.ParseDay(f.Start); err != nil {
					return fmt.Errorf("--start: %w", err)
				}
			}

			res, err := c.runRange(cmd, payouts, groupBy)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printMismatchAnalysis(out, reconcile.AnalyzeMismatches(res.Summaries))

			label := reconcile.TimezoneLabel(res.Location)
			var buf bytes.Buffer
			if err := report.WriteMismatchWorkbook(&buf, res.Summaries, f, label); err != nil {
				return err
			}
			path, err := c.writeWorkbook(report.MismatchWorkbookName(label), buf.Bytes())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %s\n", path)

			if open {
				if err := openFile(path); err != nil {
					c.log.Warn("open_failed", zap.String("file", path), zap.Error(err))
				}
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&payouts, "payouts", "", "payout CSV (default: newest file in --payout-dir)")
	fl.StringVar(&groupBy, "group-by", model.GroupByOrderDate, "order_date or payout_date")
	fl.StringVar(&filter.Start, "start", "", "first date shown (YYYY-MM-DD)")
	fl.IntVar(&filter.MaxDays, "days", 0, "days after --start to include")
	fl.IntVar(&filter.MaxColumns, "columns", 0, "maximum date columns")
	fl.BoolVar(&filter.Reverse, "reverse", false, "newest dates first")
	fl.BoolVar(&open, "open", false, "open the workbook when done")
	return cmd
}

// writeWorkbook writes the workbook under its standard name, falling back
// to a timestamped name when that file cannot be replaced (for example
// while it is open in a spreadsheet application).
func (c *cli) writeWorkbook(name string, data []byte) (string, error) {
	if err := os.MkdirAll(c.output, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	p := filepath.Join(c.output, name)
	err := os.WriteFile(p, data, 0o644)
	if err == nil {
		return p, nil
	}
	c.log.Warn("workbook_write_failed", zap.String("file", p), zap.Error(err))

	alt := filepath.Join(c.output, fmt.Sprintf("%s_%s.xlsx",
		strings.TrimSuffix(name, ".xlsx"), c.now().Format("20060102_150405")))
	if err := os.WriteFile(alt, data, 0o644); err != nil {
		return "", fmt.Errorf("write workbook: %w", err)
	}
	return alt, nil
}

func openFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
