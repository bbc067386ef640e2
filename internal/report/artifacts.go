package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"payoutrecon/internal/model"
	"payoutrecon/internal/reconcile"
)

// Content types of generated files.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Refund analysis file names.
const (
	RefundSummaryFile      = "refund_analysis_summary.csv"
	RefundTransactionsFile = "refund_transaction_details.csv"
	RefundDateGroupingFile = "refund_date_grouping_analysis.csv"
)

// Artifact is a rendered report file.
type Artifact struct {
	Kind        string
	Filename    string
	ContentType string
	Data        []byte
}

func render(kind, filename, contentType string, write func(io.Writer) error) (Artifact, error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return Artifact{}, fmt.Errorf("render %s: %w", filename, err)
	}
	return Artifact{Kind: kind, Filename: filename, ContentType: contentType, Data: buf.Bytes()}, nil
}

// DailyArtifacts renders the reports of a single-day run.
func DailyArtifacts(res *reconcile.DailyResult) ([]Artifact, error) {
	label := reconcile.TimezoneLabel(res.Location)
	date := res.Day.String()
	summaries := []model.DailySummary{res.Summary}

	specs := []struct {
		kind, name, ct string
		write          func(io.Writer) error
	}{
		{model.ReportOrders, fmt.Sprintf("daily_orders_%s_%s.csv", date, label), ContentTypeCSV,
			func(w io.Writer) error { return WriteOrderRows(w, res.Rows) }},
		{model.ReportSummary, fmt.Sprintf("daily_summary_%s_%s.csv", date, label), ContentTypeCSV,
			func(w io.Writer) error { return WriteSummaries(w, summaries) }},
		{model.ReportTrace, fmt.Sprintf("debug_trace_%s_%s.json", date, label), ContentTypeJSON,
			func(w io.Writer) error { return WriteTrace(w, summaries) }},
	}
	out := make([]Artifact, 0, len(specs))
	for _, s := range specs {
		a, err := render(s.kind, s.name, s.ct, s.write)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// RangeArtifacts renders the reports of a range run. The mismatch workbook
// is included only when at least one day mismatches.
func RangeArtifacts(res *reconcile.RangeResult, filter reconcile.DateFilter) ([]Artifact, error) {
	label := reconcile.TimezoneLabel(res.Location)
	suffix := label
	if res.GroupBy == model.GroupByPayoutDate {
		suffix = "payout_date_" + label
	}

	specs := []struct {
		kind, name, ct string
		write          func(io.Writer) error
	}{
		{model.ReportOrders, fmt.Sprintf("order_reconciliation_%s.csv", suffix), ContentTypeCSV,
			func(w io.Writer) error { return WriteOrderRows(w, res.Rows) }},
		{model.ReportSummary, fmt.Sprintf("daily_summary_%s.csv", suffix), ContentTypeCSV,
			func(w io.Writer) error { return WriteSummaries(w, res.Summaries) }},
		{model.ReportTransposed, fmt.Sprintf("transposed_reconciliation_%s.csv", suffix), ContentTypeCSV,
			func(w io.Writer) error { return WriteTransposed(w, res.Summaries) }},
		{model.ReportSources, fmt.Sprintf("source_breakdown_%s.csv", suffix), ContentTypeCSV,
			func(w io.Writer) error { return WriteSourceBreakdown(w, res.Sources) }},
		{model.ReportTrace, fmt.Sprintf("debug_trace_%s.json", suffix), ContentTypeJSON,
			func(w io.Writer) error { return WriteTrace(w, res.Summaries) }},
	}
	out := make([]Artifact, 0, len(specs)+1)
	for _, s := range specs {
		a, err := render(s.kind, s.name, s.ct, s.write)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	wb, err := render(model.ReportMismatches, MismatchWorkbookName(label), ContentTypeXLSX, func(w io.Writer) error {
		return WriteMismatchWorkbook(w, res.Summaries, filter, label)
	})
	switch {
	case err == nil:
		out = append(out, wb)
	case !errors.Is(err, ErrNoMismatches):
		return nil, err
	}
	return out, nil
}

// RefundArtifacts renders the three refund analysis files.
func RefundArtifacts(analyses []model.RefundAnalysis, loc *time.Location) ([]Artifact, error) {
	specs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{RefundSummaryFile, func(w io.Writer) error { return WriteRefundSummary(w, analyses, loc) }},
		{RefundTransactionsFile, func(w io.Writer) error { return WriteRefundTransactions(w, analyses, loc) }},
		{RefundDateGroupingFile, func(w io.Writer) error { return WriteRefundDateGrouping(w, analyses, loc) }},
	}
	out := make([]Artifact, 0, len(specs))
	for _, s := range specs {
		a, err := render("refunds", s.name, ContentTypeCSV, s.write)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
