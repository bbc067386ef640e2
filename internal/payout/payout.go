// Package payout reads the Shopify Payments payout transactions export.
package payout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"payoutrecon/internal/model"
)

// DateColumns are the recognised date columns in priority order.
var DateColumns = []string{"Payout Date", "Date", "Transaction Date", "Available On"}

var (
	ErrNoDateColumn = errors.New("no recognized date column")
	ErrEmpty        = errors.New("payout export has no rows")
)

var dateLayouts = []struct {
	layout   string
	dateOnly bool
}{
	{"2006-01-02", true},
	{"01/02/2006", true},
	{"2006-01-02 15:04:05 -0700", false},
	{"2006-01-02 15:04:05 -0700 MST", false},
	{"2006-01-02 15:04:05Z07:00", false},
	{time.RFC3339, false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02T15:04:05", false},
}

// Export is a parsed payout transactions file.
type Export struct {
	Columns    []string
	DateColumn string
	// HasStatus reports whether the export carries a Payout Status column.
	HasStatus bool
	Rows      []model.PayoutTransaction
}

// Load parses a payout export. The first record is the header.
func Load(r io.Reader) (*Export, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}

	_, hasStatus := idx["Payout Status"]
	exp := &Export{Columns: header, HasStatus: hasStatus}
	for _, c := range DateColumns {
		if _, ok := idx[c]; ok {
			exp.DateColumn = c
			break
		}
	}
	if exp.DateColumn == "" {
		return nil, fmt.Errorf("%w in CSV, available columns: %s", ErrNoDateColumn, strings.Join(header, ", "))
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		get := func(col string) string {
			if i, ok := idx[col]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if strings.Join(rec, "") == "" {
			continue
		}

		row, err := parseRow(get, exp.DateColumn, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		exp.Rows = append(exp.Rows, row)
	}
	if len(exp.Rows) == 0 {
		return nil, ErrEmpty
	}
	return exp, nil
}

func parseRow(get func(string) string, dateColumn string, idx map[string]int) (model.PayoutTransaction, error) {
	var row model.PayoutTransaction
	var err error

	row.Date, row.DateOnly, err = ParseDate(get(dateColumn))
	if err != nil {
		return row, fmt.Errorf("%s: %w", dateColumn, err)
	}
	if dateColumn != "Transaction Date" {
		if v := get("Transaction Date"); v != "" {
			row.TransactionDate, _, _ = ParseDate(v)
		}
	}
	row.Type = strings.ToLower(get("Type"))
	row.Order = get("Order")
	row.PayoutStatus = strings.ToLower(get("Payout Status"))
	_, hasStatus := idx["Payout Status"]
	row.StatusUnknown = !hasStatus
	row.PayoutID = get("Payout ID")
	row.Currency = get("Currency")

	if row.Amount, err = ParseAmount(get("Amount")); err != nil {
		return row, fmt.Errorf("Amount: %w", err)
	}
	if row.Fee, err = ParseAmount(get("Fee")); err != nil {
		return row, fmt.Errorf("Fee: %w", err)
	}
	if _, ok := idx["Net"]; ok {
		if row.Net, err = ParseAmount(get("Net")); err != nil {
			return row, fmt.Errorf("Net: %w", err)
		}
	} else {
		row.Net = row.Amount.Sub(row.Fee)
	}
	return row, nil
}

// ParseDate parses the date formats found in payout exports. Values without
// a time of day are reported as date-only; timestamps without an offset are
// taken as UTC.
func ParseDate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return t, l.dateOnly, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized date %q", s)
}

// ParseAmount parses a money cell: "$1,234.50", "(12.00)", "-3", "".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}
