package report

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"payoutrecon/internal/model"
	"payoutrecon/internal/reconcile"
)

// SheetName is the worksheet holding the mismatch view.
const SheetName = "Mismatch Analysis"

// ErrNoMismatches is returned when no day qualifies for the workbook.
var ErrNoMismatches = errors.New("no mismatching days to show")

const (
	headerRow   = 3
	currencyFmt = "$#,##0.00"
	countFmt    = "0"
)

type rowKind int

const (
	rowPlain rowKind = iota
	rowSummary
	rowCheck
	rowSpacer
)

type workbookRow struct {
	label string
	kind  rowKind
	count bool
	value func(s model.DailySummary) decimal.Decimal
	// fill picks a background colour from the value, overriding the kind's.
	fill func(v decimal.Decimal) string
}

func salesTotal(s model.DailySummary) decimal.Decimal {
	return decimal.Sum(s.Sales.GrossSales, s.Sales.Discounts, s.Sales.Tax, s.Sales.Shipping, s.Sales.Tips)
}

func netPayment(s model.DailySummary) decimal.Decimal {
	return s.Sales.TotalReceived.Sub(s.Sales.TotalRefunds)
}

func gatewayPayments(s model.DailySummary) decimal.Decimal {
	return decimal.Sum(s.Payments.ShopifyPayments, s.Payments.GiftCard, s.Payments.Cash, s.Payments.Manual)
}

func paymentAdjustments(s model.DailySummary) decimal.Decimal {
	return decimal.Sum(s.PayoutAdjustments, s.PayoutChargebacks, s.PayoutTypeRefunds)
}

var (
	hundredDollars = decimal.NewFromInt(100)
	fiftyDollars   = decimal.NewFromInt(50)
	oneDollar      = decimal.NewFromInt(1)
)

var workbookRows = []workbookRow{
	{label: "Order Count", count: true, value: func(s model.DailySummary) decimal.Decimal { return decimal.NewFromInt(int64(s.OrderCount)) }},
	{label: "Gross Sales", value: func(s model.DailySummary) decimal.Decimal { return s.Sales.GrossSales }},
	{label: "Discounts", value: func(s model.DailySummary) decimal.Decimal { return s.Sales.Discounts }},
	{label: "Tax", value: func(s model.DailySummary) decimal.Decimal { return s.Sales.Tax }},
	{label: "Shipping", value: func(s model.DailySummary) decimal.Decimal { return s.Sales.Shipping }},
	{label: "Tips", value: func(s model.DailySummary) decimal.Decimal { return s.Sales.Tips }},
	{label: "Sales Total (Gross - Disc + Tax + Ship + Tips)", kind: rowSummary, value: salesTotal},
	{label: "Net Payment Expected", value: netPayment},
	{label: "Refunds", value: func(s model.DailySummary) decimal.Decimal { return s.Sales.TotalRefunds }},
	{label: "Expected from Sales (Net + Refunds)", kind: rowSummary, value: func(s model.DailySummary) decimal.Decimal {
		return netPayment(s).Add(s.Sales.TotalRefunds)
	}},
	{label: "Sales Balance Check", kind: rowCheck, value: func(s model.DailySummary) decimal.Decimal {
		return salesTotal(s).Sub(netPayment(s).Add(s.Sales.TotalRefunds))
	}, fill: func(v decimal.Decimal) string {
		if v.Abs().GreaterThan(oneDollar) {
			return "FFF2CC"
		}
		return "FFEEEE"
	}},
	{kind: rowSpacer},
	{label: "Shopify Payments", value: func(s model.DailySummary) decimal.Decimal { return s.Payments.ShopifyPayments }},
	{label: "Gift Cards", value: func(s model.DailySummary) decimal.Decimal { return s.Payments.GiftCard }},
	{label: "Cash", value: func(s model.DailySummary) decimal.Decimal { return s.Payments.Cash }},
	{label: "Manual", value: func(s model.DailySummary) decimal.Decimal { return s.Payments.Manual }},
	{label: "Gateway Payments Subtotal", kind: rowSummary, value: gatewayPayments},
	{label: "Payout Adjustments", value: func(s model.DailySummary) decimal.Decimal { return s.PayoutAdjustments }},
	{label: "Chargebacks", value: func(s model.DailySummary) decimal.Decimal { return s.PayoutChargebacks }},
	{label: "Payout Refunds", value: func(s model.DailySummary) decimal.Decimal { return s.PayoutTypeRefunds }},
	{label: "Payment Adjustments Subtotal", kind: rowSummary, value: paymentAdjustments},
	{label: "Total Gateway Receipts", kind: rowSummary, value: func(s model.DailySummary) decimal.Decimal {
		return gatewayPayments(s).Add(paymentAdjustments(s))
	}},
	{kind: rowSpacer},
	{label: "Payout Charges", value: func(s model.DailySummary) decimal.Decimal { return s.Payout.AmountBeforeFees }},
	{label: "Payout Charges (paid on date)", value: func(s model.DailySummary) decimal.Decimal { return s.PayoutCharges }},
	{label: "Payout Refunds (positive)", value: func(s model.DailySummary) decimal.Decimal { return s.Payout.Refunds }},
	{label: "Total Shopify Receipts", value: func(s model.DailySummary) decimal.Decimal { return s.Balance.TotalReceipts }},
	{label: "Expected Payout Before Fees", value: func(s model.DailySummary) decimal.Decimal { return s.Payout.AmountBeforeFees }},
	{label: "Payment Difference (Shopify - Expected)", kind: rowCheck, value: func(s model.DailySummary) decimal.Decimal {
		return s.Balance.TotalReceipts.Sub(s.Payout.AmountBeforeFees)
	}, fill: differenceFill},
	{label: "Reconciliation Difference", value: func(s model.DailySummary) decimal.Decimal { return s.Balance.Difference }},
	{label: "Pending Amount", value: func(s model.DailySummary) decimal.Decimal { return s.Payout.PendingAmount }},
	{label: "Pending Count", count: true, value: func(s model.DailySummary) decimal.Decimal { return decimal.NewFromInt(int64(s.Payout.PendingCount)) }},
}

func differenceFill(v decimal.Decimal) string {
	switch a := v.Abs(); {
	case a.GreaterThan(hundredDollars):
		return "FFCDD2"
	case a.GreaterThan(fiftyDollars):
		return "FFE0B2"
	default:
		return "F3E5F5"
	}
}

// styleKey identifies one cell style; styles are created once per workbook.
type styleKey struct {
	fill     string
	font     string
	bold     bool
	numFmt   string
	align    string
	bordered bool
}

type styler struct {
	f     *excelize.File
	cache map[styleKey]int
}

func (s *styler) get(k styleKey) (int, error) {
	if id, ok := s.cache[k]; ok {
		return id, nil
	}
	st := &excelize.Style{
		Font:      &excelize.Font{Bold: k.bold, Color: k.font},
		Alignment: &excelize.Alignment{Horizontal: k.align, Vertical: "center"},
	}
	if k.fill != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{k.fill}}
	}
	if k.numFmt != "" {
		nf := k.numFmt
		st.CustomNumFmt = &nf
	}
	if k.bordered {
		st.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		}
	}
	id, err := s.f.NewStyle(st)
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	s.cache[k] = id
	return id, nil
}

// WriteMismatchWorkbook writes the transposed mismatch view: one column per
// mismatching day selected by filter, one row per metric.
func WriteMismatchWorkbook(w io.Writer, summaries []model.DailySummary, filter reconcile.DateFilter, tzLabel string) error {
	dates := reconcile.FilterDates(reconcile.MismatchDates(summaries), filter)
	if len(dates) == 0 {
		return ErrNoMismatches
	}
	byDate := make(map[string]model.DailySummary, len(summaries))
	for _, s := range summaries {
		byDate[s.Date] = s
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	b := &sheetBuilder{f: f, st: &styler{f: f, cache: map[styleKey]int{}}}

	lastCol, _ := excelize.ColumnNumberToName(len(dates) + 1)
	title, subtitle := titles(tzLabel)
	b.set("A1", title)
	b.set("A2", subtitle)
	b.merge("A1", lastCol+"1")
	b.merge("A2", lastCol+"2")
	b.styleRaw("A1", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16, Color: "2E4057"}})
	b.styleRaw("A2", &excelize.Style{Font: &excelize.Font{Italic: true, Size: 10, Color: "666666"}})

	header := styleKey{fill: "2E4057", font: "FFFFFF", bold: true, align: "center", bordered: true}
	b.cell(1, headerRow, "Metric", styleKey{fill: "2E4057", font: "FFFFFF", bold: true, align: "right", bordered: true})
	for i, d := range dates {
		b.cell(i+2, headerRow, d, header)
	}

	widths := make([]int, len(dates)+2)
	widths[1] = len("Metric")
	for i, d := range dates {
		widths[i+2] = len(d)
	}

	for r, row := range workbookRows {
		rowNum := headerRow + 1 + r
		if row.kind == rowSpacer {
			for c := 1; c <= len(dates)+1; c++ {
				b.cell(c, rowNum, "", styleKey{fill: "FFFFFF"})
			}
			continue
		}

		labelStyle := styleKey{fill: "F5F5F5", bold: true, align: "right", bordered: true}
		switch row.kind {
		case rowSummary:
			labelStyle.fill, labelStyle.font = "E7F3FF", "1F4E79"
		case rowCheck:
			labelStyle.fill, labelStyle.font = "FFEEEE", "C5504B"
		}
		b.cell(1, rowNum, row.label, labelStyle)
		if n := utf8.RuneCountInString(row.label); n > widths[1] {
			widths[1] = n
		}

		for i, d := range dates {
			v := row.value(byDate[d])
			st := styleKey{align: "right", numFmt: currencyFmt, bordered: true}
			var val any = v.InexactFloat64()
			if row.count {
				st.align, st.numFmt = "center", countFmt
				val = v.IntPart()
			}
			switch row.kind {
			case rowSummary:
				st.fill, st.bold = "E7F3FF", true
			case rowCheck:
				st.fill, st.bold = "FFEEEE", true
			}
			if row.fill != nil {
				st.fill = row.fill(v)
			}
			b.cell(i+2, rowNum, val, st)
			if n := len("$" + v.StringFixed(2)); n > widths[i+2] {
				widths[i+2] = n
			}
		}
	}

	for c := 1; c <= len(dates)+1; c++ {
		name, _ := excelize.ColumnNumberToName(c)
		width := clamp(widths[c]+3, 8, 20)
		if c == 1 {
			width = clamp(widths[c]+3, 12, 50)
		}
		if b.err == nil {
			b.err = f.SetColWidth(SheetName, name, name, float64(width))
		}
	}
	if b.err == nil {
		b.err = f.SetPanes(SheetName, &excelize.Panes{
			Freeze:      true,
			XSplit:      1,
			YSplit:      headerRow,
			TopLeftCell: fmt.Sprintf("B%d", headerRow+1),
			ActivePane:  "bottomRight",
		})
	}
	if b.err != nil {
		return b.err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func titles(tzLabel string) (string, string) {
	if tzLabel == "UTC" {
		return "Payment Reconciliation Mismatches Analysis (UTC)",
			"Dates are UTC calendar days"
	}
	return "Payment Reconciliation Mismatches Analysis (Shop Timezone)",
		"Data aligned to shop timezone for consistency with Shopify reports"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sheetBuilder records the first error so cell writes stay on one line each.
type sheetBuilder struct {
	f   *excelize.File
	st  *styler
	err error
}

func (b *sheetBuilder) set(cell string, v any) {
	if b.err == nil {
		b.err = b.f.SetCellValue(SheetName, cell, v)
	}
}

func (b *sheetBuilder) merge(from, to string) {
	if b.err == nil {
		b.err = b.f.MergeCell(SheetName, from, to)
	}
}

func (b *sheetBuilder) styleRaw(cell string, st *excelize.Style) {
	if b.err != nil {
		return
	}
	id, err := b.f.NewStyle(st)
	if err != nil {
		b.err = fmt.Errorf("create style: %w", err)
		return
	}
	b.err = b.f.SetCellStyle(SheetName, cell, cell, id)
}

func (b *sheetBuilder) cell(col, row int, v any, k styleKey) {
	if b.err != nil {
		return
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		b.err = err
		return
	}
	b.set(name, v)
	if b.err != nil {
		return
	}
	id, err := b.st.get(k)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetCellStyle(SheetName, name, name, id)
}

// MismatchWorkbookName is the standard workbook file name.
func MismatchWorkbookName(tzLabel string) string {
	return "Payment_Reconciliation_Mismatches_" + tzLabel + ".xlsx"
}
