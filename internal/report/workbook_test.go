package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"payoutrecon/internal/reconcile"
)

func openWorkbook(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func rowOf(t *testing.T, f *excelize.File, label string) int {
	t.Helper()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	for i, r := range rows {
		if len(r) > 0 && r[0] == label {
			return i + 1
		}
	}
	t.Fatalf("row %q not found", label)
	return 0
}

func TestWriteMismatchWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMismatchWorkbook(&buf, sampleSummaries(), reconcile.DateFilter{}, "ShopTimezone"))

	f := openWorkbook(t, buf.Bytes())
	raw := excelize.Options{RawCellValue: true}

	title, err := f.GetCellValue(SheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Payment Reconciliation Mismatches Analysis (Shop Timezone)", title)

	hdr, err := f.GetCellValue(SheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Metric", hdr)
	date, err := f.GetCellValue(SheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", date, "only mismatching days are columns")
	extra, err := f.GetCellValue(SheetName, "C3")
	require.NoError(t, err)
	assert.Empty(t, extra)

	r := rowOf(t, f, "Order Count")
	assert.Equal(t, 4, r)
	v, err := f.GetCellValue(SheetName, "B4", raw)
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	diffRow := rowOf(t, f, "Payment Difference (Shopify - Expected)")
	cell, _ := excelize.CoordinatesToCellName(2, diffRow)
	v, err = f.GetCellValue(SheetName, cell, raw)
	require.NoError(t, err)
	assert.Equal(t, "200.5", v)

	styleID, err := f.GetCellStyle(SheetName, cell)
	require.NoError(t, err)
	assert.NotZero(t, styleID)

	adjRow := rowOf(t, f, "Payment Adjustments Subtotal")
	cell, _ = excelize.CoordinatesToCellName(2, adjRow)
	v, err = f.GetCellValue(SheetName, cell, raw)
	require.NoError(t, err)
	assert.Equal(t, "-4", v)

	width, err := f.GetColWidth(SheetName, "B")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, width, 8.0)
	assert.LessOrEqual(t, width, 20.0)
}

func TestWriteMismatchWorkbook_NoMismatches(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMismatchWorkbook(&buf, sampleSummaries()[:1], reconcile.DateFilter{}, "UTC")
	assert.ErrorIs(t, err, ErrNoMismatches)
	assert.Zero(t, buf.Len())

	err = WriteMismatchWorkbook(&buf, sampleSummaries(), reconcile.DateFilter{Start: "2024-04-01"}, "UTC")
	assert.ErrorIs(t, err, ErrNoMismatches)
}

func TestDifferenceFill(t *testing.T) {
	assert.Equal(t, "FFCDD2", differenceFill(dec("-150")))
	assert.Equal(t, "FFE0B2", differenceFill(dec("75")))
	assert.Equal(t, "F3E5F5", differenceFill(dec("10")))
}

func TestMismatchWorkbookName(t *testing.T) {
	assert.Equal(t, "Payment_Reconciliation_Mismatches_UTC.xlsx", MismatchWorkbookName("UTC"))
}
