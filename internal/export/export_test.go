package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"plt.tracker/internal/core/model"
)

func sampleClosed() []model.ClosedShift {
	return []model.ClosedShift{
		{WorkerName: "Ali", ShiftLabel: "Morning", PalletID: "PLT-3", CheckInDate: "2024-01-01", CheckInTime: "09:00:00", CheckOutTime: "17:30:15", TotalDuration: "08:30:15"},
		{WorkerName: "Sara", ShiftLabel: "Night", PalletID: "PLT-1", CheckInDate: "2024-01-01", CheckInTime: "23:50:00", CheckOutTime: "00:10:00", TotalDuration: "00:20:00"},
		{WorkerName: "Usman", ShiftLabel: "Evening", PalletID: "PLT-2", CheckInDate: "2024-01-02", CheckInTime: "16:00:00", CheckOutTime: "18:00:00", TotalDuration: "02:00:00"},
	}
}

func TestWriteStyledXLSX_RowsRoundTrip(t *testing.T) {
	recs := sampleClosed()
	var buf bytes.Buffer
	require.NoError(t, WriteStyledXLSX(&buf, ClosedTable(recs)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, len(recs)+1)
	assert.Equal(t, model.ClosedColumns, rows[0])
	for i, rec := range recs {
		assert.Equal(t, rec, model.ClosedShiftFromRow(rows[i+1]))
	}
}

func TestWriteStyledXLSX_Styles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStyledXLSX(&buf, ClosedTable(sampleClosed())))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	fillOf := func(cell string) string {
		id, err := f.GetCellStyle(sheetName, cell)
		require.NoError(t, err)
		style, err := f.GetStyle(id)
		require.NoError(t, err)
		require.NotEmpty(t, style.Fill.Color)
		return strings.ToLower(strings.TrimPrefix(style.Fill.Color[0], "#"))
	}

	headerID, err := f.GetCellStyle(sheetName, "A1")
	require.NoError(t, err)
	header, err := f.GetStyle(headerID)
	require.NoError(t, err)
	require.NotNil(t, header.Font)
	assert.True(t, header.Font.Bold)

	assert.Equal(t, "667eea", fillOf("A1"))
	assert.Equal(t, "ffffff", fillOf("A2"))
	assert.Equal(t, "f2f2f2", fillOf("A3"))
	assert.Equal(t, "ffffff", fillOf("A4"))
}

func TestWriteStyledXLSX_OpenTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStyledXLSX(&buf, OpenTable(nil)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.OpenColumns, rows[0])
}

func TestPDFReport_ContainsRowsInOrder(t *testing.T) {
	report := PDFReport{
		Title:     "VAS Completed Stock Report",
		Generated: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, ClosedTable(sampleClosed())))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	assert.Contains(t, out, "(VAS Completed Stock Report)")
	assert.Contains(t, out, "(Date: 2024-03-04)")

	last := strings.Index(out, "(Total Time)")
	require.Greater(t, last, 0)
	for _, id := range []string{"(PLT-3)", "(PLT-1)", "(PLT-2)"} {
		idx := strings.Index(out, id)
		require.Greater(t, idx, last, "%s out of order", id)
		last = idx
	}
	for _, field := range []string{"(08:30:15)", "(00:20:00)", "(Evening)", "(23:50:00)"} {
		assert.Contains(t, out, field)
	}
}

func TestPDFReport_Compressed(t *testing.T) {
	report := PDFReport{Title: "Report", Generated: time.Now(), Compress: true}

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, ClosedTable(sampleClosed())))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.NotContains(t, buf.String(), "(PLT-3)")
}
