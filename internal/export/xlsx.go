package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	headerColor  = "#667eea"
	evenRowColor = "#f2f2f2"
	oddRowColor  = "#ffffff"
	sheetName    = "Sheet1"
)

// ContentTypeXLSX is the MIME type of WriteStyledXLSX output.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteStyledXLSX writes t as a single-sheet workbook: a bold white-on-blue
// bordered header and data rows alternating white and light grey.
func WriteStyledXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Border: border,
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	evenStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{evenRowColor}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("row style: %w", err)
	}
	oddStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{oddRowColor}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("row style: %w", err)
	}

	if err := writeRow(f, 1, t.Header); err != nil {
		return err
	}
	for i := range t.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	// Data row i (1-based) lives on sheet row i+1.
	for i, row := range t.Rows {
		n := i + 1
		if err := writeRow(f, n+1, row); err != nil {
			return err
		}
		style := oddStyle
		if n%2 == 0 {
			style = evenStyle
		}
		if err := f.SetRowStyle(sheetName, n+1, n+1, style); err != nil {
			return err
		}
	}

	if len(t.Header) > 0 {
		last, _ := excelize.ColumnNumberToName(len(t.Header))
		if err := f.SetColWidth(sheetName, "A", last, 14); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	return f.SetSheetRow(sheetName, cell, &values)
}
