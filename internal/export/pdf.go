package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// ContentTypePDF is the MIME type of PDFReport output.
const ContentTypePDF = "application/pdf"

// PDFReport renders a table as an A4 report with a centred title and date line.
type PDFReport struct {
	Title     string
	Generated time.Time
	// Compress deflates page streams. Off only makes the output easier to inspect.
	Compress bool
}

// Write renders t to w. Header cells are white on blue; rows alternate
// light grey and white, starting with grey.
func (r PDFReport) Write(w io.Writer, t Table) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.Compress)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(r.Title), "0", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, fmt.Sprintf("Date: %s", r.Generated.Format("2006-01-02")), "0", 1, "C", false, 0, "")
	pdf.Ln(5)

	widths := columnWidths(t)

	pdf.SetFillColor(102, 126, 234)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 11)
	for i, h := range t.Header {
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFillColor(242, 242, 242)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 10)
	fill := true
	for _, row := range t.Rows {
		for i := range t.Header {
			var v string
			if i < len(row) {
				v = row[i]
			}
			pdf.CellFormat(widths[i], 8, tr(v), "1", 0, "C", fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func columnWidths(t Table) []float64 {
	if len(t.Widths) == len(t.Header) {
		return t.Widths
	}
	widths := make([]float64, len(t.Header))
	for i := range widths {
		widths[i] = 190 / float64(len(t.Header))
	}
	return widths
}
