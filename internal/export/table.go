// Package export renders shift collections as styled spreadsheets and PDF reports.
package export

import "plt.tracker/internal/core/model"

// Table is a header plus rows of cells, in output order.
type Table struct {
	Header []string
	Rows   [][]string
	// Widths are PDF column widths in millimetres. Empty means equal widths.
	Widths []float64
}

// OpenTable lays out the open collection.
func OpenTable(recs []model.OpenShift) Table {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, r.Row())
	}
	return Table{Header: model.OpenColumns, Rows: rows}
}

// ClosedTable lays out the closed collection.
func ClosedTable(recs []model.ClosedShift) Table {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, r.Row())
	}
	return Table{
		Header: model.ClosedColumns,
		Rows:   rows,
		Widths: []float64{20, 25, 25, 20, 25, 25, 25},
	}
}
