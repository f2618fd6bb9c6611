package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"plt.tracker/internal/core/model"
)

const sheetName = "Sheet1"

// XLSXRepository keeps each collection in its own spreadsheet. Every call
// reads the whole file and every mutation rewrites it. The mutex makes this
// process the single writer; other processes sharing the files are not
// coordinated.
//
// A close writes the closed file before the open file. If the process dies
// between the two writes the record is present in both.
type XLSXRepository struct {
	mu         sync.Mutex
	openPath   string
	closedPath string
}

// NewXLSXRepository creates the repository and initialises both files with
// their header row when they do not exist yet.
func NewXLSXRepository(openPath, closedPath string) (*XLSXRepository, error) {
	r := &XLSXRepository{openPath: openPath, closedPath: closedPath}

	if err := initFile(openPath, model.OpenColumns); err != nil {
		return nil, err
	}
	if err := initFile(closedPath, model.ClosedColumns); err != nil {
		return nil, err
	}
	return r, nil
}

func initFile(path string, header []string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("Creating empty collection file")
	return writeRows(path, header, nil)
}

// ListOpen reads the open collection.
func (r *XLSXRepository) ListOpen(ctx context.Context) ([]model.OpenShift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readOpen()
}

// ListClosed reads the closed collection.
func (r *XLSXRepository) ListClosed(ctx context.Context) ([]model.ClosedShift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readClosed()
}

// CreateOpen appends rec and rewrites the open file.
func (r *XLSXRepository) CreateOpen(ctx context.Context, rec model.OpenShift, exclusive bool) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.palletId", rec.PalletID))

	r.mu.Lock()
	defer r.mu.Unlock()

	open, err := r.readOpen()
	if err != nil {
		return err
	}

	if exclusive {
		for _, o := range open {
			if o.PalletID == rec.PalletID {
				return ErrDuplicateOpen
			}
		}
	}

	open = append(open, rec)
	return r.writeOpen(open)
}

// CloseOpen moves the first open record for palletID into the closed file.
func (r *XLSXRepository) CloseOpen(ctx context.Context, palletID string, fn CloseFunc) (model.ClosedShift, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.palletId", palletID))

	r.mu.Lock()
	defer r.mu.Unlock()

	open, err := r.readOpen()
	if err != nil {
		return model.ClosedShift{}, err
	}

	idx := -1
	for i, o := range open {
		if o.PalletID == palletID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.ClosedShift{}, ErrOpenNotFound
	}

	closed, err := fn(open[idx])
	if err != nil {
		return model.ClosedShift{}, err
	}

	done, err := r.readClosed()
	if err != nil {
		return model.ClosedShift{}, err
	}
	done = append(done, closed)
	if err := r.writeClosed(done); err != nil {
		return model.ClosedShift{}, err
	}

	remaining := make([]model.OpenShift, 0, len(open)-1)
	remaining = append(remaining, open[:idx]...)
	remaining = append(remaining, open[idx+1:]...)
	if err := r.writeOpen(remaining); err != nil {
		return model.ClosedShift{}, err
	}

	return closed, nil
}

func (r *XLSXRepository) readOpen() ([]model.OpenShift, error) {
	rows, err := readRows(r.openPath)
	if err != nil {
		return nil, err
	}
	out := make([]model.OpenShift, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.OpenShiftFromRow(row))
	}
	return out, nil
}

func (r *XLSXRepository) readClosed() ([]model.ClosedShift, error) {
	rows, err := readRows(r.closedPath)
	if err != nil {
		return nil, err
	}
	out := make([]model.ClosedShift, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.ClosedShiftFromRow(row))
	}
	return out, nil
}

func (r *XLSXRepository) writeOpen(recs []model.OpenShift) error {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, rec.Row())
	}
	return writeRows(r.openPath, model.OpenColumns, rows)
}

func (r *XLSXRepository) writeClosed(recs []model.ClosedShift) error {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, rec.Row())
	}
	return writeRows(r.closedPath, model.ClosedColumns, rows)
}

// readRows returns the data rows of the first sheet, header excluded.
// Blank rows are skipped.
func readRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", path, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		data = append(data, row)
	}
	return data, nil
}

// writeRows replaces path with a workbook holding header and rows. The file
// is written next to the target and renamed over it.
func writeRows(path string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".collection-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		// excelize would cut the cell silently
		if utf8.RuneCountInString(c) > excelize.TotalCellChars {
			return fmt.Errorf("row %d column %d: %w", rowNum, i+1, ErrFieldTooLong)
		}
		values[i] = c
	}
	return f.SetSheetRow(sheetName, cell, &values)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
