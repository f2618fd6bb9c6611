package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"plt.tracker/internal/core/model"
)

func newTestXLSX(t *testing.T) (*XLSXRepository, string, string) {
	t.Helper()
	dir := t.TempDir()
	openPath := filepath.Join(dir, "Vas_in_progress.xlsx")
	closedPath := filepath.Join(dir, "Vas_Done.xlsx")

	repo, err := NewXLSXRepository(openPath, closedPath)
	require.NoError(t, err)
	return repo, openPath, closedPath
}

func openShift(worker, pallet string) model.OpenShift {
	return model.OpenShift{
		WorkerName:  worker,
		ShiftLabel:  "Morning",
		PalletID:    pallet,
		Status:      model.StatusIn,
		CheckInDate: "2024-01-01",
		CheckInTime: "09:00:00",
	}
}

func closeAs(out, total string) CloseFunc {
	return func(o model.OpenShift) (model.ClosedShift, error) {
		return model.ClosedShift{
			WorkerName:    o.WorkerName,
			ShiftLabel:    o.ShiftLabel,
			PalletID:      o.PalletID,
			CheckInDate:   o.CheckInDate,
			CheckInTime:   o.CheckInTime,
			CheckOutTime:  out,
			TotalDuration: total,
		}, nil
	}
}

func TestXLSXRepository_InitWritesHeaders(t *testing.T) {
	_, openPath, closedPath := newTestXLSX(t)

	for path, header := range map[string][]string{
		openPath:   model.OpenColumns,
		closedPath: model.ClosedColumns,
	} {
		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		rows, err := f.GetRows(sheetName)
		require.NoError(t, err)
		f.Close()

		require.Len(t, rows, 1)
		assert.Equal(t, header, rows[0])
	}
}

func TestXLSXRepository_InitKeepsExistingFiles(t *testing.T) {
	repo, openPath, closedPath := newTestXLSX(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateOpen(ctx, openShift("Ali", "PLT-1"), false))

	reopened, err := NewXLSXRepository(openPath, closedPath)
	require.NoError(t, err)

	open, err := reopened.ListOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestXLSXRepository_ReadIsIdempotent(t *testing.T) {
	repo, _, _ := newTestXLSX(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateOpen(ctx, openShift("Ali", "PLT-1"), false))
	require.NoError(t, repo.CreateOpen(ctx, openShift("Sara", "PLT-2"), false))

	first, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	second, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	firstClosed, err := repo.ListClosed(ctx)
	require.NoError(t, err)
	secondClosed, err := repo.ListClosed(ctx)
	require.NoError(t, err)
	assert.Equal(t, firstClosed, secondClosed)
}

func TestXLSXRepository_CreateOpenExclusive(t *testing.T) {
	repo, _, _ := newTestXLSX(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateOpen(ctx, openShift("Ali", "PLT-1"), true))

	err := repo.CreateOpen(ctx, openShift("Sara", "PLT-1"), true)
	assert.ErrorIs(t, err, ErrDuplicateOpen)

	require.NoError(t, repo.CreateOpen(ctx, openShift("Sara", "PLT-1"), false))
	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestXLSXRepository_CloseOpenMovesFirstMatch(t *testing.T) {
	repo, _, _ := newTestXLSX(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateOpen(ctx, openShift("Ali", "PLT-1"), false))
	require.NoError(t, repo.CreateOpen(ctx, openShift("Sara", "PLT-2"), false))
	require.NoError(t, repo.CreateOpen(ctx, openShift("Usman", "PLT-1"), false))

	closed, err := repo.CloseOpen(ctx, "PLT-1", closeAs("10:00:00", "01:00:00"))
	require.NoError(t, err)
	assert.Equal(t, "Ali", closed.WorkerName)

	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "PLT-2", open[0].PalletID)
	assert.Equal(t, "Usman", open[1].WorkerName)

	done, err := repo.ListClosed(ctx)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, closed, done[0])
}

func TestXLSXRepository_CloseOpenNotFound(t *testing.T) {
	repo, _, _ := newTestXLSX(t)

	_, err := repo.CloseOpen(context.Background(), "missing", closeAs("10:00:00", "01:00:00"))
	assert.ErrorIs(t, err, ErrOpenNotFound)
}

func TestXLSXRepository_CloseFuncErrorLeavesState(t *testing.T) {
	repo, _, _ := newTestXLSX(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateOpen(ctx, openShift("Ali", "PLT-1"), false))

	boom := errors.New("boom")
	_, err := repo.CloseOpen(ctx, "PLT-1", func(model.OpenShift) (model.ClosedShift, error) {
		return model.ClosedShift{}, boom
	})
	assert.ErrorIs(t, err, boom)

	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)
	done, err := repo.ListClosed(ctx)
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestXLSXRepository_NoTempFilesLeft(t *testing.T) {
	repo, openPath, _ := newTestXLSX(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateOpen(ctx, openShift("Ali", "PLT-1"), false))
	_, err := repo.CloseOpen(ctx, "PLT-1", closeAs("10:00:00", "01:00:00"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(openPath))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestXLSXRepository_CreateOpenRejectsOversizedCell(t *testing.T) {
	repo, _, _ := newTestXLSX(t)
	ctx := context.Background()

	err := repo.CreateOpen(ctx, openShift("Ali", strings.Repeat("P", 40000)), true)
	require.ErrorIs(t, err, ErrFieldTooLong)

	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestXLSXRepository_LongestCellRoundTrips(t *testing.T) {
	repo, _, _ := newTestXLSX(t)
	ctx := context.Background()
	id := strings.Repeat("P", excelize.TotalCellChars)

	require.NoError(t, repo.CreateOpen(ctx, openShift("Ali", id), true))

	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, id, open[0].PalletID)

	closed, err := repo.CloseOpen(ctx, id, closeAs("10:00:00", "01:00:00"))
	require.NoError(t, err)
	assert.Equal(t, id, closed.PalletID)
}

func TestXLSXRepository_TrimsHandEditedCells(t *testing.T) {
	repo, openPath, _ := newTestXLSX(t)
	ctx := context.Background()

	// A row typed into the sheet by hand, with stray spaces around the values.
	require.NoError(t, writeRows(openPath, model.OpenColumns, [][]string{
		{"Ali ", "Morning", "  PLT-7 ", "In", "2024-01-01", "09:00:00"},
	}))

	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "PLT-7", open[0].PalletID)
	assert.Equal(t, "Ali", open[0].WorkerName)

	closed, err := repo.CloseOpen(ctx, "PLT-7", closeAs("10:00:00", "01:00:00"))
	require.NoError(t, err)
	assert.Equal(t, "Ali", closed.WorkerName)

	open, err = repo.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}
