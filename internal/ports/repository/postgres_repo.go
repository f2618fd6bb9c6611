package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"plt.tracker/internal/core/model"
)

// PostgresRepository stores both collections as tables. Collection order is
// the serial id order. Every mutation runs in a single transaction, so a close
// either moves the record or leaves both tables untouched.
type PostgresRepository struct {
	DB *sql.DB
}

// NewPostgresRepository create new instance
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

// ListOpen returns all open shifts.
func (r *PostgresRepository) ListOpen(ctx context.Context) ([]model.OpenShift, error) {
	query := `SELECT worker_name, shift_label, pallet_id, status, check_in_date, check_in_time
              FROM open_shifts
              ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query open shifts: %w", err)
	}
	defer rows.Close()

	var out []model.OpenShift
	for rows.Next() {
		var o model.OpenShift
		if err := rows.Scan(&o.WorkerName, &o.ShiftLabel, &o.PalletID, &o.Status, &o.CheckInDate, &o.CheckInTime); err != nil {
			return nil, fmt.Errorf("scan open shift: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListClosed returns all closed shifts.
func (r *PostgresRepository) ListClosed(ctx context.Context) ([]model.ClosedShift, error) {
	query := `SELECT worker_name, shift_label, pallet_id, check_in_date, check_in_time, check_out_time, total_duration
              FROM closed_shifts
              ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query closed shifts: %w", err)
	}
	defer rows.Close()

	var out []model.ClosedShift
	for rows.Next() {
		var c model.ClosedShift
		if err := rows.Scan(&c.WorkerName, &c.ShiftLabel, &c.PalletID, &c.CheckInDate, &c.CheckInTime, &c.CheckOutTime, &c.TotalDuration); err != nil {
			return nil, fmt.Errorf("scan closed shift: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateOpen inserts a check-in. An exclusive insert takes a transaction
// scoped advisory lock on the pallet id so two concurrent opens of the same
// pallet cannot both pass the existence check.
func (r *PostgresRepository) CreateOpen(ctx context.Context, rec model.OpenShift, exclusive bool) (err error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.palletId", rec.PalletID))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if exclusive {
		if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, rec.PalletID); err != nil {
			return fmt.Errorf("lock pallet: %w", err)
		}

		var exists bool
		err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM open_shifts WHERE pallet_id = $1)`, rec.PalletID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check open pallet: %w", err)
		}
		if exists {
			err = ErrDuplicateOpen
			return err
		}
	}

	query := `INSERT INTO open_shifts (worker_name, shift_label, pallet_id, status, check_in_date, check_in_time)
              VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err = tx.ExecContext(ctx, query, rec.WorkerName, rec.ShiftLabel, rec.PalletID, rec.Status, rec.CheckInDate, rec.CheckInTime); err != nil {
		return fmt.Errorf("insert open shift: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CloseOpen locks the first open row for the pallet, builds the closed row
// with fn and moves it inside one transaction.
func (r *PostgresRepository) CloseOpen(ctx context.Context, palletID string, fn CloseFunc) (closed model.ClosedShift, err error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.palletId", palletID))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.ClosedShift{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `SELECT id, worker_name, shift_label, pallet_id, status, check_in_date, check_in_time
              FROM open_shifts
              WHERE pallet_id = $1
              ORDER BY id
              LIMIT 1
              FOR UPDATE`

	var (
		id   int64
		open model.OpenShift
	)
	err = tx.QueryRowContext(ctx, query, palletID).Scan(&id, &open.WorkerName, &open.ShiftLabel, &open.PalletID, &open.Status, &open.CheckInDate, &open.CheckInTime)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrOpenNotFound
		return model.ClosedShift{}, err
	}
	if err != nil {
		return model.ClosedShift{}, fmt.Errorf("find open shift: %w", err)
	}

	closed, err = fn(open)
	if err != nil {
		return model.ClosedShift{}, err
	}

	insert := `INSERT INTO closed_shifts (worker_name, shift_label, pallet_id, check_in_date, check_in_time, check_out_time, total_duration)
               VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.ExecContext(ctx, insert, closed.WorkerName, closed.ShiftLabel, closed.PalletID, closed.CheckInDate, closed.CheckInTime, closed.CheckOutTime, closed.TotalDuration)
	if err != nil {
		return model.ClosedShift{}, fmt.Errorf("insert closed shift: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM open_shifts WHERE id = $1`, id); err != nil {
		return model.ClosedShift{}, fmt.Errorf("delete open shift: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return model.ClosedShift{}, fmt.Errorf("commit: %w", err)
	}
	return closed, nil
}
