package repository

import (
	"context"
	"errors"

	"plt.tracker/internal/core/model"
)

var (
	// ErrOpenNotFound is returned by CloseOpen when no open record matches the pallet.
	ErrOpenNotFound = errors.New("no open record for pallet")
	// ErrDuplicateOpen is returned by an exclusive CreateOpen when the pallet is already open.
	ErrDuplicateOpen = errors.New("pallet already has an open record")
	// ErrFieldTooLong is returned when a value does not fit the store.
	ErrFieldTooLong = errors.New("field value too long")
)

// CloseFunc builds the closed record for the matched open one. Returning an
// error aborts the close and leaves both collections untouched.
type CloseFunc func(open model.OpenShift) (model.ClosedShift, error)

// Repository contract
type Repository interface {
	// ListOpen returns the open collection in collection order.
	ListOpen(ctx context.Context) ([]model.OpenShift, error)
	// ListClosed returns the closed collection in collection order.
	ListClosed(ctx context.Context) ([]model.ClosedShift, error)
	// CreateOpen appends rec to the open collection.
	CreateOpen(ctx context.Context, rec model.OpenShift, exclusive bool) error
	// CloseOpen moves the first open record for palletID to the closed collection.
	CloseOpen(ctx context.Context, palletID string, fn CloseFunc) (model.ClosedShift, error)
}
