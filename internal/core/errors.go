package core

import "fmt"

// NotFoundError is returned when an out-event names a pallet with no open record.
type NotFoundError struct {
	PalletID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pallet %q not found in progress", e.PalletID)
}

// UnauthorizedError is returned when someone other than the worker who
// checked the pallet in tries to check it out.
type UnauthorizedError struct {
	PalletID string
	Owner    string
	Claimant string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("only %s can mark pallet %q as out (requested by %s)", e.Owner, e.PalletID, e.Claimant)
}

// ConflictError is returned when a pallet is checked in while already open.
type ConflictError struct {
	PalletID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("pallet %q is already in progress", e.PalletID)
}

// ValidationError reports a missing or unacceptable input. An empty Reason
// means the field was missing.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s is required", e.Field)
}
