package core

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"plt.tracker/internal/core/model"
	"plt.tracker/internal/ports/messaging"
	"plt.tracker/internal/ports/repository"
)

const tooLongReason = "is too long"

// Options tune the behaviour of the shift engine.
type Options struct {
	// Location is the zone the stored date and time strings are expressed in.
	Location *time.Location
	// RejectDuplicatePallets makes Open fail with ConflictError when the
	// pallet already has an open record.
	RejectDuplicatePallets bool
}

// Board is what the admin dashboard shows.
type Board struct {
	Open   []model.OpenShift
	Closed []model.ClosedShift
}

type ShiftService struct {
	repo      repository.Repository
	publisher messaging.EventPublisher
	opts      Options
}

// NewShiftService wires the engine to its store and event publisher. A nil
// publisher disables event publishing.
func NewShiftService(repo repository.Repository, p messaging.EventPublisher, opts Options) *ShiftService {
	if p == nil {
		p = messaging.NoopPublisher{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &ShiftService{
		repo:      repo,
		publisher: p,
		opts:      opts,
	}
}

// Location returns the zone records are stamped in.
func (s *ShiftService) Location() *time.Location {
	return s.opts.Location
}

// Open checks a pallet in for a worker at now.
func (s *ShiftService) Open(ctx context.Context, workerName, shiftLabel, palletID string, now time.Time) (model.OpenShift, error) {
	workerName = strings.TrimSpace(workerName)
	shiftLabel = strings.TrimSpace(shiftLabel)
	palletID = strings.TrimSpace(palletID)

	switch {
	case workerName == "":
		return model.OpenShift{}, &ValidationError{Field: "name"}
	case shiftLabel == "":
		return model.OpenShift{}, &ValidationError{Field: "shift"}
	case palletID == "":
		return model.OpenShift{}, &ValidationError{Field: "plt_id_in"}
	}
	for field, v := range map[string]string{"name": workerName, "shift": shiftLabel, "plt_id_in": palletID} {
		if utf8.RuneCountInString(v) > model.MaxFieldChars {
			return model.OpenShift{}, &ValidationError{Field: field, Reason: tooLongReason}
		}
	}

	local := now.In(s.opts.Location)
	rec := model.OpenShift{
		WorkerName:  workerName,
		ShiftLabel:  shiftLabel,
		PalletID:    palletID,
		Status:      model.StatusIn,
		CheckInDate: local.Format(model.DateLayout),
		CheckInTime: local.Format(model.TimeLayout),
	}

	err := s.repo.CreateOpen(ctx, rec, s.opts.RejectDuplicatePallets)
	if errors.Is(err, repository.ErrDuplicateOpen) {
		return model.OpenShift{}, &ConflictError{PalletID: palletID}
	}
	if err != nil {
		return model.OpenShift{}, err
	}

	log.Ctx(ctx).Info().Str("pallet_id", palletID).Str("worker", workerName).Msg("Pallet checked in")
	return rec, nil
}

// Close checks a pallet out. The first open record for the pallet, in
// collection order, is the one closed; only the worker who opened it may
// close it.
func (s *ShiftService) Close(ctx context.Context, workerName, palletID string, now time.Time) (model.ClosedShift, error) {
	workerName = strings.TrimSpace(workerName)
	palletID = strings.TrimSpace(palletID)

	switch {
	case workerName == "":
		return model.ClosedShift{}, &ValidationError{Field: "name"}
	case palletID == "":
		return model.ClosedShift{}, &ValidationError{Field: "plt_id_out"}
	}

	local := now.In(s.opts.Location)
	var elapsed time.Duration

	closed, err := s.repo.CloseOpen(ctx, palletID, func(open model.OpenShift) (model.ClosedShift, error) {
		if open.WorkerName != workerName {
			return model.ClosedShift{}, &UnauthorizedError{PalletID: palletID, Owner: open.WorkerName, Claimant: workerName}
		}

		checkIn, err := CheckInInstant(open.CheckInDate, open.CheckInTime, s.opts.Location)
		if err != nil {
			return model.ClosedShift{}, err
		}
		elapsed = Elapsed(checkIn, local)

		return model.ClosedShift{
			WorkerName:    open.WorkerName,
			ShiftLabel:    open.ShiftLabel,
			PalletID:      open.PalletID,
			CheckInDate:   open.CheckInDate,
			CheckInTime:   open.CheckInTime,
			CheckOutTime:  local.Format(model.TimeLayout),
			TotalDuration: FormatDuration(elapsed),
		}, nil
	})
	if errors.Is(err, repository.ErrOpenNotFound) {
		return model.ClosedShift{}, &NotFoundError{PalletID: palletID}
	}
	if err != nil {
		return model.ClosedShift{}, err
	}

	log.Ctx(ctx).Info().
		Str("pallet_id", palletID).
		Str("worker", workerName).
		Str("total_duration", closed.TotalDuration).
		Msg("Pallet checked out")

	event := messaging.ShiftClosedEvent{
		PalletID:        closed.PalletID,
		WorkerName:      closed.WorkerName,
		ShiftLabel:      closed.ShiftLabel,
		CheckInDate:     closed.CheckInDate,
		CheckInTime:     closed.CheckInTime,
		CheckOutTime:    closed.CheckOutTime,
		TotalDuration:   closed.TotalDuration,
		DurationSeconds: int64(elapsed / time.Second),
		ClosedAt:        now.UTC(),
	}
	// The record is already committed; a lost event must not undo it.
	if err := s.publisher.PublishShiftClosed(ctx, event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("pallet_id", palletID).Msg("Failed to publish shift closed event")
	}

	return closed, nil
}

// ListOpen returns the open collection in store order.
func (s *ShiftService) ListOpen(ctx context.Context) ([]model.OpenShift, error) {
	return s.repo.ListOpen(ctx)
}

// ListClosed returns the closed collection in store order.
func (s *ShiftService) ListClosed(ctx context.Context) ([]model.ClosedShift, error) {
	return s.repo.ListClosed(ctx)
}

// ActivePallets lists the distinct open pallet ids in store order.
func (s *ShiftService) ActivePallets(ctx context.Context) ([]string, error) {
	open, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(open))
	ids := make([]string, 0, len(open))
	for _, o := range open {
		if seen[o.PalletID] {
			continue
		}
		seen[o.PalletID] = true
		ids = append(ids, o.PalletID)
	}
	return ids, nil
}

// Board returns both collections newest first: open by date and check-in
// time, closed by date and check-out time.
func (s *ShiftService) Board(ctx context.Context) (Board, error) {
	open, err := s.repo.ListOpen(ctx)
	if err != nil {
		return Board{}, err
	}
	closed, err := s.repo.ListClosed(ctx)
	if err != nil {
		return Board{}, err
	}

	sort.SliceStable(open, func(i, j int) bool {
		if open[i].CheckInDate != open[j].CheckInDate {
			return open[i].CheckInDate > open[j].CheckInDate
		}
		return open[i].CheckInTime > open[j].CheckInTime
	})
	sort.SliceStable(closed, func(i, j int) bool {
		if closed[i].CheckInDate != closed[j].CheckInDate {
			return closed[i].CheckInDate > closed[j].CheckInDate
		}
		return closed[i].CheckOutTime > closed[j].CheckOutTime
	})

	return Board{Open: open, Closed: closed}, nil
}
