package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"plt.tracker/internal/core"
	"plt.tracker/internal/core/model"
)

// ShiftService is the engine surface the HTTP layer needs.
type ShiftService interface {
	Open(ctx context.Context, workerName, shiftLabel, palletID string, now time.Time) (model.OpenShift, error)
	Close(ctx context.Context, workerName, palletID string, now time.Time) (model.ClosedShift, error)
	ActivePallets(ctx context.Context) ([]string, error)
	Board(ctx context.Context) (core.Board, error)
	ListOpen(ctx context.Context) ([]model.OpenShift, error)
	ListClosed(ctx context.Context) ([]model.ClosedShift, error)
	Location() *time.Location
}

type ShiftHandler struct {
	Service ShiftService
	Workers []string
	Clock   func() time.Time
}

type indexPage struct {
	Workers       []string
	ActivePallets []string
}

// Form renders the check-in/out form.
func (h *ShiftHandler) Form(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Service.ActivePallets(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to list active pallets")
		renderError(w, r, http.StatusInternalServerError, genericErrorMessage)
		return
	}
	render(w, r, http.StatusOK, "index.html", indexPage{Workers: h.Workers, ActivePallets: ids})
}

// Submit handles an In or Out submission of the form.
func (h *ShiftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	name := r.PostForm.Get("name")
	status := r.PostForm.Get("status")
	if missing := firstBlank(r, "name", "status"); missing != "" {
		renderError(w, r, http.StatusBadRequest, missingFieldMessage(missing))
		return
	}

	var err error
	switch status {
	case model.StatusIn:
		if missing := firstBlank(r, "shift", "plt_id_in"); missing != "" {
			renderError(w, r, http.StatusBadRequest, missingFieldMessage(missing))
			return
		}
		_, err = h.Service.Open(r.Context(), name, r.PostForm.Get("shift"), r.PostForm.Get("plt_id_in"), h.now())
	case model.StatusOut:
		if missing := firstBlank(r, "plt_id_out"); missing != "" {
			renderError(w, r, http.StatusBadRequest, missingFieldMessage(missing))
			return
		}
		_, err = h.Service.Close(r.Context(), name, r.PostForm.Get("plt_id_out"), h.now())
	default:
		renderError(w, r, http.StatusBadRequest, fmt.Sprintf("Unknown status %q.", status))
		return
	}

	if err != nil {
		writeShiftError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *ShiftHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

// writeShiftError turns engine errors into the page the user sees.
func writeShiftError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound     *core.NotFoundError
		unauthorized *core.UnauthorizedError
		conflict     *core.ConflictError
		invalid      *core.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		renderAlert(w, r, "Error: Selected PLT ID not found in In-Progress!")
	case errors.As(err, &unauthorized):
		renderAlert(w, r, fmt.Sprintf("Error: Only %s can mark this PLT ID as Out!", unauthorized.Owner))
	case errors.As(err, &conflict):
		renderAlert(w, r, fmt.Sprintf("Error: PLT ID %s is already In!", conflict.PalletID))
	case errors.As(err, &invalid):
		msg := missingFieldMessage(invalid.Field)
		if invalid.Reason != "" {
			msg = fmt.Sprintf("Field %q %s.", invalid.Field, invalid.Reason)
		}
		renderError(w, r, http.StatusBadRequest, msg)
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to record shift")
		renderError(w, r, http.StatusInternalServerError, genericErrorMessage)
	}
}

func firstBlank(r *http.Request, fields ...string) string {
	for _, f := range fields {
		if strings.TrimSpace(r.PostForm.Get(f)) == "" {
			return f
		}
	}
	return ""
}

func missingFieldMessage(field string) string {
	return fmt.Sprintf("Missing required field %q.", field)
}
