package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"plt.tracker/internal/core/model"
)

type AdminHandler struct {
	Service ShiftService
	Gate    *SessionGate
}

type loginPage struct {
	Username string
	Error    string
}

type dashboardPage struct {
	Username      string
	OpenColumns   []string
	ClosedColumns []string
	Open          []model.OpenShift
	Closed        []model.ClosedShift
}

func (h *AdminHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "admin_login.html", loginPage{})
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	username := r.PostForm.Get("username")

	if !h.Gate.CheckCredentials(username, r.PostForm.Get("password")) {
		log.Ctx(r.Context()).Warn().Str("username", username).Msg("Admin login rejected")
		render(w, r, http.StatusUnauthorized, "admin_login.html", loginPage{
			Username: username,
			Error:    "Invalid username or password.",
		})
		return
	}

	if err := h.Gate.Login(w, r, username); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to save admin session")
		renderError(w, r, http.StatusInternalServerError, genericErrorMessage)
		return
	}
	log.Ctx(r.Context()).Info().Str("username", username).Msg("Admin logged in")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Dashboard lists both collections newest first. It sits behind RequireAdmin.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.Service.Board(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to load dashboard")
		renderError(w, r, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	admin, _ := AdminSessionFromContext(r.Context())
	render(w, r, http.StatusOK, "admin_dashboard.html", dashboardPage{
		Username:      admin.Username,
		OpenColumns:   model.OpenColumns,
		ClosedColumns: model.ClosedColumns,
		Open:          board.Open,
		Closed:        board.Closed,
	})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Gate.Logout(w, r); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to clear admin session")
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
