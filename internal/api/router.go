package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"plt.tracker/internal/api/handler"
)

// Dependencies are the collaborators the HTTP surface is built from.
type Dependencies struct {
	Service     handler.ShiftService
	Gate        *handler.SessionGate
	Workers     []string
	ReportTitle string
	OpenFile    string
	ClosedFile  string
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewRouter sets up the gorilla/mux router and defines all routes.
func NewRouter(deps Dependencies) *mux.Router {
	shifts := &handler.ShiftHandler{
		Service: deps.Service,
		Workers: deps.Workers,
		Clock:   deps.Clock,
	}
	admin := &handler.AdminHandler{
		Service: deps.Service,
		Gate:    deps.Gate,
	}
	exports := &handler.ExportHandler{
		Service:     deps.Service,
		ReportTitle: deps.ReportTitle,
		OpenFile:    deps.OpenFile,
		ClosedFile:  deps.ClosedFile,
		Clock:       deps.Clock,
	}

	r := mux.NewRouter()
	r.Use(requestContext, accessLog)

	r.HandleFunc("/", shifts.Form).Methods(http.MethodGet)
	r.HandleFunc("/", shifts.Submit).Methods(http.MethodPost)

	r.HandleFunc("/admin", admin.LoginForm).Methods(http.MethodGet)
	r.HandleFunc("/admin", admin.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", admin.Logout).Methods(http.MethodGet)

	gated := r.NewRoute().Subrouter()
	gated.Use(deps.Gate.RequireAdmin)
	gated.HandleFunc("/dashboard", admin.Dashboard).Methods(http.MethodGet)
	gated.HandleFunc("/download_styled/{collection}", exports.DownloadStyled).Methods(http.MethodGet)
	gated.HandleFunc("/generate_report/pdf", exports.GeneratePDF).Methods(http.MethodGet)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	return r
}
