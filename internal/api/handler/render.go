package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const genericErrorMessage = "Something went wrong. Please try again."

type errorPage struct {
	Status  int
	Title   string
	Message string
}

// render executes the named template into a buffer first so a template
// failure still produces a clean 500.
func render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, genericErrorMessage, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render(w, r, status, "error.html", errorPage{
		Status:  status,
		Title:   http.StatusText(status),
		Message: message,
	})
}

// renderAlert shows a blocking browser alert and sends the user back to the form.
func renderAlert(w http.ResponseWriter, r *http.Request, message string) {
	render(w, r, http.StatusOK, "alert.html", message)
}
