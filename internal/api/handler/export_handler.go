package handler

import (
	"bytes"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"plt.tracker/internal/export"
)

// Collection names accepted by DownloadStyled besides the file names.
const (
	CollectionInProgress = "in_progress"
	CollectionDone       = "done"
)

const reportFileName = "Completed_Report.pdf"

type ExportHandler struct {
	Service     ShiftService
	ReportTitle string
	// OpenFile and ClosedFile are the base names of the two collections,
	// used for the attachment name and accepted as collection aliases.
	OpenFile   string
	ClosedFile string
	Clock      func() time.Time
}

// DownloadStyled streams a collection as a styled spreadsheet.
func (h *ExportHandler) DownloadStyled(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	collection := mux.Vars(r)["collection"]

	var (
		table export.Table
		file  string
		err   error
	)
	switch collection {
	case CollectionInProgress, h.OpenFile:
		file = h.OpenFile
		open, lerr := h.Service.ListOpen(ctx)
		table, err = export.OpenTable(open), lerr
	case CollectionDone, h.ClosedFile:
		file = h.ClosedFile
		closed, lerr := h.Service.ListClosed(ctx)
		table, err = export.ClosedTable(closed), lerr
	default:
		renderError(w, r, http.StatusNotFound, "Unknown collection.")
		return
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("collection", collection).Msg("Failed to load collection for export")
		renderError(w, r, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteStyledXLSX(&buf, table); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("collection", collection).Msg("Failed to build spreadsheet")
		renderError(w, r, http.StatusInternalServerError, genericErrorMessage)
		return
	}
	writeAttachment(w, export.ContentTypeXLSX, "Styled_"+file, buf.Bytes())
}

// GeneratePDF streams the closed collection as a PDF report.
func (h *ExportHandler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	closed, err := h.Service.ListClosed(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to load closed shifts for report")
		renderError(w, r, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	now := time.Now
	if h.Clock != nil {
		now = h.Clock
	}
	report := export.PDFReport{
		Title:     h.ReportTitle,
		Generated: now().In(h.Service.Location()),
		Compress:  true,
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, export.ClosedTable(closed)); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to build PDF report")
		renderError(w, r, http.StatusInternalServerError, genericErrorMessage)
		return
	}
	writeAttachment(w, export.ContentTypePDF, reportFileName, buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
