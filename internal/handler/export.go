package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"studydash/internal/domain/services"
	"studydash/internal/httputil"
)

// skippedHeader carries the number of materials left out of an archive
const skippedHeader = "X-Skipped-Materials"

// ExportHandler serves course archives
type ExportHandler struct {
	exportService services.ExportService
	logger        *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService services.ExportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		logger:        logger,
	}
}

// ExportCourse downloads one course as a zip
// GET /api/courses/{id}/export
func (h *ExportHandler) ExportCourse(w http.ResponseWriter, r *http.Request) {
	archive, err := h.exportService.ExportCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	h.respondArchive(w, archive)
}

// ExportAll downloads every course as one zip
// GET /api/export
func (h *ExportHandler) ExportAll(w http.ResponseWriter, r *http.Request) {
	archive, err := h.exportService.ExportAll(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	h.respondArchive(w, archive)
}

func (h *ExportHandler) respondArchive(w http.ResponseWriter, archive *services.Archive) {
	for _, s := range archive.Skipped {
		h.logger.Debug("material missing from archive", "course_id", s.CourseID, "path", s.Path, "reason", s.Reason)
	}
	w.Header().Set(skippedHeader, strconv.Itoa(len(archive.Skipped)))
	httputil.RespondFile(w, archive.Filename, "application/zip", archive.Data, true)
}
