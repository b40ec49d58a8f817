package handler

import (
	"io"
	"log/slog"
	"net/http"

	"studydash/internal/domain/services"
	"studydash/internal/httputil"
)

// SyllabusHandler turns uploaded syllabus documents into outline previews
type SyllabusHandler struct {
	syllabusService services.SyllabusService
	maxUploadBytes  int64
	logger          *slog.Logger
}

// NewSyllabusHandler creates a new syllabus handler
func NewSyllabusHandler(syllabusService services.SyllabusService, maxUploadBytes int64, logger *slog.Logger) *SyllabusHandler {
	return &SyllabusHandler{
		syllabusService: syllabusService,
		maxUploadBytes:  maxUploadBytes,
		logger:          logger,
	}
}

// Parse extracts an outline from the multipart field "file". Nothing is
// stored; the client reviews the outline and posts it to /api/courses/outline.
// POST /api/syllabus/parse
func (h *SyllabusHandler) Parse(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r, h.maxUploadBytes) {
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read uploaded syllabus", "file", header.Filename, "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	preview, err := h.syllabusService.Preview(r.Context(), header.Filename, content)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, preview)
}
