package handler

import (
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"studydash/internal/domain/models"
	"studydash/internal/domain/services"
	"studydash/internal/httputil"
)

// CourseHandler handles course HTTP requests. Modules and topics are
// addressed by index, matching the order the client displays them in.
type CourseHandler struct {
	courseService  services.CourseService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService services.CourseService, maxUploadBytes int64, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{
		courseService:  courseService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ListCourses returns the dashboard summaries
// GET /api/courses
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseService.ListCourses(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, courses)
}

// CreateCourse creates a course from manual entry
// POST /api/courses
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req services.CreateCourseRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.courseService.CreateCourse(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, course)
}

// CreateCourseFromOutline creates a course from a reviewed syllabus outline
// POST /api/courses/outline
func (h *CourseHandler) CreateCourseFromOutline(w http.ResponseWriter, r *http.Request) {
	var outline models.Outline
	if err := httputil.ParseJSON(w, r, &outline); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.courseService.CreateCourseFromOutline(r.Context(), outline)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, course)
}

// GET /api/courses/{id}
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseService.GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, course)
}

// DELETE /api/courses/{id}
func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.courseService.DeleteCourse(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetProgress marks every topic incomplete
// POST /api/courses/{id}/reset
func (h *CourseHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	h.respondCourse(w)(h.courseService.ResetProgress(r.Context(), r.PathValue("id")))
}

// POST /api/courses/{id}/modules
func (h *CourseHandler) AddModule(w http.ResponseWriter, r *http.Request) {
	var req services.AddModuleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondCourse(w)(h.courseService.AddModule(r.Context(), r.PathValue("id"), &req))
}

// DELETE /api/courses/{id}/modules/{m}
func (h *CourseHandler) RemoveModule(w http.ResponseWriter, r *http.Request) {
	id, m, err := moduleAddress(r)
	if err != nil {
		handleError(w, err)
		return
	}
	h.respondCourse(w)(h.courseService.RemoveModule(r.Context(), id, m))
}

type moduleCompletionRequest struct {
	Completed bool `json:"completed"`
}

// SetModuleCompletion marks every topic of a module done or not done
// PUT /api/courses/{id}/modules/{m}/completion
func (h *CourseHandler) SetModuleCompletion(w http.ResponseWriter, r *http.Request) {
	id, m, err := moduleAddress(r)
	if err != nil {
		handleError(w, err)
		return
	}
	var req moduleCompletionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondCourse(w)(h.courseService.SetModuleCompletion(r.Context(), id, m, req.Completed))
}

// POST /api/courses/{id}/modules/{m}/topics
func (h *CourseHandler) AddTopics(w http.ResponseWriter, r *http.Request) {
	id, m, err := moduleAddress(r)
	if err != nil {
		handleError(w, err)
		return
	}
	var req services.AddTopicsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondCourse(w)(h.courseService.AddTopics(r.Context(), id, m, &req))
}

// PATCH /api/courses/{id}/modules/{m}/topics/{t}
func (h *CourseHandler) RenameTopic(w http.ResponseWriter, r *http.Request) {
	id, m, t, err := topicAddress(r)
	if err != nil {
		handleError(w, err)
		return
	}
	var req services.RenameTopicRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondCourse(w)(h.courseService.RenameTopic(r.Context(), id, m, t, &req))
}

// DELETE /api/courses/{id}/modules/{m}/topics/{t}
func (h *CourseHandler) RemoveTopic(w http.ResponseWriter, r *http.Request) {
	id, m, t, err := topicAddress(r)
	if err != nil {
		handleError(w, err)
		return
	}
	h.respondCourse(w)(h.courseService.RemoveTopic(r.Context(), id, m, t))
}

// POST /api/courses/{id}/modules/{m}/topics/{t}/toggle
func (h *CourseHandler) ToggleTopic(w http.ResponseWriter, r *http.Request) {
	id, m, t, err := topicAddress(r)
	if err != nil {
		handleError(w, err)
		return
	}
	h.respondCourse(w)(h.courseService.ToggleTopic(r.Context(), id, m, t))
}

// AddMaterials attaches uploaded files, links and a note to a topic.
// POST /api/courses/{id}/modules/{m}/topics/{t}/materials
//
// Multipart fields:
//   - files: any number of files
//   - links: any number of URLs
//   - notes: optional note text, appended with a timestamp
func (h *CourseHandler) AddMaterials(w http.ResponseWriter, r *http.Request) {
	id, m, t, err := topicAddress(r)
	if err != nil {
		handleError(w, err)
		return
	}
	if !parseMultipart(w, r, h.maxUploadBytes) {
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req := services.AddMaterialsRequest{
		Links: r.MultipartForm.Value["links"],
		Note:  r.FormValue("notes"),
	}

	// defer file.Close() is safe here because all files are consumed
	// before this function returns.
	for _, fileHeader := range r.MultipartForm.File["files"] {
		file, err := fileHeader.Open()
		if err != nil {
			h.logger.Error("failed to open uploaded file",
				"file", fileHeader.Filename,
				"error", err,
			)
			httputil.RespondError(w, http.StatusInternalServerError, "failed to open file "+fileHeader.Filename)
			return
		}
		defer func() { _ = file.Close() }()

		req.Files = append(req.Files, services.UploadedFile{
			Filename: fileHeader.Filename,
			Content:  file,
		})
	}

	h.logger.Debug("adding materials",
		"course_id", id,
		"module", m,
		"topic", t,
		"files", len(req.Files),
		"links", len(req.Links),
	)
	h.respondCourse(w)(h.courseService.AddMaterials(r.Context(), id, m, t, &req))
}

// OpenMaterial serves the content of a file material
// GET /api/courses/{id}/modules/{m}/topics/{t}/materials/{materialID}
func (h *CourseHandler) OpenMaterial(w http.ResponseWriter, r *http.Request) {
	id, m, t, err := topicAddress(r)
	if err != nil {
		handleError(w, err)
		return
	}
	content, err := h.courseService.OpenMaterial(r.Context(), id, m, t, r.PathValue("materialID"))
	if err != nil {
		handleError(w, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(content.Name))
	if contentType == "" {
		contentType = http.DetectContentType(content.Data)
	}
	httputil.RespondFile(w, content.Name, contentType, content.Data, r.URL.Query().Get("download") == "true")
}

// DeleteMaterial removes a material; unknown ids still return the course
// DELETE /api/courses/{id}/modules/{m}/topics/{t}/materials/{materialID}
func (h *CourseHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, m, t, err := topicAddress(r)
	if err != nil {
		handleError(w, err)
		return
	}
	h.respondCourse(w)(h.courseService.DeleteMaterial(r.Context(), id, m, t, r.PathValue("materialID")))
}

// DELETE /api/courses/{id}/modules/{m}/topics/{t}/notes
func (h *CourseHandler) ClearNotes(w http.ResponseWriter, r *http.Request) {
	id, m, t, err := topicAddress(r)
	if err != nil {
		handleError(w, err)
		return
	}
	h.respondCourse(w)(h.courseService.ClearNotes(r.Context(), id, m, t))
}

// respondCourse writes the updated course of a mutation, or its error
func (h *CourseHandler) respondCourse(w http.ResponseWriter) func(*models.Course, error) {
	return func(course *models.Course, err error) {
		if err != nil {
			handleError(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, course)
	}
}
