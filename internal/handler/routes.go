package handler

import "net/http"

// Handlers groups everything RegisterRoutes wires up
type Handlers struct {
	Courses  *CourseHandler
	Sessions *SessionHandler
	Syllabus *SyllabusHandler
	Exports  *ExportHandler
}

// RegisterRoutes adds all API routes to mux (Go 1.22+ enhanced patterns)
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	// Health check
	mux.HandleFunc("GET /health", Health)

	// Session routes
	mux.HandleFunc("POST /api/session", h.Sessions.SignIn)
	mux.HandleFunc("GET /api/session", h.Sessions.CurrentUser)
	mux.HandleFunc("DELETE /api/session", h.Sessions.SignOut)

	// Syllabus import
	mux.HandleFunc("POST /api/syllabus/parse", h.Syllabus.Parse)

	// Course routes
	mux.HandleFunc("GET /api/courses", h.Courses.ListCourses)
	mux.HandleFunc("POST /api/courses", h.Courses.CreateCourse)
	mux.HandleFunc("POST /api/courses/outline", h.Courses.CreateCourseFromOutline)
	mux.HandleFunc("GET /api/courses/{id}", h.Courses.GetCourse)
	mux.HandleFunc("DELETE /api/courses/{id}", h.Courses.DeleteCourse)
	mux.HandleFunc("POST /api/courses/{id}/reset", h.Courses.ResetProgress)

	// Module routes
	mux.HandleFunc("POST /api/courses/{id}/modules", h.Courses.AddModule)
	mux.HandleFunc("DELETE /api/courses/{id}/modules/{m}", h.Courses.RemoveModule)
	mux.HandleFunc("PUT /api/courses/{id}/modules/{m}/completion", h.Courses.SetModuleCompletion)

	// Topic routes
	mux.HandleFunc("POST /api/courses/{id}/modules/{m}/topics", h.Courses.AddTopics)
	mux.HandleFunc("PATCH /api/courses/{id}/modules/{m}/topics/{t}", h.Courses.RenameTopic)
	mux.HandleFunc("DELETE /api/courses/{id}/modules/{m}/topics/{t}", h.Courses.RemoveTopic)
	mux.HandleFunc("POST /api/courses/{id}/modules/{m}/topics/{t}/toggle", h.Courses.ToggleTopic)
	mux.HandleFunc("DELETE /api/courses/{id}/modules/{m}/topics/{t}/notes", h.Courses.ClearNotes)

	// Material routes
	mux.HandleFunc("POST /api/courses/{id}/modules/{m}/topics/{t}/materials", h.Courses.AddMaterials)
	mux.HandleFunc("GET /api/courses/{id}/modules/{m}/topics/{t}/materials/{materialID}", h.Courses.OpenMaterial)
	mux.HandleFunc("DELETE /api/courses/{id}/modules/{m}/topics/{t}/materials/{materialID}", h.Courses.DeleteMaterial)

	// Export routes
	mux.HandleFunc("GET /api/courses/{id}/export", h.Exports.ExportCourse)
	mux.HandleFunc("GET /api/export", h.Exports.ExportAll)
}
