package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studydash/internal/domain"
	"studydash/internal/domain/models"
	"studydash/internal/repository"
	"studydash/internal/repository/memory"
	"studydash/internal/service"
	"studydash/internal/service/blob"
	"studydash/internal/service/export"
	"studydash/internal/service/ingest"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	kv := memory.NewKVStore()
	store := repository.NewStore(repository.StoreConfig{KV: kv, Logger: testLogger})
	blobs, err := blob.NewStore(t.TempDir(), 1<<20, nil, testLogger)
	if err != nil {
		t.Fatalf("blob.NewStore() error = %v", err)
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux, Handlers{
		Courses:  NewCourseHandler(service.NewCourseService(store, kv, blobs, testLogger), 1<<20, testLogger),
		Sessions: NewSessionHandler(service.NewSessionService(store, testLogger), testLogger),
		Syllabus: NewSyllabusHandler(service.NewSyllabusService(ingest.NewRegistry(testLogger), testLogger), 1<<20, testLogger),
		Exports:  NewExportHandler(export.NewService(store, blobs, testLogger), testLogger),
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func decodeCourse(t *testing.T, data []byte) models.Course {
	t.Helper()
	var c models.Course
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("decode course %s: %v", data, err)
	}
	return c
}

func createCourse(t *testing.T, srv *httptest.Server) models.Course {
	t.Helper()
	resp, data := doJSON(t, srv, http.MethodPost, "/api/courses",
		`{"course_name":"Operating Systems","course_code":"CSE301","modules":[{"module_name":"Basics","topics":"Processes - Threads"}]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /api/courses = %d %s", resp.StatusCode, data)
	}
	return decodeCourse(t, data)
}

func TestCourseRoutes(t *testing.T) {
	srv := newTestServer(t)
	c := createCourse(t, srv)
	base := "/api/courses/" + c.ID

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		check      func(t *testing.T, data []byte)
	}{
		{
			name: "list", method: http.MethodGet, path: "/api/courses", wantStatus: http.StatusOK,
			check: func(t *testing.T, data []byte) {
				var list []models.CourseSummary
				_ = json.Unmarshal(data, &list)
				if len(list) != 1 || list[0].TotalTopics != 2 {
					t.Errorf("list = %s", data)
				}
			},
		},
		{
			name: "toggle", method: http.MethodPost, path: base + "/modules/0/topics/1/toggle", wantStatus: http.StatusOK,
			check: func(t *testing.T, data []byte) {
				if c := decodeCourse(t, data); !c.Modules[0].Topics[1].Completed {
					t.Errorf("topic not completed: %s", data)
				}
			},
		},
		{
			name: "module completion", method: http.MethodPut, path: base + "/modules/0/completion", body: `{"completed":true}`, wantStatus: http.StatusOK,
			check: func(t *testing.T, data []byte) {
				if c := decodeCourse(t, data); !c.Modules[0].Completed {
					t.Errorf("module not completed: %s", data)
				}
			},
		},
		{
			name: "add topics", method: http.MethodPost, path: base + "/modules/0/topics", body: `{"topics":"Scheduling, IPC"}`, wantStatus: http.StatusOK,
			check: func(t *testing.T, data []byte) {
				if c := decodeCourse(t, data); len(c.Modules[0].Topics) != 4 || c.Modules[0].Completed {
					t.Errorf("after add topics: %s", data)
				}
			},
		},
		{name: "rename", method: http.MethodPatch, path: base + "/modules/0/topics/0", body: `{"name":"Procs"}`, wantStatus: http.StatusOK},
		{name: "add module", method: http.MethodPost, path: base + "/modules", body: `{"module_name":"Memory","topics":"Paging"}`, wantStatus: http.StatusOK},
		{name: "remove module", method: http.MethodDelete, path: base + "/modules/1", wantStatus: http.StatusOK},
		{name: "reset", method: http.MethodPost, path: base + "/reset", wantStatus: http.StatusOK},
		{name: "bad index", method: http.MethodPost, path: base + "/modules/x/topics/0/toggle", wantStatus: http.StatusBadRequest},
		{name: "unknown module", method: http.MethodPost, path: base + "/modules/9/topics/0/toggle", wantStatus: http.StatusNotFound},
		{name: "unknown course", method: http.MethodGet, path: "/api/courses/404", wantStatus: http.StatusNotFound},
		{name: "unknown field", method: http.MethodPost, path: base + "/modules/0/topics", body: `{"topic":"x"}`, wantStatus: http.StatusBadRequest},
		{name: "invalid create", method: http.MethodPost, path: "/api/courses", body: `{"course_name":""}`, wantStatus: http.StatusBadRequest},
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := doJSON(t, srv, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("%s %s = %d %s, want %d", tt.method, tt.path, resp.StatusCode, data, tt.wantStatus)
			}
			if tt.wantStatus >= 400 && resp.Header.Get("Content-Type") != "application/problem+json" {
				t.Errorf("error Content-Type = %q", resp.Header.Get("Content-Type"))
			}
			if tt.check != nil {
				tt.check(t, data)
			}
		})
	}
}

func TestRemoveLastTopicRejected(t *testing.T) {
	srv := newTestServer(t)
	c := createCourse(t, srv)
	base := "/api/courses/" + c.ID + "/modules/0/topics/"

	if resp, data := doJSON(t, srv, http.MethodDelete, base+"0", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("first remove = %d %s", resp.StatusCode, data)
	}
	resp, data := doJSON(t, srv, http.MethodDelete, base+"0", "")
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(data), "last topic") {
		t.Errorf("removing last topic = %d %s", resp.StatusCode, data)
	}
}

func TestMaterialRoutes(t *testing.T) {
	srv := newTestServer(t)
	c := createCourse(t, srv)
	base := srv.URL + "/api/courses/" + c.ID + "/modules/0/topics/0/materials"

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fw, _ := mw.CreateFormFile("files", "ch1.txt")
	fw.Write([]byte("chapter one"))
	mw.WriteField("links", "example.com/ch1")
	mw.WriteField("notes", "skim first")
	mw.Close()

	resp, err := http.Post(base, mw.FormDataContentType(), body)
	if err != nil {
		t.Fatalf("POST materials error = %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST materials = %d %s", resp.StatusCode, data)
	}
	topic := decodeCourse(t, data).Modules[0].Topics[0]
	if len(topic.Materials) != 2 || topic.Materials[1].Location != "https://example.com/ch1" || !strings.HasSuffix(topic.Notes, "] skim first") {
		t.Fatalf("topic = %+v", topic)
	}
	fileID := topic.Materials[0].ID

	resp, err = http.Get(base + "/" + fileID)
	if err != nil {
		t.Fatalf("GET material error = %v", err)
	}
	content, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(content) != "chapter one" || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		t.Errorf("GET material = %d %q (%s)", resp.StatusCode, content, resp.Header.Get("Content-Type"))
	}

	exportResp, err := http.Get(srv.URL + "/api/courses/" + c.ID + "/export")
	if err != nil {
		t.Fatalf("GET export error = %v", err)
	}
	exportResp.Body.Close()
	if exportResp.StatusCode != http.StatusOK || exportResp.Header.Get("Content-Type") != "application/zip" || exportResp.Header.Get(skippedHeader) != "0" {
		t.Errorf("export = %d %v", exportResp.StatusCode, exportResp.Header)
	}
	if cd := exportResp.Header.Get("Content-Disposition"); !strings.Contains(cd, "Operating Systems - Materials.zip") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	r, data := doJSON(t, srv, http.MethodDelete, "/api/courses/"+c.ID+"/modules/0/topics/0/materials/"+fileID, "")
	if r.StatusCode != http.StatusOK || len(decodeCourse(t, data).Modules[0].Topics[0].Materials) != 1 {
		t.Errorf("DELETE material = %d %s", r.StatusCode, data)
	}
	if r, _ := doJSON(t, srv, http.MethodGet, "/api/courses/"+c.ID+"/modules/0/topics/0/materials/"+fileID, ""); r.StatusCode != http.StatusNotFound {
		t.Errorf("GET deleted material = %d", r.StatusCode)
	}

	empty := new(bytes.Buffer)
	ew := multipart.NewWriter(empty)
	ew.Close()
	resp, _ = http.Post(base, ew.FormDataContentType(), empty)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty materials = %d", resp.StatusCode)
	}
}

func TestSyllabusParse(t *testing.T) {
	srv := newTestServer(t)

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fw, _ := mw.CreateFormFile("file", "syllabus.txt")
	fw.Write([]byte("CSE301 Operating Systems\nModule 1 - Basics\n• Processes • Threads\n"))
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/syllabus/parse", mw.FormDataContentType(), body)
	if err != nil {
		t.Fatalf("POST parse error = %v", err)
	}
	defer resp.Body.Close()
	var preview struct {
		Outline  models.Outline `json:"outline"`
		Degraded bool           `json:"degraded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&preview); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if resp.StatusCode != http.StatusOK || preview.Outline.Code != "CSE301" || len(preview.Outline.Modules) != 1 || preview.Degraded {
		t.Errorf("preview = %d %+v", resp.StatusCode, preview)
	}

	resp2, err := http.Post(srv.URL+"/api/syllabus/parse", "text/plain", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("POST parse error = %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Errorf("non-multipart parse = %d", resp2.StatusCode)
	}
}

func TestSessionRoutes(t *testing.T) {
	srv := newTestServer(t)

	if r, _ := doJSON(t, srv, http.MethodGet, "/api/session", ""); r.StatusCode != http.StatusNotFound {
		t.Errorf("GET session before sign in = %d", r.StatusCode)
	}
	r, data := doJSON(t, srv, http.MethodPost, "/api/session", `{"email":"ada@example.com"}`)
	if r.StatusCode != http.StatusOK || !strings.Contains(string(data), `"username":"ada"`) {
		t.Errorf("POST session = %d %s", r.StatusCode, data)
	}
	if r, _ := doJSON(t, srv, http.MethodDelete, "/api/session", ""); r.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE session = %d", r.StatusCode)
	}
	if r, _ := doJSON(t, srv, http.MethodGet, "/api/export", ""); r.StatusCode != http.StatusBadRequest {
		t.Errorf("GET export with no courses = %d", r.StatusCode)
	}
}

func TestHandleErrorConflict(t *testing.T) {
	w := httptest.NewRecorder()
	handleError(w, &domain.ConflictError{Message: "stale", ResourceType: "course", ResourceID: "1", Revision: 7})

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["revision"] != float64(7) || body["detail"] != "stale" {
		t.Errorf("body = %v", body)
	}
}
