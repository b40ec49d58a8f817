package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"studydash/internal/domain"
	"studydash/internal/httputil"
)

// pathIndex reads a non-negative integer path value such as {m} or {t}
func pathIndex(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		return 0, &domain.ValidationError{Message: fmt.Sprintf("invalid %s index %q", name, raw)}
	}
	return i, nil
}

// moduleAddress reads {id} and {m}
func moduleAddress(r *http.Request) (string, int, error) {
	m, err := pathIndex(r, "m")
	if err != nil {
		return "", 0, err
	}
	return r.PathValue("id"), m, nil
}

// topicAddress reads {id}, {m} and {t}
func topicAddress(r *http.Request) (string, int, int, error) {
	id, m, err := moduleAddress(r)
	if err != nil {
		return "", 0, 0, err
	}
	t, err := pathIndex(r, "t")
	if err != nil {
		return "", 0, 0, err
	}
	return id, m, t, nil
}

// Health reports that the server is up
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseMultipart parses a multipart body, answering 413 for oversized
// uploads and 400 for malformed ones. It reports whether parsing succeeded.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) bool {
	err := httputil.ParseMultipart(w, r, maxBytes)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", maxBytes))
		return false
	}
	httputil.RespondError(w, http.StatusBadRequest, err.Error())
	return false
}
