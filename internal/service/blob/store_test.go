package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"studydash/internal/domain"
)

func newTestStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), maxBytes, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func TestPutFetchDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 1024)

	loc, err := s.Put(ctx, "notes.pdf", strings.NewReader("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !strings.HasPrefix(loc, "blob://") {
		t.Errorf("location = %q, want blob:// prefix", loc)
	}

	data, err := s.Fetch(ctx, loc)
	if err != nil || string(data) != "%PDF-1.4 body" {
		t.Fatalf("Fetch() = %q, %v", data, err)
	}

	if err := s.Delete(ctx, loc); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, loc); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
	if _, err := s.Fetch(ctx, loc); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Fetch() after delete error = %v, want ErrNotFound", err)
	}
}

func TestPutRejectsOversize(t *testing.T) {
	s := newTestStore(t, 4)

	_, err := s.Put(context.Background(), "big.bin", bytes.NewReader([]byte("12345")))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Put() error = %v, want ErrValidation", err)
	}
	entries, _ := os.ReadDir(s.dir)
	if len(entries) != 0 {
		t.Errorf("oversize blob left %d files behind", len(entries))
	}
}

func TestFetchLocations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 1024)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("remote"))
	}))
	defer srv.Close()

	local := filepath.Join(t.TempDir(), "local.txt")
	os.WriteFile(local, []byte("local"), 0o644)

	tests := []struct {
		name     string
		location string
		want     string
		wantErr  bool
	}{
		{name: "http", location: srv.URL + "/file", want: "remote"},
		{name: "http error status", location: srv.URL + "/missing", wantErr: true},
		{name: "file scheme", location: "file://" + local, want: "local"},
		{name: "bare path", location: local, want: "local"},
		{name: "bad blob id", location: "blob://not-a-uuid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Fetch(ctx, tt.location)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch(%q) error = %v, wantErr %v", tt.location, err, tt.wantErr)
			}
			if !tt.wantErr && string(got) != tt.want {
				t.Errorf("Fetch(%q) = %q, want %q", tt.location, got, tt.want)
			}
		})
	}
}
