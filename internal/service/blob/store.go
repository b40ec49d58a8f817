package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"studydash/internal/domain"
	"studydash/internal/domain/services"
)

const scheme = "blob://"

// Store keeps file materials in a directory, one file per blob named by a
// UUIDv7. It can also fetch file:// paths and http(s) URLs for export.
type Store struct {
	dir      string
	maxBytes int64
	client   *http.Client
	logger   *slog.Logger
}

// NewStore creates the blob directory if needed
func NewStore(dir string, maxBytes int64, client *http.Client, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Store{dir: dir, maxBytes: maxBytes, client: client, logger: logger}, nil
}

// Put writes content to a new blob. Content over the size limit is rejected.
func (s *Store) Put(ctx context.Context, name string, content io.Reader) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate blob id: %w", err)
	}
	path := filepath.Join(s.dir, id.String())

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(content, s.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > s.maxBytes {
		err = &domain.ValidationError{Message: fmt.Sprintf("file %q exceeds %d bytes", name, s.maxBytes)}
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}

	s.logger.Debug("blob stored", "name", name, "id", id.String(), "bytes", n)
	return scheme + id.String(), nil
}

// Fetch reads blob://, file:// (or bare path) and http(s):// locations
func (s *Store) Fetch(ctx context.Context, location string) ([]byte, error) {
	switch {
	case strings.HasPrefix(location, scheme):
		path, err := s.blobPath(location)
		if err != nil {
			return nil, err
		}
		return s.readFile(path)
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return s.fetchURL(ctx, location)
	case strings.HasPrefix(location, "file://"):
		return s.readFile(strings.TrimPrefix(location, "file://"))
	default:
		return s.readFile(location)
	}
}

// Delete removes a blob. Only blob:// locations are owned by the store.
func (s *Store) Delete(ctx context.Context, location string) error {
	if !strings.HasPrefix(location, scheme) {
		return nil
	}
	path, err := s.blobPath(location)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func (s *Store) blobPath(location string) (string, error) {
	id, err := uuid.Parse(strings.TrimPrefix(location, scheme))
	if err != nil {
		return "", &domain.ValidationError{Message: fmt.Sprintf("invalid blob location %q", location)}
	}
	return filepath.Join(s.dir, id.String()), nil
}

func (s *Store) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("blob %s not found", filepath.Base(path))}
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

func (s *Store) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("fetch %s: body exceeds %d bytes", url, s.maxBytes)
	}
	return data, nil
}

var _ services.BlobStore = (*Store)(nil)
