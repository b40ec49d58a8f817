package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"studydash/internal/domain"
	"studydash/internal/domain/services"
)

// Registry routes uploaded documents to a converter by file extension.
//
// Thread-safe for concurrent access.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]services.ContentConverter // key: file extension (e.g., ".pdf")
	logger     *slog.Logger
}

// NewRegistry creates a registry with the standard converters registered.
func NewRegistry(logger *slog.Logger) *Registry {
	registry := &Registry{
		converters: make(map[string]services.ContentConverter),
		logger:     logger,
	}

	registry.Register(NewTextConverter())
	registry.Register(NewMarkdownConverter())
	registry.Register(NewHTMLConverter())
	registry.Register(NewPDFConverter(logger))

	return registry
}

// Register associates a converter with its extensions, normalised to
// lowercase with a leading dot. Later registrations win.
func (r *Registry) Register(converter services.ContentConverter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range converter.SupportedExtensions() {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.converters[ext] = converter
	}
}

// GetConverter returns the converter for an extension, or nil.
func (r *Registry) GetConverter(fileExt string) services.ContentConverter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.converters[strings.ToLower(fileExt)]
}

// Extract converts content using the converter registered for the filename's extension.
func (r *Registry) Extract(ctx context.Context, filename string, content []byte) (string, error) {
	ext := filepath.Ext(filename)
	converter := r.GetConverter(ext)
	if converter == nil {
		return "", &domain.ValidationError{
			Message: fmt.Sprintf("unsupported file type %q (supported: %s)", ext, strings.Join(r.SupportedExtensions(), ", ")),
		}
	}

	text, err := converter.Convert(ctx, content)
	if err != nil {
		return "", fmt.Errorf("%s conversion of %s: %w", converter.Name(), filename, err)
	}

	r.logger.Debug("document extracted",
		"filename", filename,
		"converter", converter.Name(),
		"bytes", len(content),
		"chars", len(text),
	)
	return text, nil
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.converters))
	for ext := range r.converters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

var _ services.ContentExtractor = (*Registry)(nil)
