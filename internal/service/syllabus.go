package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"studydash/internal/domain"
	"studydash/internal/domain/services"
	"studydash/internal/service/syllabus"
)

// syllabusService implements the SyllabusService interface
type syllabusService struct {
	extractor services.ContentExtractor
	logger    *slog.Logger
}

// NewSyllabusService creates a new syllabus service
func NewSyllabusService(extractor services.ContentExtractor, logger *slog.Logger) services.SyllabusService {
	return &syllabusService{extractor: extractor, logger: logger}
}

func (s *syllabusService) Preview(ctx context.Context, filename string, content []byte) (*services.SyllabusPreview, error) {
	if len(content) == 0 {
		return nil, &domain.ValidationError{Message: "syllabus file is empty"}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	var preview services.SyllabusPreview
	if ext == ".yaml" || ext == ".yml" {
		outline, err := syllabus.LoadOutlineYAML(content)
		if err != nil {
			return nil, err
		}
		preview.Outline = outline
	} else {
		text, err := s.extractor.Extract(ctx, filename, content)
		if err != nil {
			return nil, err
		}
		preview.Outline = syllabus.ParseDocument(text)
	}
	preview.Degraded = preview.Outline.Degraded()

	topics := 0
	for _, m := range preview.Outline.Modules {
		topics += len(m.Topics)
	}
	s.logger.Info("syllabus parsed",
		"filename", filename,
		"course_code", preview.Outline.Code,
		"modules", len(preview.Outline.Modules),
		"topics", topics,
		"degraded", preview.Degraded,
	)
	return &preview, nil
}
