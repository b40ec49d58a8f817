package services

import (
	"context"

	"studydash/internal/domain/models"
)

// SyllabusPreview is a parsed outline for the user to review before the
// course is created. Degraded is set when the parser fell back to sentinel
// values, found no modules, or left a module without topics.
type SyllabusPreview struct {
	Outline  models.Outline `json:"outline"`
	Degraded bool           `json:"degraded"`
}

// SyllabusService turns syllabus documents into course outlines
type SyllabusService interface {
	// Preview extracts and parses a document without storing anything.
	// .yaml/.yml files are read as hand-written outlines.
	Preview(ctx context.Context, filename string, content []byte) (*SyllabusPreview, error)
}
