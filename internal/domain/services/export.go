package services

import (
	"context"
	"io"
)

// SkippedMaterial records a file that could not be fetched during export
type SkippedMaterial struct {
	CourseID string `json:"course_id"`
	Path     string `json:"path"`
	Reason   string `json:"reason"`
}

// Archive is a finished export ready for download
type Archive struct {
	Filename string
	Data     []byte
	Skipped  []SkippedMaterial
}

// ExportService packages course materials and notes as zip archives
type ExportService interface {
	// ExportCourse archives one course as "<name> - Materials.zip"
	ExportCourse(ctx context.Context, id string) (*Archive, error)

	// ExportAll archives every course under one root folder.
	// Fails with a ValidationError when there are no courses.
	ExportAll(ctx context.Context) (*Archive, error)
}

// BlobStore holds the content of file materials
type BlobStore interface {
	// Put stores content and returns its location
	Put(ctx context.Context, name string, content io.Reader) (string, error)

	// Fetch reads the content at location
	Fetch(ctx context.Context, location string) ([]byte, error)

	// Delete removes stored content. Unknown locations are ignored.
	Delete(ctx context.Context, location string) error
}
