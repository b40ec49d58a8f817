package services

import (
	"context"
	"io"

	"studydash/internal/domain/models"
)

// ModuleInput is one module of a manually entered course.
// Topics is free text, split on "-" first, then ",".
type ModuleInput struct {
	Name   string `json:"module_name"`
	Topics string `json:"topics"`
}

// CreateCourseRequest represents a manually entered course
type CreateCourseRequest struct {
	Name    string        `json:"course_name"`
	Code    string        `json:"course_code"`
	Modules []ModuleInput `json:"modules"`
}

// AddModuleRequest adds a module to an existing course.
// A zero Number means "after the last module".
type AddModuleRequest struct {
	Number int    `json:"module_number"`
	Name   string `json:"module_name"`
	Topics string `json:"topics"`
}

// AddTopicsRequest carries topic names split on "," first, then "-"
type AddTopicsRequest struct {
	Topics string `json:"topics"`
}

type RenameTopicRequest struct {
	Name string `json:"name"`
}

// UploadedFile represents a file attached by the user
type UploadedFile struct {
	Filename string
	Content  io.Reader
}

// AddMaterialsRequest attaches any mix of files, links and a note to a topic
type AddMaterialsRequest struct {
	Files []UploadedFile
	Links []string
	Note  string
}

// MaterialContent is the stored content of a file material
type MaterialContent struct {
	Name string
	Data []byte
}

// CourseService owns every mutation of stored courses. Modules and topics
// are addressed by their index within the course and module.
type CourseService interface {
	// CreateCourse creates a course from manual entry
	CreateCourse(ctx context.Context, req *CreateCourseRequest) (*models.Course, error)

	// CreateCourseFromOutline creates a course from a (corrected) parsed outline
	CreateCourseFromOutline(ctx context.Context, outline models.Outline) (*models.Course, error)

	// GetCourse returns the outline merged with saved progress
	GetCourse(ctx context.Context, id string) (*models.Course, error)

	ListCourses(ctx context.Context) ([]models.CourseSummary, error)

	// DeleteCourse removes the course, its progress and its stored files
	DeleteCourse(ctx context.Context, id string) error

	ToggleTopic(ctx context.Context, id string, module, topic int) (*models.Course, error)

	// SetModuleCompletion marks every topic of a module done or not done
	SetModuleCompletion(ctx context.Context, id string, module int, done bool) (*models.Course, error)

	RenameTopic(ctx context.Context, id string, module, topic int, req *RenameTopicRequest) (*models.Course, error)
	AddTopics(ctx context.Context, id string, module int, req *AddTopicsRequest) (*models.Course, error)

	// RemoveTopic rejects removing the last topic of a module
	RemoveTopic(ctx context.Context, id string, module, topic int) (*models.Course, error)

	AddModule(ctx context.Context, id string, req *AddModuleRequest) (*models.Course, error)
	RemoveModule(ctx context.Context, id string, module int) (*models.Course, error)

	AddMaterials(ctx context.Context, id string, module, topic int, req *AddMaterialsRequest) (*models.Course, error)

	// DeleteMaterial is a no-op for unknown material ids
	DeleteMaterial(ctx context.Context, id string, module, topic int, materialID string) (*models.Course, error)

	// OpenMaterial returns the content of a file material
	OpenMaterial(ctx context.Context, id string, module, topic int, materialID string) (*MaterialContent, error)

	ClearNotes(ctx context.Context, id string, module, topic int) (*models.Course, error)

	// ResetProgress marks everything incomplete, keeping materials and notes
	ResetProgress(ctx context.Context, id string) (*models.Course, error)
}
