package repositories

import (
	"context"
	"time"

	"studydash/internal/domain/models"
)

// CourseRepository is the typed view over the key-value layout:
//
//	currentUser     models.User
//	courses         []models.CourseSummary
//	course_<id>     models.Outline
//	progress_<id>   models.Course
type CourseRepository interface {
	// NextCourseID derives a fresh id from the creation time, bumping it
	// until it is unused
	NextCourseID(ctx context.Context, now time.Time) (string, error)

	// GetOutline returns the stored outline or a NotFoundError
	GetOutline(ctx context.Context, id string) (*models.Outline, error)

	// SaveOutline overwrites the outline of a course
	SaveOutline(ctx context.Context, id string, outline models.Outline) error

	// GetProgress returns saved progress, or nil if none has been saved yet
	GetProgress(ctx context.Context, id string) (*models.Course, error)

	// SaveProgress stores the course if its Revision matches the stored one,
	// then increments Revision. A mismatch returns a ConflictError.
	// The course list entry is refreshed from the same data.
	SaveProgress(ctx context.Context, course *models.Course) error

	// ListCourses returns the course list in creation order
	ListCourses(ctx context.Context) ([]models.CourseSummary, error)

	// SaveCourseList overwrites the course list
	SaveCourseList(ctx context.Context, courses []models.CourseSummary) error

	// RebuildCourseList recomputes every list entry from stored progress
	RebuildCourseList(ctx context.Context) ([]models.CourseSummary, error)

	// DeleteCourse removes the list entry, outline and progress.
	// Deleting an unknown course returns a NotFoundError.
	DeleteCourse(ctx context.Context, id string) error

	// GetCurrentUser returns nil when nobody is signed in
	GetCurrentUser(ctx context.Context) (*models.User, error)
	SaveCurrentUser(ctx context.Context, user models.User) error
	ClearCurrentUser(ctx context.Context) error
}
