package export

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"studydash/internal/domain"
	"studydash/internal/domain/models"
	"studydash/internal/domain/repositories"
	"studydash/internal/domain/services"
)

const allCoursesArchiveName = "StudyDash - All Materials.zip"

// exportService implements the ExportService interface
type exportService struct {
	repo    repositories.CourseRepository
	builder *Builder
	logger  *slog.Logger
}

// Option customises an export service
type Option func(*exportService)

// WithClock replaces time.Now for export timestamps
func WithClock(now func() time.Time) Option {
	return func(s *exportService) { s.builder.now = now }
}

// NewService creates a new export service
func NewService(repo repositories.CourseRepository, blobs Fetcher, logger *slog.Logger, opts ...Option) services.ExportService {
	s := &exportService{
		repo:    repo,
		builder: NewBuilder(blobs, logger),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *exportService) ExportCourse(ctx context.Context, id string) (*services.Archive, error) {
	course, err := s.loadCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	root, skipped, err := s.builder.CourseTree(ctx, course)
	if err != nil {
		return nil, err
	}
	return s.pack(root, SanitizeSegment(course.Name)+" - Materials.zip", skipped, 1)
}

func (s *exportService) ExportAll(ctx context.Context) (*services.Archive, error) {
	list, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, &domain.ValidationError{Message: "no courses to export"}
	}
	user, err := s.repo.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]CourseEntry, 0, len(list))
	for _, summary := range list {
		course, err := s.loadCourse(ctx, summary.ID)
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("course list entry has no outline, skipping", "course_id", summary.ID)
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, CourseEntry{Course: course, Summary: summary})
	}

	root, skipped, err := s.builder.AllCoursesTree(ctx, user, entries)
	if err != nil {
		return nil, err
	}
	return s.pack(root, allCoursesArchiveName, skipped, len(entries))
}

func (s *exportService) loadCourse(ctx context.Context, id string) (*models.Course, error) {
	outline, err := s.repo.GetOutline(ctx, id)
	if err != nil {
		return nil, err
	}
	progress, err := s.repo.GetProgress(ctx, id)
	if err != nil {
		return nil, err
	}
	course := models.MergeProgress(id, *outline, progress)
	return &course, nil
}

func (s *exportService) pack(root *Node, filename string, skipped []services.SkippedMaterial, courses int) (*services.Archive, error) {
	data, err := Zip(root, s.builder.now())
	if err != nil {
		s.logger.Error("export failed", "filename", filename, "error", err)
		return nil, err
	}
	if skipped == nil {
		skipped = []services.SkippedMaterial{}
	}

	s.logger.Info("export complete",
		"filename", filename,
		"courses", courses,
		"bytes", len(data),
		"skipped", len(skipped),
	)
	return &services.Archive{Filename: filename, Data: data, Skipped: skipped}, nil
}
