package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"studydash/internal/config"
	"studydash/internal/domain"
	"studydash/internal/domain/models"
	"studydash/internal/domain/repositories"
	"studydash/internal/domain/services"
)

// courseService implements the CourseService interface
type courseService struct {
	repo   repositories.CourseRepository
	tx     repositories.TransactionManager
	blobs  services.BlobStore
	logger *slog.Logger
	now    func() time.Time
}

// CourseOption customises a course service
type CourseOption func(*courseService)

// WithClock replaces time.Now for note timestamps, material dates and ids
func WithClock(now func() time.Time) CourseOption {
	return func(s *courseService) { s.now = now }
}

// NewCourseService creates a new course service
func NewCourseService(
	repo repositories.CourseRepository,
	tx repositories.TransactionManager,
	blobs services.BlobStore,
	logger *slog.Logger,
	opts ...CourseOption,
) services.CourseService {
	s := &courseService{
		repo:   repo,
		tx:     tx,
		blobs:  blobs,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCourse creates a course from manual entry
func (s *courseService) CreateCourse(ctx context.Context, req *services.CreateCourseRequest) (*models.Course, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	outline := models.Outline{
		Name:    strings.TrimSpace(req.Name),
		Code:    strings.TrimSpace(req.Code),
		Modules: make([]models.OutlineModule, 0, len(req.Modules)),
	}
	for i, m := range req.Modules {
		outline.Modules = append(outline.Modules, models.OutlineModule{
			Number: i + 1,
			Name:   strings.TrimSpace(m.Name),
			Topics: splitTopics(m.Topics, "-", ","),
		})
	}

	return s.create(ctx, outline)
}

// CreateCourseFromOutline creates a course from a reviewed syllabus outline
func (s *courseService) CreateCourseFromOutline(ctx context.Context, outline models.Outline) (*models.Course, error) {
	outline = normalizeOutline(outline)
	if err := validateOutline(&outline); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return s.create(ctx, outline)
}

func (s *courseService) create(ctx context.Context, outline models.Outline) (*models.Course, error) {
	var course models.Course
	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		id, err := s.repo.NextCourseID(ctx, s.now())
		if err != nil {
			return err
		}
		course = models.NewCourse(id, outline)
		if err := s.repo.SaveOutline(ctx, id, outline); err != nil {
			return err
		}
		return s.repo.SaveProgress(ctx, &course)
	})
	if err != nil {
		return nil, err
	}

	total, _ := course.Counts()
	s.logger.Info("course created",
		"course_id", course.ID,
		"name", course.Name,
		"modules", len(course.Modules),
		"topics", total,
	)
	return &course, nil
}

// GetCourse returns the stored outline merged with saved progress
func (s *courseService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
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

func (s *courseService) ListCourses(ctx context.Context) ([]models.CourseSummary, error) {
	return s.repo.ListCourses(ctx)
}

// DeleteCourse removes all stored state of a course, then its files
func (s *courseService) DeleteCourse(ctx context.Context, id string) error {
	var course *models.Course
	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		course, err = s.GetCourse(ctx, id)
		if err != nil {
			return err
		}
		return s.repo.DeleteCourse(ctx, id)
	})
	if err != nil {
		return err
	}

	for _, m := range course.Modules {
		s.deleteTopicBlobs(ctx, id, m.Topics...)
	}
	s.logger.Info("course deleted", "course_id", id, "name", course.Name)
	return nil
}

func (s *courseService) ToggleTopic(ctx context.Context, id string, module, topic int) (*models.Course, error) {
	return s.mutate(ctx, id, "toggle_topic", func(c *models.Course) error {
		m, err := c.Module(module)
		if err != nil {
			return err
		}
		return m.ToggleTopic(topic)
	})
}

func (s *courseService) SetModuleCompletion(ctx context.Context, id string, module int, done bool) (*models.Course, error) {
	return s.mutate(ctx, id, "set_module_completion", func(c *models.Course) error {
		m, err := c.Module(module)
		if err != nil {
			return err
		}
		m.SetAllTopics(done)
		return nil
	})
}

func (s *courseService) RenameTopic(ctx context.Context, id string, module, topic int, req *services.RenameTopicRequest) (*models.Course, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxTopicNameLength),
			validation.By(notBlank),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.mutate(ctx, id, "rename_topic", func(c *models.Course) error {
		t, err := topicAt(c, module, topic)
		if err != nil {
			return err
		}
		t.Name = strings.TrimSpace(req.Name)
		return nil
	})
}

func (s *courseService) AddTopics(ctx context.Context, id string, module int, req *services.AddTopicsRequest) (*models.Course, error) {
	names := splitTopics(req.Topics, ",", "-")
	if err := validateTopicNames(names); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.mutate(ctx, id, "add_topics", func(c *models.Course) error {
		m, err := c.Module(module)
		if err != nil {
			return err
		}
		return m.AddTopics(names)
	})
}

func (s *courseService) RemoveTopic(ctx context.Context, id string, module, topic int) (*models.Course, error) {
	var removed models.Topic
	course, err := s.mutate(ctx, id, "remove_topic", func(c *models.Course) error {
		m, err := c.Module(module)
		if err != nil {
			return err
		}
		t, err := m.Topic(topic)
		if err != nil {
			return err
		}
		removed = *t
		return m.RemoveTopic(topic)
	})
	if err != nil {
		return nil, err
	}
	s.deleteTopicBlobs(ctx, id, removed)
	return course, nil
}

func (s *courseService) AddModule(ctx context.Context, id string, req *services.AddModuleRequest) (*models.Course, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Number, validation.Min(0)),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxModuleNameLength),
			validation.By(notBlank),
		),
		validation.Field(&req.Topics, validation.Required, validation.By(notBlank)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	names := splitTopics(req.Topics, ",", "-")
	if err := validateTopicNames(names); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.mutate(ctx, id, "add_module", func(c *models.Course) error {
		m := models.Module{Number: req.Number, Name: req.Name}
		for _, name := range names {
			m.Topics = append(m.Topics, models.Topic{Name: name, Materials: []models.Material{}})
		}
		return c.AddModule(m)
	})
}

func (s *courseService) RemoveModule(ctx context.Context, id string, module int) (*models.Course, error) {
	var removed models.Module
	course, err := s.mutate(ctx, id, "remove_module", func(c *models.Course) error {
		var err error
		removed, err = c.RemoveModule(module)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.deleteTopicBlobs(ctx, id, removed.Topics...)
	return course, nil
}

// AddMaterials stores uploaded files first, then records files, links and
// the note in one save. Stored files are removed again if the save fails.
func (s *courseService) AddMaterials(ctx context.Context, id string, module, topic int, req *services.AddMaterialsRequest) (*models.Course, error) {
	links := make([]string, 0, len(req.Links))
	for _, l := range req.Links {
		if l = strings.TrimSpace(l); l != "" {
			links = append(links, l)
		}
	}
	note := strings.TrimSpace(req.Note)
	if len(req.Files) == 0 && len(links) == 0 && note == "" {
		return nil, &domain.ValidationError{Message: "add at least one file, link or note"}
	}
	// Reject bad addresses before any file is stored
	if _, err := s.GetCourse(ctx, id); err != nil {
		return nil, err
	}

	now := s.now()
	var added []models.Material
	for _, f := range req.Files {
		name := filepath.Base(strings.TrimSpace(f.Filename))
		if name == "" || name == "." || len(name) > config.MaxMaterialNameLength {
			s.discardMaterials(ctx, id, added)
			return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid file name %q", f.Filename)}
		}
		location, err := s.blobs.Put(ctx, name, f.Content)
		if err != nil {
			s.discardMaterials(ctx, id, added)
			return nil, err
		}
		mat, err := newMaterial(name, models.MaterialFile, location, now)
		if err != nil {
			s.discardMaterials(ctx, id, append(added, models.Material{Kind: models.MaterialFile, Location: location}))
			return nil, err
		}
		added = append(added, mat)
	}

	course, err := s.mutate(ctx, id, "add_materials", func(c *models.Course) error {
		t, err := topicAt(c, module, topic)
		if err != nil {
			return err
		}
		for _, mat := range added {
			if err := t.AddMaterial(mat); err != nil {
				return err
			}
		}
		for _, l := range links {
			mat, err := newMaterial(l, models.MaterialLink, l, now)
			if err != nil {
				return err
			}
			if err := t.AddMaterial(mat); err != nil {
				return err
			}
		}
		t.AppendNote(note, now)
		return nil
	})
	if err != nil {
		s.discardMaterials(ctx, id, added)
		return nil, err
	}
	return course, nil
}

func newMaterial(name string, kind models.MaterialKind, location string, at time.Time) (models.Material, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return models.Material{}, fmt.Errorf("generate material id: %w", err)
	}
	return models.Material{
		ID:       id.String(),
		Name:     name,
		Kind:     kind,
		Location: location,
		AddedAt:  at,
	}, nil
}

// DeleteMaterial removes a material by id; unknown ids change nothing.
func (s *courseService) DeleteMaterial(ctx context.Context, id string, module, topic int, materialID string) (*models.Course, error) {
	var removed models.Material
	var found bool
	course, err := s.mutate(ctx, id, "delete_material", func(c *models.Course) error {
		t, err := topicAt(c, module, topic)
		if err != nil {
			return err
		}
		removed, found = t.RemoveMaterial(materialID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found {
		s.discardMaterials(ctx, id, []models.Material{removed})
	}
	return course, nil
}

func (s *courseService) OpenMaterial(ctx context.Context, id string, module, topic int, materialID string) (*services.MaterialContent, error) {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := topicAt(course, module, topic)
	if err != nil {
		return nil, err
	}
	mat, ok := t.FindMaterial(materialID)
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("material %s not found", materialID)}
	}
	if mat.Kind != models.MaterialFile {
		return nil, &domain.ValidationError{Message: "material is a link, not a file"}
	}

	data, err := s.blobs.Fetch(ctx, mat.Location)
	if err != nil {
		return nil, err
	}
	return &services.MaterialContent{Name: mat.Name, Data: data}, nil
}

func (s *courseService) ClearNotes(ctx context.Context, id string, module, topic int) (*models.Course, error) {
	return s.mutate(ctx, id, "clear_notes", func(c *models.Course) error {
		t, err := topicAt(c, module, topic)
		if err != nil {
			return err
		}
		t.ClearNotes()
		return nil
	})
}

func (s *courseService) ResetProgress(ctx context.Context, id string) (*models.Course, error) {
	return s.mutate(ctx, id, "reset_progress", func(c *models.Course) error {
		c.ResetProgress()
		return nil
	})
}

// mutate loads a course, applies fn and saves outline and progress together.
// Nothing is written when fn fails. A concurrent save of the same course
// surfaces as a ConflictError from the revision check.
func (s *courseService) mutate(ctx context.Context, id, action string, fn func(c *models.Course) error) (*models.Course, error) {
	var course *models.Course
	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		course, err = s.GetCourse(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(course); err != nil {
			return err
		}
		if err := s.repo.SaveOutline(ctx, id, course.Outline()); err != nil {
			return err
		}
		return s.repo.SaveProgress(ctx, course)
	})
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			s.logger.Warn("course update conflict", "course_id", id, "action", action, "stored_revision", conflict.Revision)
		}
		return nil, err
	}

	s.logger.Info("course updated", "course_id", id, "action", action, "revision", course.Revision)
	return course, nil
}

// discardMaterials deletes stored file content. Failures only leave an
// orphaned blob behind, so they are logged and ignored.
func (s *courseService) discardMaterials(ctx context.Context, courseID string, materials []models.Material) {
	for _, mat := range materials {
		if mat.Kind != models.MaterialFile {
			continue
		}
		if err := s.blobs.Delete(ctx, mat.Location); err != nil {
			s.logger.Warn("failed to delete material content",
				"course_id", courseID,
				"material_id", mat.ID,
				"location", mat.Location,
				"error", err,
			)
		}
	}
}

func (s *courseService) deleteTopicBlobs(ctx context.Context, courseID string, topics ...models.Topic) {
	for _, t := range topics {
		s.discardMaterials(ctx, courseID, t.Materials)
	}
}

func topicAt(c *models.Course, module, topic int) (*models.Topic, error) {
	m, err := c.Module(module)
	if err != nil {
		return nil, err
	}
	return m.Topic(topic)
}

// validateCreateRequest validates a manual course entry
func (s *courseService) validateCreateRequest(req *services.CreateCourseRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxCourseNameLength),
			validation.By(notBlank),
		),
		validation.Field(&req.Code, validation.Length(0, config.MaxCourseCodeLength)),
		validation.Field(&req.Modules,
			validation.Required.Error("at least one module is required"),
			validation.Each(validation.By(validateModuleInput)),
		),
	)
}

func validateModuleInput(value interface{}) error {
	m, ok := value.(services.ModuleInput)
	if !ok {
		return fmt.Errorf("invalid module")
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("module name is required")
	}
	if len(m.Name) > config.MaxModuleNameLength {
		return fmt.Errorf("module name is too long")
	}
	if len(splitTopics(m.Topics, "-", ",")) == 0 {
		return fmt.Errorf("module %q needs at least one topic", strings.TrimSpace(m.Name))
	}
	return nil
}

// validateOutline checks a normalised outline
func validateOutline(o *models.Outline) error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Name,
			validation.Required,
			validation.Length(1, config.MaxCourseNameLength),
		),
		validation.Field(&o.Code, validation.Length(0, config.MaxCourseCodeLength)),
		validation.Field(&o.Modules, validation.Each(validation.By(func(value interface{}) error {
			m, ok := value.(models.OutlineModule)
			if !ok {
				return fmt.Errorf("invalid module")
			}
			if m.Name == "" {
				return fmt.Errorf("module %d needs a name", m.Number)
			}
			if len(m.Name) > config.MaxModuleNameLength {
				return fmt.Errorf("module %d name is too long", m.Number)
			}
			if len(m.Topics) == 0 {
				return fmt.Errorf("module %q needs at least one topic", m.Name)
			}
			return validateTopicNames(m.Topics)
		}))),
	)
}

// normalizeOutline trims names, drops blank topics and numbers unnumbered
// modules after the highest number seen so far.
func normalizeOutline(o models.Outline) models.Outline {
	out := models.Outline{
		Name:    strings.TrimSpace(o.Name),
		Code:    strings.TrimSpace(o.Code),
		Modules: make([]models.OutlineModule, 0, len(o.Modules)),
	}
	highest := 0
	for _, m := range o.Modules {
		if m.Number > highest {
			highest = m.Number
		}
	}
	for _, m := range o.Modules {
		nm := models.OutlineModule{Number: m.Number, Name: strings.TrimSpace(m.Name), Topics: []string{}}
		if nm.Number <= 0 {
			highest++
			nm.Number = highest
		}
		for _, t := range m.Topics {
			if t = strings.TrimSpace(t); t != "" {
				nm.Topics = append(nm.Topics, t)
			}
		}
		out.Modules = append(out.Modules, nm)
	}
	return out
}

func validateTopicNames(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("at least one topic is required")
	}
	for _, n := range names {
		if len(n) > config.MaxTopicNameLength {
			return fmt.Errorf("topic %q is too long", truncateRunes(n, 32))
		}
	}
	return nil
}

// truncateRunes shortens s to at most n runes for use in messages.
func truncateRunes(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

func notBlank(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}

// splitTopics splits free text on the first separator it contains, in the
// order given; text with none of them is a single topic. Blank pieces are dropped.
func splitTopics(text string, separators ...string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, sep := range separators {
		if !strings.Contains(text, sep) {
			continue
		}
		var topics []string
		for _, part := range strings.Split(text, sep) {
			if part = strings.TrimSpace(part); part != "" {
				topics = append(topics, part)
			}
		}
		return topics
	}
	return []string{text}
}
