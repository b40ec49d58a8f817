package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"studydash/internal/domain"
	"studydash/internal/domain/models"
	"studydash/internal/domain/repositories"
)

const (
	currentUserKey    = "currentUser"
	courseListKey     = "courses"
	outlineKeyPrefix  = "course_"
	progressKeyPrefix = "progress_"
)

func outlineKey(id string) string  { return outlineKeyPrefix + id }
func progressKey(id string) string { return progressKeyPrefix + id }

// StoreConfig holds the dependencies of Store
type StoreConfig struct {
	KV     repositories.KVStore
	Logger *slog.Logger
	// Now stamps list entries created by SaveProgress. Defaults to time.Now.
	Now func() time.Time
}

// Store implements repositories.CourseRepository over any KVStore.
// Values are JSON documents; every write replaces the whole document.
type Store struct {
	kv     repositories.KVStore
	logger *slog.Logger
	now    func() time.Time

	// serialises revision checks with their writes
	mu sync.Mutex
}

// NewStore creates a Store
func NewStore(cfg StoreConfig) *Store {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{kv: cfg.KV, logger: cfg.Logger, now: now}
}

func (s *Store) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Put(ctx, key, string(data))
}

// NextCourseID is the creation time in milliseconds, bumped past any taken id.
func (s *Store) NextCourseID(ctx context.Context, now time.Time) (string, error) {
	id := now.UnixMilli()
	for {
		candidate := strconv.FormatInt(id, 10)
		_, taken, err := s.kv.Get(ctx, outlineKey(candidate))
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		id++
	}
}

func (s *Store) GetOutline(ctx context.Context, id string) (*models.Outline, error) {
	var outline models.Outline
	ok, err := s.getJSON(ctx, outlineKey(id), &outline)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("course %s not found", id)}
	}
	return &outline, nil
}

func (s *Store) SaveOutline(ctx context.Context, id string, outline models.Outline) error {
	return s.putJSON(ctx, outlineKey(id), outline)
}

func (s *Store) GetProgress(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	ok, err := s.getJSON(ctx, progressKey(id), &course)
	if err != nil || !ok {
		return nil, err
	}
	course.ID = id
	return &course, nil
}

func (s *Store) SaveProgress(ctx context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.GetProgress(ctx, course.ID)
	if err != nil {
		return err
	}
	var storedRevision int64
	if stored != nil {
		storedRevision = stored.Revision
	}
	if storedRevision != course.Revision {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("course %s was modified elsewhere (revision %d, have %d)", course.ID, storedRevision, course.Revision),
			ResourceType: "course",
			ResourceID:   course.ID,
			Revision:     storedRevision,
		}
	}

	next := *course
	next.Revision = storedRevision + 1
	if err := s.putJSON(ctx, progressKey(course.ID), next); err != nil {
		return err
	}
	if err := s.upsertSummary(ctx, &next); err != nil {
		return err
	}

	course.Revision = next.Revision
	s.logger.Debug("progress saved", "course_id", course.ID, "revision", next.Revision)
	return nil
}

// upsertSummary refreshes the list entry of a course, keeping its creation time.
func (s *Store) upsertSummary(ctx context.Context, course *models.Course) error {
	list, err := s.ListCourses(ctx)
	if err != nil {
		return err
	}
	for i, entry := range list {
		if entry.ID == course.ID {
			list[i] = models.Summarize(course, entry.CreatedAt)
			return s.SaveCourseList(ctx, list)
		}
	}
	list = append(list, models.Summarize(course, s.now()))
	return s.SaveCourseList(ctx, list)
}

func (s *Store) ListCourses(ctx context.Context) ([]models.CourseSummary, error) {
	list := []models.CourseSummary{}
	if _, err := s.getJSON(ctx, courseListKey, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.CourseSummary{}
	}
	return list, nil
}

func (s *Store) SaveCourseList(ctx context.Context, courses []models.CourseSummary) error {
	if courses == nil {
		courses = []models.CourseSummary{}
	}
	return s.putJSON(ctx, courseListKey, courses)
}

// RebuildCourseList recomputes every entry from stored progress (or the
// outline when no progress exists). Creation times of known entries are
// kept; unknown ones fall back to the time encoded in the id.
func (s *Store) RebuildCourseList(ctx context.Context) ([]models.CourseSummary, error) {
	existing, err := s.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	created := make(map[string]time.Time, len(existing))
	order := make([]string, 0, len(existing))
	for _, e := range existing {
		created[e.ID] = e.CreatedAt
		order = append(order, e.ID)
	}

	keys, err := s.kv.Keys(ctx, outlineKeyPrefix)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		id := strings.TrimPrefix(k, outlineKeyPrefix)
		if _, ok := created[id]; !ok {
			order = append(order, id)
			created[id] = createdFromID(id)
		}
	}

	rebuilt := make([]models.CourseSummary, 0, len(order))
	for _, id := range order {
		outline, err := s.GetOutline(ctx, id)
		if err != nil {
			s.logger.Warn("dropping list entry without outline", "course_id", id)
			continue
		}
		progress, err := s.GetProgress(ctx, id)
		if err != nil {
			return nil, err
		}
		course := models.MergeProgress(id, *outline, progress)
		rebuilt = append(rebuilt, models.Summarize(&course, created[id]))
	}

	if err := s.SaveCourseList(ctx, rebuilt); err != nil {
		return nil, err
	}
	s.logger.Info("course list rebuilt", "courses", len(rebuilt))
	return rebuilt, nil
}

func createdFromID(id string) time.Time {
	ms, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	list, err := s.ListCourses(ctx)
	if err != nil {
		return err
	}
	_, hasOutline, err := s.kv.Get(ctx, outlineKey(id))
	if err != nil {
		return err
	}

	kept := make([]models.CourseSummary, 0, len(list))
	for _, entry := range list {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	if !hasOutline && len(kept) == len(list) {
		return &domain.NotFoundError{Message: fmt.Sprintf("course %s not found", id)}
	}

	if err := s.SaveCourseList(ctx, kept); err != nil {
		return err
	}
	return s.kv.Delete(ctx, outlineKey(id), progressKey(id))
}

func (s *Store) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	ok, err := s.getJSON(ctx, currentUserKey, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

func (s *Store) SaveCurrentUser(ctx context.Context, user models.User) error {
	return s.putJSON(ctx, currentUserKey, user)
}

func (s *Store) ClearCurrentUser(ctx context.Context) error {
	return s.kv.Delete(ctx, currentUserKey)
}

var _ repositories.CourseRepository = (*Store)(nil)
