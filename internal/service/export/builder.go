package export

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"studydash/internal/domain/models"
	"studydash/internal/domain/services"
)

const (
	allCoursesRoot     = "StudyDash Materials"
	linksFileName      = "all-links.txt"
	courseInfoFileName = "course-info.txt"
	userInfoFileName   = "user-info.txt"
	notesFileName      = "notes.html"
	linksUnderline     = "==========="
)

// Fetcher reads stored file material content
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// CourseEntry is one course of an all-courses export with its list summary
type CourseEntry struct {
	Course  *models.Course
	Summary models.CourseSummary
}

// Builder assembles archive trees from courses. File materials are fetched
// one at a time in module, topic, material order; a failed fetch skips that
// material only.
type Builder struct {
	blobs  Fetcher
	logger *slog.Logger
	now    func() time.Time
}

// NewBuilder creates a Builder
func NewBuilder(blobs Fetcher, logger *slog.Logger) *Builder {
	return &Builder{blobs: blobs, logger: logger, now: time.Now}
}

// CourseTree builds the tree of a single-course export, rooted at a folder
// named after the course.
func (b *Builder) CourseTree(ctx context.Context, course *models.Course) (*Node, []services.SkippedMaterial, error) {
	root := NewFolder(course.Name)
	root.File(courseInfoFileName, []byte(fmt.Sprintf(
		"Course: %s\nCourse Code: %s\nExported: %s\n\nThis archive contains all materials, links, and notes for your course.\n",
		course.Name, course.Code, b.timestamp(b.now()),
	)))

	skipped, err := b.writeCourse(ctx, root, root.Name, course, "COURSE LINKS")
	if err != nil {
		return nil, nil, err
	}
	return root, skipped, nil
}

// AllCoursesTree nests every course under one root folder that also holds
// a summary of the signed-in user. user may be nil.
func (b *Builder) AllCoursesTree(ctx context.Context, user *models.User, entries []CourseEntry) (*Node, []services.SkippedMaterial, error) {
	root := NewFolder(allCoursesRoot)

	username, email := "Guest", ""
	if user != nil {
		username, email = user.Username, user.Email
	}
	root.File(userInfoFileName, []byte(fmt.Sprintf(
		"User: %s\nEmail: %s\nExported: %s\n\nThis archive contains all materials, links, and notes for your courses.\n",
		username, email, b.timestamp(b.now()),
	)))

	var skipped []services.SkippedMaterial
	for _, e := range entries {
		folder := courseFolder(root, e.Course)
		folder.File(courseInfoFileName, []byte(fmt.Sprintf(
			"Course: %s\nCourse Code: %s\nCreated: %s\nProgress: %d/%d topics completed (%d%%)\n",
			e.Course.Name, e.Course.Code, b.timestamp(e.Summary.CreatedAt),
			e.Summary.CompletedTopics, e.Summary.TotalTopics, e.Summary.Percent(),
		)))

		s, err := b.writeCourse(ctx, folder, path.Join(root.Name, folder.Name), e.Course, "LINKS FOR "+strings.ToUpper(e.Course.Name))
		if err != nil {
			return nil, nil, err
		}
		skipped = append(skipped, s...)
	}
	return root, skipped, nil
}

// courseFolder adds a folder for course under root. A name already taken by
// an earlier course or a root file gets the course code, then a counter.
func courseFolder(root *Node, course *models.Course) *Node {
	name := SanitizeSegment(course.Name)
	if root.Child(name) != nil && course.Code != "" {
		name = SanitizeSegment(course.Name + " (" + course.Code + ")")
	}
	base := name
	for i := 2; root.Child(name) != nil; i++ {
		name = fmt.Sprintf("%s (%d)", base, i)
	}
	return root.Folder(name)
}

// writeCourse adds module and topic folders, notes, file materials and the
// link manifest under folder. folderPath is the folder's path in the archive.
func (b *Builder) writeCourse(ctx context.Context, folder *Node, folderPath string, course *models.Course, linksTitle string) ([]services.SkippedMaterial, error) {
	var links strings.Builder
	links.WriteString(linksTitle + "\n" + linksUnderline + "\n\n")

	var skipped []services.SkippedMaterial
	for _, m := range course.Modules {
		moduleFolder := folder.Folder(fmt.Sprintf("Module %d - %s", m.Number, m.Name))

		for _, t := range m.Topics {
			topicFolder := moduleFolder.Folder(t.Name)

			if t.Notes != "" {
				topicFolder.File(notesFileName, notesHTML(t.Notes, t.Name, m.Name))
			}

			for _, mat := range t.Materials {
				switch mat.Kind {
				case models.MaterialLink:
					fmt.Fprintf(&links, "[%s > %s] %s: %s\n", m.Name, t.Name, mat.Name, mat.Location)
				case models.MaterialFile:
					if err := ctx.Err(); err != nil {
						return nil, err
					}
					data, err := b.blobs.Fetch(ctx, mat.Location)
					if err != nil {
						entryPath := path.Join(folderPath, moduleFolder.Name, topicFolder.Name, SanitizeSegment(mat.Name))
						b.logger.Warn("skipping material that could not be fetched",
							"course_id", course.ID,
							"module", m.Number,
							"topic", t.Name,
							"material_id", mat.ID,
							"location", mat.Location,
							"error", err,
						)
						skipped = append(skipped, services.SkippedMaterial{
							CourseID: course.ID,
							Path:     entryPath,
							Reason:   err.Error(),
						})
						continue
					}
					topicFolder.File(mat.Name, data)
				}
			}
		}
	}

	folder.File(linksFileName, []byte(links.String()))
	return skipped, nil
}

func (b *Builder) timestamp(t time.Time) string {
	return t.Format(models.NoteTimestampLayout)
}
