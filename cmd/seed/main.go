package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"studydash/internal/config"
	"studydash/internal/repository"
	"studydash/internal/service"
	"studydash/internal/service/blob"
	"studydash/internal/service/export"
	"studydash/internal/service/ingest"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	file := flag.String("file", "", "Syllabus document (.pdf, .html, .md, .txt, .yaml) to create a course from")
	exportPath := flag.String("export", "", "Write the created course archive to this .zip file or directory")
	reindex := flag.Bool("reindex", false, "Rebuild the course list from stored progress")
	clearData := flag.Bool("clear-data", false, "Delete every stored course (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *clearData {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--clear-data) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	backend, err := repository.OpenBackend(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer backend.Close()

	store := repository.NewStore(repository.StoreConfig{KV: backend.KV, Logger: logger})
	blobs, err := blob.NewStore(cfg.BlobDir, cfg.MaxUploadBytes, &http.Client{Timeout: 30 * time.Second}, logger)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}
	courseService := service.NewCourseService(store, backend.Tx, blobs, logger)

	if *clearData {
		log.Printf("🧹 Clearing courses (environment: %s, store: %s, prefix: %s)", cfg.Environment, backend.Name, cfg.KeyPrefix)
		courses, err := courseService.ListCourses(ctx)
		if err != nil {
			log.Fatalf("Failed to list courses: %v", err)
		}
		for _, c := range courses {
			if err := courseService.DeleteCourse(ctx, c.ID); err != nil {
				log.Fatalf("Failed to delete course %s: %v", c.ID, err)
			}
		}
		log.Printf("✅ Deleted %d courses", len(courses))
		return
	}

	if *reindex {
		log.Println("🔁 Rebuilding course list...")
		courses, err := store.RebuildCourseList(ctx)
		if err != nil {
			log.Fatalf("Failed to rebuild course list: %v", err)
		}
		log.Printf("✅ Course list has %d entries", len(courses))
	}

	if *file == "" {
		if !*reindex {
			flag.Usage()
			os.Exit(2)
		}
		return
	}

	content, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}

	log.Printf("🌱 Importing %s (environment: %s, store: %s)", *file, cfg.Environment, backend.Name)

	syllabusService := service.NewSyllabusService(ingest.NewRegistry(logger), logger)
	preview, err := syllabusService.Preview(ctx, filepath.Base(*file), content)
	if err != nil {
		log.Fatalf("Failed to parse syllabus: %v", err)
	}
	if preview.Degraded {
		log.Println("⚠️  Parsed outline is incomplete; review the course after import")
	}

	course, err := courseService.CreateCourseFromOutline(ctx, preview.Outline)
	if err != nil {
		log.Fatalf("Failed to create course: %v", err)
	}
	log.Printf("✅ Created course %s (ID: %s, modules: %d)", course.Name, course.ID, len(course.Modules))

	if *exportPath == "" {
		return
	}

	archive, err := export.NewService(store, blobs, logger).ExportCourse(ctx, course.ID)
	if err != nil {
		log.Fatalf("Failed to export course: %v", err)
	}
	out := *exportPath
	if !strings.EqualFold(filepath.Ext(out), ".zip") {
		out = filepath.Join(out, archive.Filename)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		log.Fatalf("Failed to create %s: %v", filepath.Dir(out), err)
	}
	if err := os.WriteFile(out, archive.Data, 0o644); err != nil {
		log.Fatalf("Failed to write archive: %v", err)
	}
	log.Printf("📦 Wrote %s (%d bytes)", out, len(archive.Data))
}
