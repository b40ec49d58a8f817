package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"studydash/internal/config"
	"studydash/internal/handler"
	"studydash/internal/middleware"
	"studydash/internal/repository"
	"studydash/internal/service"
	"studydash/internal/service/blob"
	"studydash/internal/service/export"
	"studydash/internal/service/ingest"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"key_prefix", cfg.KeyPrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the key-value store
	backend, err := repository.OpenBackend(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer backend.Close()

	store := repository.NewStore(repository.StoreConfig{KV: backend.KV, Logger: logger})

	// Blob storage for file materials; URLs are fetched during export
	blobs, err := blob.NewStore(cfg.BlobDir, cfg.MaxUploadBytes, &http.Client{Timeout: 30 * time.Second}, logger)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	// Create services
	ingestRegistry := ingest.NewRegistry(logger)
	courseService := service.NewCourseService(store, backend.Tx, blobs, logger)
	sessionService := service.NewSessionService(store, logger)
	syllabusService := service.NewSyllabusService(ingestRegistry, logger)
	exportService := export.NewService(store, blobs, logger)

	logger.Info("services initialized",
		"syllabus_formats", strings.Join(ingestRegistry.SupportedExtensions(), ","),
	)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Handlers{
		Courses:  handler.NewCourseHandler(courseService, cfg.MaxUploadBytes, logger),
		Sessions: handler.NewSessionHandler(sessionService, logger),
		Syllabus: handler.NewSyllabusHandler(syllabusService, cfg.MaxUploadBytes, logger),
		Exports:  handler.NewExportHandler(exportService, logger),
	})

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Routes
	h = middleware.Recovery(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Skipped-Materials"},
		AllowCredentials: true,
		Debug:            cfg.Debug && cfg.Environment == "dev",
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  5 * time.Minute, // Large uploads
		WriteTimeout: 5 * time.Minute, // Exports fetch every file material
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}
