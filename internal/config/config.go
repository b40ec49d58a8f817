package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Storage
	StoreBackend string // sqlite, postgres or memory
	SQLitePath   string
	DatabaseURL  string
	KeyPrefix    string
	BlobDir      string
	// Limits
	MaxUploadBytes int64
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		StoreBackend:   getEnv("STORE_BACKEND", "sqlite"),
		SQLitePath:     getEnv("SQLITE_PATH", "data/studydash.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		KeyPrefix:      getKeyPrefix(env),
		BlobDir:        getEnv("BLOB_DIR", "data/blobs"),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 100<<20),
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    int(getEnvInt64("LOG_MAX_FILES", 10)),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getKeyPrefix returns the storage key prefix based on environment.
// Keys for different environments can then share one database.
func getKeyPrefix(env string) string {
	// Allow manual override via KEY_PREFIX env var
	if prefix := os.Getenv("KEY_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
