package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Question source and snapshot backend selectors.
const (
	SourceFile   = "file"
	SourceSQLite = "sqlite"

	SnapshotFile  = "file"
	SnapshotRedis = "redis"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// QuestionSource selects the repository backend: "file" reads
	// QuestionDir, "sqlite" opens SQLitePath.
	QuestionSource string
	QuestionDir    string
	SQLitePath     string

	// SnapshotBackend selects where in-progress sessions persist:
	// "file" writes SnapshotPath, "redis" uses RedisURL.
	SnapshotBackend string
	SnapshotPath    string
	RedisURL        string

	// DefaultTimeLimit applies when a start request omits one.
	DefaultTimeLimit time.Duration

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible
// defaults. It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "pretty"),

		QuestionSource: getEnv("QUESTION_SOURCE", SourceFile),
		QuestionDir:    getEnv("QUESTION_DIR", "./question_sets"),
		SQLitePath:     getEnv("SQLITE_PATH", "./questions.db"),

		SnapshotBackend: getEnv("SNAPSHOT_BACKEND", SnapshotFile),
		SnapshotPath:    getEnv("SNAPSHOT_PATH", "./progress.json"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),

		DefaultTimeLimit: time.Duration(getEnvInt("DEFAULT_TIME_LIMIT_SECONDS", 3600)) * time.Second,

		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed
// slice. Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
