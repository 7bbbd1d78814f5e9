package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Snapshot SnapshotConfig
}

type AppConfig struct {
	Environment   string
	LogFilePath   string
	EngineLogPath string
	NatsURL       string
	RedisURL      string
	LockBackend   string // "local" or "redis"
	MetricsAddr   string
	// TemplateCacheTTL bounds how long a topic's templates are served from memory.
	TemplateCacheTTL time.Duration
}

type DatabaseConfig struct {
	Connection string
}

type EngineConfig struct {
	// Command is the program plus its leading arguments, e.g. "/bin/sh cascade.sh".
	Command []string
	WorkDir string
	// BaseDir is passed as --iobasedir; the engine resolves topic corpora below it.
	BaseDir  string
	TempDir  string
	Timeout  time.Duration
	Variants []string
	// PickSeed seeds template selection. Zero means seeded from the clock.
	PickSeed      int64
	MaxConcurrent int
	// PrepareCommand sets up the engine environment unless PrepareMarker exists in WorkDir.
	PrepareCommand []string
	PrepareMarker  string
}

type SnapshotConfig struct {
	Backend            string // "file", "database", "gcs" or "badger"
	Dir                string
	GCSBucket          string
	GCSPrefix          string
	GCSCredentialsFile string
	BadgerPath         string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment:      getEnv("GO_ENV", "development"),
			LogFilePath:      getEnv("LOG_FILE_PATH", "app.log.json"),
			EngineLogPath:    getEnv("ENGINE_LOG_FILE_PATH", "engine.log.json"),
			NatsURL:          getEnv("NATS_URL", ""),
			RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379"),
			LockBackend:      getEnv("LOCK_BACKEND", "local"),
			MetricsAddr:      getEnv("METRICS_ADDR", ":9102"),
			TemplateCacheTTL: getEnvAsDuration("TEMPLATE_CACHE_TTL", 30*time.Minute),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Engine: EngineConfig{
			Command:  strings.Fields(getEnv("ENGINE_COMMAND", "/bin/sh cascade.sh")),
			WorkDir:  getEnv("ENGINE_WORKDIR", ""),
			BaseDir:  getEnv("ENGINE_IOBASEDIR", "data"),
			TempDir:  getEnv("ENGINE_TEMP_DIR", os.TempDir()),
			Timeout:  getEnvAsDuration("ENGINE_TIMEOUT", 10*time.Minute),
			Variants: getEnvAsList("ENGINE_TEMPLATE_VARIANTS", []string{"BASELINE:NGRAMS"}),
			PickSeed: int64(getEnvAsInt("ENGINE_PICK_SEED", 0)),

			MaxConcurrent:  getEnvAsInt("ENGINE_MAX_CONCURRENCY", 4),
			PrepareCommand: strings.Fields(getEnv("ENGINE_PREPARE_COMMAND", "")),
			PrepareMarker:  getEnv("ENGINE_PREPARE_MARKER", ".venv"),
		},
		Snapshot: SnapshotConfig{
			Backend:            getEnv("SNAPSHOT_BACKEND", "file"),
			Dir:                getEnv("SNAPSHOT_DIR", "snapshots"),
			GCSBucket:          getEnv("SNAPSHOT_GCS_BUCKET", ""),
			GCSPrefix:          getEnv("SNAPSHOT_GCS_PREFIX", "snapshots/"),
			GCSCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			BadgerPath:         getEnv("SNAPSHOT_BADGER_PATH", "snapshots.badger"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
