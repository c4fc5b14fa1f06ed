package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string   `env:"PORT" envDefault:"8080"`
	Env             string   `env:"ENV" envDefault:"dev"`
	LogLevel        string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSAllowOrigin []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	SessionSecret   string   `env:"SESSION_SECRET"`

	ObjectStoreType string `env:"OBJECT_STORE" envDefault:"local"`
	LocalStoreDir   string `env:"LOCAL_STORE_DIR" envDefault:"./data"`

	BucketName         string   `env:"OBJECT_STORAGE_BUCKET"`
	BucketPrefix       string   `env:"OBJECT_STORAGE_BUCKET_PREFIX" envDefault:"replit-objstore-"`
	PublicSearchPaths  []string `env:"PUBLIC_OBJECT_SEARCH_PATHS" envSeparator:","`
	PrivateObjectDir   string   `env:"PRIVATE_OBJECT_DIR"`
	EnforceReadACL     bool     `env:"ENFORCE_READ_ACL" envDefault:"false"`
	MaxUploadBytes     int64    `env:"MAX_UPLOAD_BYTES" envDefault:"104857600"`
	UploadAllowedTypes []string `env:"UPLOAD_ALLOWED_TYPES" envSeparator:"," envDefault:"image/,video/"`

	AWSRegion      string `env:"AWS_REGION"`
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3UsePathStyle bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`

	GCSProjectID string `env:"GCS_PROJECT_ID"`
	GCSTokenURL  string `env:"GCS_TOKEN_URL"`

	DatabaseURL    string        `env:"DATABASE_URL"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS"`
	DBPingTimeout  time.Duration `env:"DB_PING_TIMEOUT"`

	CleanupQueueURL          string        `env:"CLEANUP_SQS_QUEUE_URL"`
	CleanupVisibilitySeconds int           `env:"CLEANUP_SQS_VISIBILITY_TIMEOUT_SECONDS" envDefault:"300"`
	WorkerConcurrency        int           `env:"WORKER_CONCURRENCY" envDefault:"4"`
	WorkerShutdownTimeout    time.Duration `env:"WORKER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// ErrMissingSessionSecret is returned by Load when SESSION_SECRET is unset.
var ErrMissingSessionSecret = errors.New("SESSION_SECRET is required")

// Load reads configuration from environment variables with sensible defaults.
// A missing SESSION_SECRET returns the parsed config together with
// ErrMissingSessionSecret so tools that never sign tokens can proceed.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	cfg.normalize()

	if cfg.SessionSecret == "" {
		return cfg, ErrMissingSessionSecret
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Env = normalizeEnv(c.Env)
	c.ObjectStoreType = normalizeStoreType(c.ObjectStoreType)
	c.SessionSecret = strings.TrimSpace(c.SessionSecret)
	c.BucketName = strings.TrimSpace(c.BucketName)
	c.PrivateObjectDir = strings.TrimSpace(c.PrivateObjectDir)
	c.CORSAllowOrigin = splitAndTrim(c.CORSAllowOrigin)
	c.PublicSearchPaths = splitAndTrim(c.PublicSearchPaths)
	c.UploadAllowedTypes = splitAndTrim(c.UploadAllowedTypes)
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 100 << 20
	}
	if c.WorkerConcurrency <= 0 {
		c.WorkerConcurrency = 1
	}
	if c.CleanupVisibilitySeconds <= 0 {
		c.CleanupVisibilitySeconds = 300
	}
	if c.WorkerShutdownTimeout <= 0 {
		c.WorkerShutdownTimeout = 30 * time.Second
	}
}

// IsDevLike reports whether the environment tolerates missing infrastructure.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func splitAndTrim(parts []string) []string {
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "gcs", "replit":
		return "gcs"
	default:
		return "local"
	}
}
