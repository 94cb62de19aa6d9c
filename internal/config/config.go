// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Catalog persistence: "file" or "postgres"
	StoreBackend string
	DataFile     string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	CacheEnabled   bool
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	CacheTTL       time.Duration

	// Image storage: "local" or "s3"
	ImageBackend   string
	UploadDir      string
	PublicBaseURL  string // prefix for local image URLs, e.g. "https://api.example.com"
	MaxUploadBytes int64

	// S3-compatible object storage
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Prefix    string
	S3PublicURL string

	// HTTP surface
	CORSOrigins      []string
	AdminKeyHash     string // bcrypt hash; empty disables the admin key check
	RateLimitGeneral int
	RateLimitWrite   int
	RateLimitWindow  time.Duration
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is loaded first if present; real environment variables win over it.
// Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "3001"),
		Env:  envOrDefault("APP_ENV", "development"),

		StoreBackend: envOrDefault("STORE_BACKEND", "file"),
		DataFile:     envOrDefault("DATA_FILE", "data/catalog.json"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "moneybox"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "moneybox"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		ImageBackend:  envOrDefault("IMAGE_BACKEND", "local"),
		UploadDir:     envOrDefault("UPLOAD_DIR", "uploads"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "moneybox-images"),
		S3Prefix:    envOrDefault("S3_PREFIX", "images"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		CORSOrigins:  splitList(envOrDefault("CORS_ORIGINS", "http://localhost:3000")),
		AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),
	}

	var errs []error
	var err error
	if cfg.CacheEnabled, err = envBool("CACHE_ENABLED", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.CacheTTL, err = envDuration("CACHE_TTL", 5*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.MaxUploadBytes, err = envInt64("MAX_UPLOAD_BYTES", 5<<20); err != nil {
		errs = append(errs, err)
	}
	limitGeneral, err := envInt64("RATE_LIMIT_GENERAL", 100)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.RateLimitGeneral = int(limitGeneral)
	limitWrite, err := envInt64("RATE_LIMIT_WRITE", 20)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.RateLimitWrite = int(limitWrite)
	if cfg.RateLimitWindow, err = envDuration("RATE_LIMIT_WINDOW", 15*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case "file", "postgres":
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be \"file\" or \"postgres\", got %q", cfg.StoreBackend)
	}
	switch cfg.ImageBackend {
	case "local", "s3":
	default:
		return nil, fmt.Errorf("IMAGE_BACKEND must be \"local\" or \"s3\", got %q", cfg.ImageBackend)
	}
	if cfg.RateLimitGeneral < 1 || cfg.RateLimitWrite < 1 || cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("rate limits and window must be positive")
	}

	if cfg.Env == "production" {
		if cfg.StoreBackend == "postgres" && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AdminKeyHash == "" {
			return nil, fmt.Errorf("ADMIN_KEY_HASH must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// UploadsURL returns the URL prefix local images are served under.
func (c *Config) UploadsURL() string {
	return c.PublicBaseURL + "/uploads"
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %q is not a boolean", key, v)
	}
	return b, nil
}

func envInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration", key, v)
	}
	return d, nil
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
