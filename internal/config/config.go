// Package config provides centralized configuration loaded from environment
// variables. Shared by cmd/api and cmd/leaguectl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Storage backend names.
const (
	BackendJSON      = "json"
	BackendFile      = "file"
	BackendMemory    = "memory"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

// Default Postgres channel an upload pipeline notifies after writing new
// game results.
const UploadChannel = "league_upload"

type Config struct {
	// Authoritative records: json, postgres or firestore.
	StoreBackend string
	DataFile     string

	// Cached documents: memory, file, postgres or firestore.
	CacheBackend string
	CacheDir     string

	// Recompute job records: memory or postgres.
	JobBackend string

	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration
	DBMigrate      bool

	// Firestore
	FirestoreProjectID string

	// S3-compatible mirror for cached documents. Disabled when the bucket
	// is empty.
	MirrorEndpoint      string
	MirrorRegion        string
	MirrorBucket        string
	MirrorPrefix        string
	MirrorAccessKeyID   string
	MirrorSecretKey     string
	MirrorPublicBaseURL string

	// Recompute. An empty RecomputeCron (RECOMPUTE_CRON=off) disables the
	// schedule.
	RecomputeCron    string
	RecomputeWorkers int
	RecomputeQueue   int
	ListenEnabled    bool
	ListenChannel    string

	// Operator alerts for failed or partial recompute jobs. Disabled when
	// the URL is empty.
	NotifyWebhookURL string
	NotifyAllJobs    bool
	NotifyPerMinute  int

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// Admin endpoints require an HS256 bearer token with role=admin when
	// a secret is set.
	AdminJWTSecret string

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Response cache
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		StoreBackend: strings.ToLower(envOr("STORE_BACKEND", BackendJSON)),
		DataFile:     envOr("DATA_FILE", "data/database.json"),

		CacheBackend: strings.ToLower(envOr("CACHE_BACKEND", BackendFile)),
		CacheDir:     envOr("CACHE_DIR", "data/cache"),

		JobBackend: strings.ToLower(envOr("JOB_BACKEND", BackendMemory)),

		DatabaseURL:    envOr("DATABASE_URL", envOr("NEON_DATABASE_URL", "")),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,
		DBMigrate:      envBool("DB_MIGRATE", true),

		FirestoreProjectID: envOr("FIRESTORE_PROJECT_ID", envOr("GOOGLE_CLOUD_PROJECT", "")),

		MirrorEndpoint:      envOr("MIRROR_S3_ENDPOINT", ""),
		MirrorRegion:        envOr("MIRROR_S3_REGION", "auto"),
		MirrorBucket:        envOr("MIRROR_S3_BUCKET", ""),
		MirrorPrefix:        envOr("MIRROR_S3_PREFIX", ""),
		MirrorAccessKeyID:   envOr("MIRROR_S3_ACCESS_KEY_ID", ""),
		MirrorSecretKey:     envOr("MIRROR_S3_SECRET_ACCESS_KEY", ""),
		MirrorPublicBaseURL: envOr("MIRROR_PUBLIC_BASE_URL", ""),

		RecomputeCron:    envOr("RECOMPUTE_CRON", "0 3 * * *"),
		RecomputeWorkers: envInt("RECOMPUTE_WORKERS", 2),
		RecomputeQueue:   envInt("RECOMPUTE_QUEUE", 32),
		ListenEnabled:    envBool("LISTEN_ENABLED", false),
		ListenChannel:    envOr("LISTEN_CHANNEL", UploadChannel),

		NotifyWebhookURL: envOr("NOTIFY_WEBHOOK_URL", ""),
		NotifyAllJobs:    envBool("NOTIFY_ALL_JOBS", false),
		NotifyPerMinute:  envInt("NOTIFY_PER_MINUTE", 20),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		AdminJWTSecret: envOr("ADMIN_JWT_SECRET", ""),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
		CacheTTL:     time.Duration(envInt("CACHE_TTL_SECONDS", 60)) * time.Second,
	}

	if strings.EqualFold(cfg.RecomputeCron, "off") {
		cfg.RecomputeCron = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend names and the settings each backend needs.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendJSON, BackendPostgres, BackendFirestore:
	default:
		return fmt.Errorf("STORE_BACKEND must be json, postgres or firestore, got %q", c.StoreBackend)
	}
	switch c.CacheBackend {
	case BackendMemory, BackendFile, BackendPostgres, BackendFirestore:
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory, file, postgres or firestore, got %q", c.CacheBackend)
	}
	switch c.JobBackend {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("JOB_BACKEND must be memory or postgres, got %q", c.JobBackend)
	}

	if c.NeedsDatabase() && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL or NEON_DATABASE_URL must be set for the postgres backend")
	}
	if c.NeedsFirestore() && c.FirestoreProjectID == "" {
		return fmt.Errorf("FIRESTORE_PROJECT_ID must be set for the firestore backend")
	}
	if c.MirrorEnabled() && (c.MirrorAccessKeyID == "" || c.MirrorSecretKey == "") {
		return fmt.Errorf("MIRROR_S3_ACCESS_KEY_ID and MIRROR_S3_SECRET_ACCESS_KEY must be set when MIRROR_S3_BUCKET is")
	}
	if c.RecomputeCron != "" {
		if _, err := cron.ParseStandard(c.RecomputeCron); err != nil {
			return fmt.Errorf("invalid RECOMPUTE_CRON %q: %w", c.RecomputeCron, err)
		}
	}
	return nil
}

// Warnings lists settings that are valid but unsafe outside development.
func (c *Config) Warnings() []string {
	var w []string
	if c.AdminJWTSecret == "" {
		w = append(w, "ADMIN_JWT_SECRET is empty: /api/v1/admin routes accept unauthenticated requests")
	}
	if c.IsProduction() && len(c.CORSAllowOrigins) == 1 && c.CORSAllowOrigins[0] == "*" {
		w = append(w, "CORS_ALLOW_ORIGINS is * in production")
	}
	return w
}

// NeedsDatabase reports whether any component is backed by Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.StoreBackend == BackendPostgres || c.CacheBackend == BackendPostgres ||
		c.JobBackend == BackendPostgres || c.ListenEnabled
}

// NeedsFirestore reports whether any component is backed by Firestore.
func (c *Config) NeedsFirestore() bool {
	return c.StoreBackend == BackendFirestore || c.CacheBackend == BackendFirestore
}

// MirrorEnabled reports whether cached documents are mirrored to a bucket.
func (c *Config) MirrorEnabled() bool {
	return c.MirrorBucket != ""
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
