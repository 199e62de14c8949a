package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures the runtime configuration for the PetPal backend service.
type Config struct {
	AppPort      int
	LogLevel     string
	DatabaseURL  string
	MigrationDir string

	Petfinder PetfinderConfig
	OpenCage  OpenCageConfig
	Redis     RedisConfig

	ObjectStore ObjectStoreConfig
	ExportDir   string

	HTTPTimeout       time.Duration
	FanOutParallelism int
	PageSize          int
	SessionTTL        time.Duration
	MarkerRadius      float64
	FallbackAddress   string

	// APIKeyHash is a bcrypt hash of the key inbound callers must present.
	// Empty disables the check.
	APIKeyHash string
	RateLimit  RateLimitConfig
}

// PetfinderConfig configures the animal search API client.
type PetfinderConfig struct {
	BaseURL       string
	ClientID      string
	ClientSecret  string
	RatePerSecond float64
	Burst         int
}

// TokenURL is the client-credentials endpoint below BaseURL.
func (c PetfinderConfig) TokenURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/oauth2/token"
}

// OpenCageConfig configures the geocoding API client.
type OpenCageConfig struct {
	BaseURL string
	APIKey  string
}

// RedisConfig configures the shared geocode cache. Empty Addr keeps the cache
// in process memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// ObjectStoreConfig configures the S3-compatible export target. Empty Bucket
// writes exports to ExportDir instead.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// RateLimitConfig bounds inbound requests per client IP.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// Load reads configuration from environment variables, applying sensible defaults
// for local development. A .env file in the working directory is loaded first
// when present; variables already set in the environment win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		AppPort:      getInt("PETPAL_PORT", 8080),
		LogLevel:     getString("PETPAL_LOG_LEVEL", "info"),
		DatabaseURL:  getString("PETPAL_DATABASE_URL", ""),
		MigrationDir: getString("PETPAL_MIGRATIONS", "migrations"),
		Petfinder: PetfinderConfig{
			BaseURL:       getString("PETPAL_PETFINDER_URL", "https://api.petfinder.com/v2"),
			ClientID:      getString("PETPAL_PETFINDER_CLIENT_ID", ""),
			ClientSecret:  getString("PETPAL_PETFINDER_CLIENT_SECRET", ""),
			RatePerSecond: getFloat("PETPAL_PETFINDER_RATE", 5),
			Burst:         getInt("PETPAL_PETFINDER_BURST", 5),
		},
		OpenCage: OpenCageConfig{
			BaseURL: getString("PETPAL_OPENCAGE_URL", "https://api.opencagedata.com"),
			APIKey:  getString("PETPAL_OPENCAGE_KEY", ""),
		},
		Redis: RedisConfig{
			Addr:     getString("PETPAL_REDIS_ADDR", ""),
			Password: getString("PETPAL_REDIS_PASSWORD", ""),
			DB:       getInt("PETPAL_REDIS_DB", 0),
			Prefix:   getString("PETPAL_REDIS_PREFIX", "petpal:geocode:"),
		},
		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("PETPAL_S3_BUCKET", ""),
			Region:        getString("PETPAL_S3_REGION", "us-east-1"),
			Endpoint:      getString("PETPAL_S3_ENDPOINT", ""),
			PublicBaseURL: getString("PETPAL_S3_PUBLIC_URL", ""),
		},
		ExportDir:         getString("PETPAL_EXPORT_DIR", "exports"),
		HTTPTimeout:       getDuration("PETPAL_HTTP_TIMEOUT", 30*time.Second),
		FanOutParallelism: getInt("PETPAL_FANOUT_PARALLELISM", 4),
		PageSize:          getInt("PETPAL_PAGE_SIZE", 100),
		SessionTTL:        getDuration("PETPAL_SESSION_TTL", 30*time.Minute),
		MarkerRadius:      getFloat("PETPAL_MARKER_RADIUS_METERS", 12),
		FallbackAddress:   getString("PETPAL_FALLBACK_ADDRESS", ""),
		APIKeyHash:        getString("PETPAL_API_KEY_HASH", ""),
		RateLimit: RateLimitConfig{
			Requests: getInt("PETPAL_RATE_LIMIT_REQUESTS", 60),
			Window:   getDuration("PETPAL_RATE_LIMIT_WINDOW", time.Minute),
			Burst:    getInt("PETPAL_RATE_LIMIT_BURST", 20),
		},
	}

	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		return Config{}, fmt.Errorf("PETPAL_PAGE_SIZE must be between 1 and 100, got %d", cfg.PageSize)
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
