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

// Media backends.
const (
	MediaBackendHTTP = "http"
	MediaBackendS3   = "s3"
)

// MaxGalleryLimit is the most gallery images a game may carry.
const MaxGalleryLimit = 5

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	HTTP     HTTPConfig
	DB       DatabaseConfig
	Redis    RedisConfig
	GOG      GOGConfig
	Pipeline PipelineConfig
	Media    MediaConfig
	S3       S3Config
	Worker   WorkerConfig
}

// HTTPConfig tunes the public HTTP surface.
type HTTPConfig struct {
	// CORSAllowedHosts lists browser origins (host[:port]) allowed to call the API.
	CORSAllowedHosts []string
	// TriggerPerMinute caps populate triggers per client IP; 0 disables the cap.
	TriggerPerMinute int
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// GOGConfig points at the storefront catalog API and detail pages.
type GOGConfig struct {
	CatalogURL    string
	StorefrontURL string
	DefaultLimit  int
	DefaultOrder  string
	Timeout       time.Duration
	// RateLimit is the max requests per second per client; 0 means unlimited.
	RateLimit float64
}

// PipelineConfig tunes the populate pipeline.
type PipelineConfig struct {
	// Concurrency bounds each fan-out group; 0 means unbounded.
	Concurrency    int
	GalleryLimit   int
	ImageFormatter string
	DetailCacheTTL time.Duration
	RunLockTTL     time.Duration
}

// MediaConfig selects where downloaded images are sent.
type MediaConfig struct {
	Backend   string
	UploadURL string
	Ref       string
}

// S3Config contains AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	// PopulateInterval of 0 disables the periodic populate worker.
	PopulateInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.HTTP = HTTPConfig{
		CORSAllowedHosts: splitList(getEnv("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000")),
		TriggerPerMinute: getEnvInt("TRIGGER_RATE_PER_MINUTE", 6),
	}

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// GOG storefront
	cfg.GOG = GOGConfig{
		CatalogURL:    getEnv("GOG_CATALOG_URL", "https://catalog.gog.com/v1/catalog"),
		StorefrontURL: strings.TrimSuffix(getEnv("GOG_STOREFRONT_URL", "https://www.gog.com"), "/"),
		DefaultLimit:  getEnvInt("GOG_DEFAULT_LIMIT", 48),
		DefaultOrder:  getEnv("GOG_DEFAULT_ORDER", "desc:trending"),
	}

	// Pipeline
	cfg.Pipeline = PipelineConfig{
		Concurrency:    getEnvInt("PIPELINE_CONCURRENCY", 0),
		GalleryLimit:   getEnvInt("PIPELINE_GALLERY_LIMIT", 5),
		ImageFormatter: getEnv("PIPELINE_IMAGE_FORMATTER", "product_card_v2_mobile_slider_639"),
	}

	// Media
	cfg.Media = MediaConfig{
		Backend:   strings.ToLower(getEnv("MEDIA_BACKEND", MediaBackendHTTP)),
		UploadURL: getEnv("MEDIA_UPLOAD_URL", "http://localhost:1337/api/upload/"),
		Ref:       getEnv("MEDIA_REF", "api::game.game"),
	}

	// S3
	cfg.S3 = S3Config{
		Region:          getEnv("S3_REGION", "ap-southeast-3"),
		Bucket:          getEnv("S3_BUCKET", "gtd-catalog-media"),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	var err error
	if cfg.GOG.Timeout, err = parseDurationEnv("GOG_HTTP_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid GOG_HTTP_TIMEOUT: %w", err)
	}
	if cfg.GOG.RateLimit, err = parseFloatEnv("GOG_RATE_LIMIT", 0); err != nil {
		return nil, fmt.Errorf("invalid GOG_RATE_LIMIT: %w", err)
	}
	if cfg.Pipeline.DetailCacheTTL, err = parseDurationEnv("DETAIL_CACHE_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid DETAIL_CACHE_TTL: %w", err)
	}
	if cfg.Pipeline.RunLockTTL, err = parseDurationEnv("RUN_LOCK_TTL", "30m"); err != nil {
		return nil, fmt.Errorf("invalid RUN_LOCK_TTL: %w", err)
	}
	if cfg.Worker.PopulateInterval, err = parseDurationEnv("POPULATE_INTERVAL", "0s"); err != nil {
		return nil, fmt.Errorf("invalid POPULATE_INTERVAL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
		return errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	if c.GOG.DefaultLimit <= 0 {
		return errors.New("GOG_DEFAULT_LIMIT must be > 0")
	}
	if c.HTTP.TriggerPerMinute < 0 {
		return errors.New("TRIGGER_RATE_PER_MINUTE must be >= 0")
	}
	if c.Pipeline.Concurrency < 0 {
		return errors.New("PIPELINE_CONCURRENCY must be >= 0")
	}
	if c.Pipeline.GalleryLimit < 0 || c.Pipeline.GalleryLimit > MaxGalleryLimit {
		return fmt.Errorf("PIPELINE_GALLERY_LIMIT must be between 0 and %d", MaxGalleryLimit)
	}
	if c.GOG.RateLimit < 0 {
		return errors.New("GOG_RATE_LIMIT must be >= 0")
	}
	switch c.Media.Backend {
	case MediaBackendHTTP:
		if c.Media.UploadURL == "" {
			return errors.New("MEDIA_UPLOAD_URL must be set when MEDIA_BACKEND=http")
		}
	case MediaBackendS3:
		if c.S3.Bucket == "" || c.S3.Region == "" {
			return errors.New("S3_BUCKET and S3_REGION must be set when MEDIA_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown MEDIA_BACKEND %q (want %q or %q)", c.Media.Backend, MediaBackendHTTP, MediaBackendS3)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseFloatEnv reads an environment variable as float64, falling back to def when empty.
func parseFloatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
