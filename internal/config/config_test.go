package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "catalog")
	t.Setenv("DB_NAME", "catalog")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GOG.DefaultLimit != 48 || cfg.GOG.DefaultOrder != "desc:trending" {
		t.Errorf("catalog defaults = %+v", cfg.GOG)
	}
	if cfg.GOG.Timeout != 30*time.Second || cfg.GOG.RateLimit != 0 {
		t.Errorf("http defaults = %v / %v", cfg.GOG.Timeout, cfg.GOG.RateLimit)
	}
	if cfg.Pipeline.Concurrency != 0 || cfg.Pipeline.GalleryLimit != 5 {
		t.Errorf("pipeline defaults = %+v", cfg.Pipeline)
	}
	if cfg.Media.Backend != MediaBackendHTTP || cfg.Media.Ref != "api::game.game" {
		t.Errorf("media defaults = %+v", cfg.Media)
	}
	if cfg.Worker.PopulateInterval != 0 {
		t.Errorf("worker should be disabled by default, got %v", cfg.Worker.PopulateInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("GOG_STOREFRONT_URL", "http://storefront.local/")
	t.Setenv("GOG_RATE_LIMIT", "2.5")
	t.Setenv("PIPELINE_CONCURRENCY", "8")
	t.Setenv("MEDIA_BACKEND", "S3")
	t.Setenv("POPULATE_INTERVAL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GOG.StorefrontURL != "http://storefront.local" {
		t.Errorf("storefront = %q", cfg.GOG.StorefrontURL)
	}
	if cfg.GOG.RateLimit != 2.5 || cfg.Pipeline.Concurrency != 8 {
		t.Errorf("rate=%v concurrency=%d", cfg.GOG.RateLimit, cfg.Pipeline.Concurrency)
	}
	if cfg.Media.Backend != MediaBackendS3 {
		t.Errorf("backend = %q", cfg.Media.Backend)
	}
	if cfg.Worker.PopulateInterval != 15*time.Minute {
		t.Errorf("interval = %v", cfg.Worker.PopulateInterval)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"database configuration incomplete": {"DB_HOST": ""},
		"PIPELINE_CONCURRENCY":              {"PIPELINE_CONCURRENCY": "-1"},
		"unknown MEDIA_BACKEND":             {"MEDIA_BACKEND": "ftp"},
		"invalid RUN_LOCK_TTL":              {"RUN_LOCK_TTL": "soon"},
		"invalid GOG_RATE_LIMIT":            {"GOG_RATE_LIMIT": "fast"},
		"PIPELINE_GALLERY_LIMIT":            {"PIPELINE_GALLERY_LIMIT": "8"},
	}
	for want, env := range cases {
		t.Run(want, func(t *testing.T) {
			setRequired(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), want) {
				t.Fatalf("want error containing %q, got %v", want, err)
			}
		})
	}
}
