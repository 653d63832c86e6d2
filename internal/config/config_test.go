package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("VITALS_STORE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.VitalsStore != StoreMemory {
		t.Fatalf("expected memory store by default, got %s", cfg.VitalsStore)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Fatalf("expected default cache ttl, got %s", cfg.CacheTTL)
	}
	if cfg.CORSAllowedOrigin != nil {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSAllowedOrigin)
	}
	if cfg.EmailProvider != "stub" {
		t.Fatalf("expected stub email provider, got %s", cfg.EmailProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("VITALS_STORE", " Postgres ")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("VITALS_CACHE_TTL", "90s")
	t.Setenv("RATE_LIMIT_PER_SEC", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("REDIS_TLS", "true")

	cfg := Load()
	if cfg.Port != "9090" || cfg.Env != "production" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected base config: %+v", cfg)
	}
	if cfg.VitalsStore != StorePostgres {
		t.Fatalf("expected postgres store, got %q", cfg.VitalsStore)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Fatalf("expected 90s cache ttl, got %s", cfg.CacheTTL)
	}
	if cfg.RateLimitPerSec != 2.5 || cfg.RateLimitBurst != 7 {
		t.Fatalf("unexpected rate limit config: %v/%d", cfg.RateLimitPerSec, cfg.RateLimitBurst)
	}
	if len(cfg.CORSAllowedOrigin) != 2 || cfg.CORSAllowedOrigin[1] != "https://b.example" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowedOrigin)
	}
	if !cfg.RedisTLS {
		t.Fatal("expected redis TLS enabled")
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("VITALS_LIST_LIMIT", "many")
	t.Setenv("VITALS_CACHE_TTL", "soon")
	cfg := Load()
	if cfg.VitalsListLimit != 50 {
		t.Fatalf("expected fallback list limit, got %d", cfg.VitalsListLimit)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Fatalf("expected fallback ttl, got %s", cfg.CacheTTL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("EMS_DOTENV_PROBE=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("EMS_DOTENV_PROBE", "")
	os.Unsetenv("EMS_DOTENV_PROBE")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("EMS_DOTENV_PROBE"); got != "from-file" {
		t.Fatalf("expected value from .env, got %q", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}
