package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != 8080 || cfg.PageSize != 100 || cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Petfinder.TokenURL() != "https://api.petfinder.com/v2/oauth2/token" {
		t.Fatalf("unexpected token url %q", cfg.Petfinder.TokenURL())
	}
	if cfg.MarkerRadius != 12 {
		t.Fatalf("unexpected marker radius %v", cfg.MarkerRadius)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("unexpected session ttl %v", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PETPAL_PORT", "9090")
	t.Setenv("PETPAL_PETFINDER_RATE", "2.5")
	t.Setenv("PETPAL_HTTP_TIMEOUT", "5s")
	t.Setenv("PETPAL_PAGE_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != 9090 || cfg.Petfinder.RatePerSecond != 2.5 || cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("overrides not applied %+v", cfg)
	}
	if cfg.PageSize != 100 {
		t.Fatalf("invalid int should fall back, got %d", cfg.PageSize)
	}
}

func TestLoadRejectsPageSize(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PETPAL_PAGE_SIZE", "250")

	if _, err := Load(); err == nil {
		t.Fatal("expected page size error")
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PETPAL_OPENCAGE_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PETPAL_OPENCAGE_KEY", "")
	os.Unsetenv("PETPAL_OPENCAGE_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenCage.APIKey != "from-dotenv" {
		t.Fatalf("expected key from .env got %q", cfg.OpenCage.APIKey)
	}
}
