package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.WindowDays != 30 || cfg.WindowAnchor != "latest" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SheetURL != DefaultSheetURL {
		t.Fatalf("unexpected sheet url %q", cfg.SheetURL)
	}
	if cfg.ActivityCacheTTL != 24*time.Hour || cfg.SheetTimeout != 10*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.StrictSource {
		t.Fatal("strict source must default to off")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("WINDOW_DAYS", "14")
	t.Setenv("STRICT_SOURCE", "true")
	t.Setenv("ACTIVITY_CACHE_TTL", "30m")
	t.Setenv("UPSTREAM_RPS", "2.5")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.WindowDays != 14 || !cfg.StrictSource || cfg.ActivityCacheTTL != 30*time.Minute || cfg.UpstreamRPS != 2.5 {
		t.Fatalf("environment not applied: %+v", cfg)
	}
}

func TestLoadSheetURL(t *testing.T) {
	t.Setenv("SHEET_CSV_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SheetURL != DefaultSheetURL {
		t.Fatalf("blank SHEET_CSV_URL should fall back to the default, got %q", cfg.SheetURL)
	}

	t.Setenv("SHEET_CSV_URL", "http://sheets.local/export.csv")
	cfg, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SheetURL != "http://sheets.local/export.csv" {
		t.Fatalf("unexpected sheet url %q", cfg.SheetURL)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("WINDOW_ANCHOR=today\nREDIS_ADDR=localhost:6379\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("WINDOW_ANCHOR")
		os.Unsetenv("REDIS_ADDR")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WindowAnchor != "today" || cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("env file not applied: %+v", cfg)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("WINDOW_DAYS", "thirty")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for malformed WINDOW_DAYS")
	}
}
