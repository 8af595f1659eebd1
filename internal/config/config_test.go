package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}
	if cfg.Backend != BackendSupabase {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendSupabase)
	}
	if cfg.UI.PageSize != 12 {
		t.Errorf("UI.PageSize = %d, want 12", cfg.UI.PageSize)
	}
	if cfg.Supabase.AvatarBucket != "user-avatars" {
		t.Errorf("Supabase.AvatarBucket = %q", cfg.Supabase.AvatarBucket)
	}
	if cfg.Functions.RateWindow != time.Minute {
		t.Errorf("Functions.RateWindow = %v, want 1m", cfg.Functions.RateWindow)
	}
	if cfg.IsConfigured() {
		t.Error("IsConfigured() = true for empty config")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `backend: functions
supabase:
  url: https://project.supabase.co
  anon_key: anon
functions:
  url: http://localhost:8888
  rate_window: 30s
ui:
  page_size: 6
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}
	if cfg.Backend != BackendFunctions {
		t.Errorf("Backend = %q, want functions", cfg.Backend)
	}
	if !cfg.IsConfigured() {
		t.Error("IsConfigured() = false with functions and auth urls set")
	}
	if cfg.Functions.RateWindow != 30*time.Second {
		t.Errorf("RateWindow = %v, want 30s", cfg.Functions.RateWindow)
	}
	if cfg.UI.PageSize != 6 {
		t.Errorf("PageSize = %d, want 6", cfg.UI.PageSize)
	}
	// untouched keys keep their defaults
	if cfg.UI.TrendingCount != 12 {
		t.Errorf("TrendingCount = %d, want 12", cfg.UI.TrendingCount)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("MOVIEDB_TMDB_TOKEN", "env-token")
	t.Setenv("MOVIEDB_BACKEND", "local")

	cfg, err := LoadConfigFrom(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TMDB.Token != "env-token" {
		t.Errorf("TMDB.Token = %q, want env-token", cfg.TMDB.Token)
	}
	if cfg.Backend != BackendLocal {
		t.Errorf("Backend = %q, want local", cfg.Backend)
	}
}

func TestSaveAndClearSession(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatal(err)
	}

	session := SessionConfig{AccessToken: "at", RefreshToken: "rt", UserID: "u-1", Email: "a@b.co"}
	if err := SaveSession(cfg, session); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %v, want 0600", perm)
	}

	reloaded, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Session != session {
		t.Errorf("Session = %+v, want %+v", reloaded.Session, session)
	}
	if !reloaded.HasSession() {
		t.Error("HasSession() = false after save")
	}

	if err := ClearSession(reloaded); err != nil {
		t.Fatal(err)
	}
	cleared, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cleared.HasSession() {
		t.Error("HasSession() = true after clear")
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "ftp"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted unknown backend")
	}

	cfg = DefaultConfig()
	cfg.UI.PageSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted zero page size")
	}
}
