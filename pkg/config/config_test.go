package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	_, err := Load("/nonexistent/path/diamond.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent path")
	}
	// Load with empty path uses default search (may use defaults if no config file)
	chdir(t, t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("default addr: got %s", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("default shutdown_timeout: got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.RateLimitRequests != 100 || cfg.Server.RateLimitWindow != time.Minute {
		t.Errorf("default rate limit: got %d per %v", cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("default cors_origins: got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Model.Path != "model/model_5.bin" {
		t.Errorf("default model path: got %s", cfg.Model.Path)
	}
	if cfg.Dataset.Path != "data/processed/diamonds_clean.csv" {
		t.Errorf("default dataset path: got %s", cfg.Dataset.Path)
	}
	if cfg.Dataset.SampleSize != 500 {
		t.Errorf("default sample_size: got %d", cfg.Dataset.SampleSize)
	}
	if cfg.Dataset.DBPath != ":memory:" {
		t.Errorf("default db_path: got %s", cfg.Dataset.DBPath)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("PORT", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	content := `
server:
  addr: ":9000"
  shutdown_timeout: 3s
  rate_limit_requests: 20
  cors_origins:
    - "http://localhost:5173"
model:
  path: "artifacts/m.bin"
dataset:
  path: "test.csv"
  sample_size: 50
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr: got %s", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("shutdown_timeout: got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.RateLimitRequests != 20 {
		t.Errorf("rate_limit_requests: got %d", cfg.Server.RateLimitRequests)
	}
	if cfg.Server.RateLimitWindow != time.Minute {
		t.Errorf("rate_limit_window should keep default: got %v", cfg.Server.RateLimitWindow)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "http://localhost:5173" {
		t.Errorf("cors_origins: got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Model.Path != "artifacts/m.bin" {
		t.Errorf("model path: got %s", cfg.Model.Path)
	}
	if cfg.Dataset.SampleSize != 50 {
		t.Errorf("sample_size: got %d", cfg.Dataset.SampleSize)
	}
	if cfg.Dataset.DBPath != ":memory:" {
		t.Errorf("db_path should keep default: got %s", cfg.Dataset.DBPath)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level: got %s", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	chdir(t, t.TempDir())
	t.Setenv("DIAMOND_MODEL__PATH", "/srv/model.bin")
	t.Setenv("DIAMOND_SERVER__CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DIAMOND_DATASET__SAMPLE_SIZE", "42")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model.Path != "/srv/model.bin" {
		t.Errorf("model path: got %s", cfg.Model.Path)
	}
	if cfg.Dataset.SampleSize != 42 {
		t.Errorf("sample_size: got %d", cfg.Dataset.SampleSize)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("cors_origins: got %v", cfg.Server.CORSOrigins)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("cors_origins[%d]: got %s want %s", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadPortOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DIAMOND_SERVER__ADDR", ":7000")
	t.Setenv("PORT", "8123")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8123" {
		t.Errorf("addr: got %s", cfg.Server.Addr)
	}
}

func TestLoadRejectsOversizedSample(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "big.yaml")
	if err := os.WriteFile(path, []byte("dataset:\n  sample_size: 1000\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for sample_size above the cap")
	}
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Model.Path = ""
	cfg.Server.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restore Chdir: %v", err)
		}
	})
}
