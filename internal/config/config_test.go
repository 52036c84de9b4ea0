package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inkscale/marksheet/internal/mark"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marksheet.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// No config file anywhere near a temp working directory.
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Thresholds != mark.DefaultPolicy() {
		t.Errorf("thresholds: got %+v, want defaults", cfg.Thresholds)
	}
	if cfg.Workers <= 0 {
		t.Errorf("workers default: got %d", cfg.Workers)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level default: got %q", cfg.Log.Level)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
thresholds:
  inset_frac: 0.2
  dark_brightness: 160
  mark_threshold: 0.1
workers: 8
gemini:
  model: gemini-1.5-pro
database:
  url: postgres://localhost/marksheet
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Thresholds.InsetFrac != 0.2 || cfg.Thresholds.DarkBrightness != 160 || cfg.Thresholds.MarkThreshold != 0.1 {
		t.Errorf("thresholds not read: %+v", cfg.Thresholds)
	}
	if cfg.Workers != 8 {
		t.Errorf("workers: got %d, want 8", cfg.Workers)
	}
	if cfg.Gemini.Model != "gemini-1.5-pro" {
		t.Errorf("gemini model: got %q", cfg.Gemini.Model)
	}
	if cfg.Database.URL != "postgres://localhost/marksheet" {
		t.Errorf("database url: got %q", cfg.Database.URL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level: got %q", cfg.Log.Level)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "workers: 2\n")
	t.Setenv("MARKSHEET_WORKERS", "6")
	t.Setenv("MARKSHEET_GEMINI_MODEL", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 6 {
		t.Errorf("env did not override workers: got %d", cfg.Workers)
	}
	if cfg.Gemini.Model != "from-env" {
		t.Errorf("env did not override nested key: got %q", cfg.Gemini.Model)
	}
}

func TestLoad_GeminiKeyFallback(t *testing.T) {
	path := writeConfig(t, "workers: 1\n")
	t.Setenv("GEMINI_API_KEY", "bare-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Gemini.APIKey != "bare-key" {
		t.Errorf("bare GEMINI_API_KEY not honored: got %q", cfg.Gemini.APIKey)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad thresholds", func(t *testing.T) {
		path := writeConfig(t, "thresholds:\n  mark_threshold: 3\n")
		_, err := Load(path)
		if err == nil {
			t.Fatal("Load should reject impossible thresholds")
		}
		if !strings.Contains(err.Error(), "mark threshold") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if err == nil {
			t.Fatal("Load should fail for a missing explicit config file")
		}
	})

	t.Run("negative workers", func(t *testing.T) {
		path := writeConfig(t, "workers: -1\n")
		if _, err := Load(path); err == nil {
			t.Fatal("Load should reject negative workers")
		}
	})
}
