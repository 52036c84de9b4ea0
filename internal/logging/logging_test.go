package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marksheet.log")

	log := Init("debug", path)
	log.Info("graded sheet")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "graded sheet") {
		t.Errorf("log entry missing from file: %s", data)
	}
	if !strings.Contains(string(data), `"level":"INFO"`) {
		t.Errorf("file log not JSON-encoded: %s", data)
	}
}

func TestInit_LevelFallback(t *testing.T) {
	log := Init("not-a-level", "")
	if log == nil {
		t.Fatal("Init returned nil")
	}
	if !log.Core().Enabled(0) { // zapcore.InfoLevel
		t.Error("fallback level should be info")
	}
	if log.Core().Enabled(-1) { // zapcore.DebugLevel
		t.Error("fallback level must not enable debug")
	}
}

func TestInit_SetsGlobal(t *testing.T) {
	log := Init("info", "")
	if Log != log {
		t.Error("Init did not install the returned logger as Log")
	}
}
