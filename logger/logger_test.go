package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")

	l, f, err := New("info", path)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if f == nil {
		t.Fatal("Expected a log file handle")
	}

	l.Info("stage done")
	l.Debug("hidden at info level")
	_ = l.Sync()
	_ = f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %q", len(lines), string(data))
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", lines[0], err)
	}
	if entry["msg"] != "stage done" {
		t.Errorf("Expected msg 'stage done', got %v", entry["msg"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("Expected level INFO, got %v", entry["level"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("Expected timestamp in log line")
	}
}

func TestNew_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	if err := os.WriteFile(path, []byte("previous run\n"), 0644); err != nil {
		t.Fatalf("Failed to seed log file: %v", err)
	}

	l, f, err := New("debug", path)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	l.Debug("next run")
	_ = l.Sync()
	_ = f.Close()

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "previous run\n") {
		t.Errorf("Expected existing content to be kept, got %q", string(data))
	}
	if !strings.Contains(string(data), "next run") {
		t.Errorf("Expected new entry to be appended, got %q", string(data))
	}
}

func TestNew_NoFile(t *testing.T) {
	l, f, err := New("warn", "")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if f != nil {
		t.Error("Expected no log file when path is empty")
	}
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Expected debug level to be disabled at warn level")
	}
}

func TestNew_UnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "bot.log")

	if _, _, err := New("info", path); err == nil {
		t.Error("Expected error for log file in a missing directory")
	}
}
