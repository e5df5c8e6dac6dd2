package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"skyphase/pkg/config"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")

	cleanup, err := Init(config.LogConfig{Path: path, Level: "DEBUG"})
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	slog.Debug("debug line", "k", "v")
	slog.Info("info line")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "debug line") {
		t.Error("debug record missing from log file")
	}
	if !strings.Contains(string(data), "info line") {
		t.Error("info record missing from log file")
	}
}

func TestInitRotatesPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")
	if err := os.WriteFile(path, []byte("previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cleanup, err := Init(config.LogConfig{Path: path, Level: "INFO"})
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	cleanup()

	old, err := os.ReadFile(path + ".old")
	if err != nil {
		t.Fatalf("read rotated log: %v", err)
	}
	if !strings.Contains(string(old), "previous run") {
		t.Error("rotated file does not hold previous content")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
