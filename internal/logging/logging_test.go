package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "piiview.log")
	closer := Setup(slog.LevelInfo, path)

	slog.Debug("hidden", "k", 1)
	slog.Info("analysis complete", "entities", 2)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "analysis complete") || !strings.Contains(out, "entities=2") {
		t.Fatalf("log file = %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record written at info level: %q", out)
	}
}

func TestSetupStderr(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	if err := Setup(slog.LevelWarn, "").Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if slog.Default().Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info enabled at warn level")
	}
}
