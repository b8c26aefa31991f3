package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Get().Info(ctx, "test message", String("k", "v"), Int("n", 3))

	out := buf.String()
	if !strings.Contains(out, "test message") || !strings.Contains(out, "k=v") {
		t.Fatalf("unexpected log output: %q", out)
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Errorf("expected caller source in output, got %q", out)
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	ctx := context.Background()
	Get().Info(ctx, "hidden")
	Get().Warn(ctx, "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %q", out)
	}

	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoggerFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "pulse.log")

	var buf bytes.Buffer
	if err := InitWithOptions(WithWriter(&buf), WithFile(path, 1, 1)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	Named("file").Info(context.Background(), "to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file missing line: %q", string(data))
	}
	if !strings.Contains(buf.String(), "to file") {
		t.Errorf("writer should still receive output alongside the file: %q", buf.String())
	}
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}
	namedLogger.Info(context.Background(), "test message")
}
