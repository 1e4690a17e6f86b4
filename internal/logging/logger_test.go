package logging_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jellyjams/internal/config"
	"jellyjams/internal/logging"
	"jellyjams/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "yaml"})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = dir
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("pass complete", slog.Int("playlists", 3))

	data, err := os.ReadFile(filepath.Join(dir, "jellyjams.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"pass complete"`) {
		t.Fatalf("expected message in log file, got %q", data)
	}
	if !strings.Contains(string(data), `"playlists":3`) {
		t.Fatalf("expected attribute in log file, got %q", data)
	}
}

func TestWithContextAddsPassFields(t *testing.T) {
	ctx := services.WithPassID(context.Background(), "pass-1")
	ctx = services.WithPlaylist(ctx, "Rock Radio")
	ctx = services.WithUser(ctx, "alice")

	fields := logging.ContextFields(ctx)
	keys := make(map[string]string, len(fields))
	for _, f := range fields {
		keys[f.Key] = f.Value.String()
	}
	if keys[logging.FieldPassID] != "pass-1" {
		t.Fatalf("missing pass id field: %v", keys)
	}
	if keys[logging.FieldPlaylist] != "Rock Radio" {
		t.Fatalf("missing playlist field: %v", keys)
	}
	if keys[logging.FieldUser] != "alice" {
		t.Fatalf("missing user field: %v", keys)
	}
}

func TestWithContextNilLoggerIsSafe(t *testing.T) {
	logger := logging.WithContext(context.Background(), nil)
	logger.Info("no output expected")
}
