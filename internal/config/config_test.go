package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jellyjams/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("JELLYFIN_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Jellyfin.APIKey != "test-key" {
		t.Fatalf("expected API key from env, got %q", cfg.Jellyfin.APIKey)
	}
	if cfg.Jellyfin.URL != "http://jellyfin:8096" {
		t.Fatalf("unexpected jellyfin url: %q", cfg.Jellyfin.URL)
	}
	wantLogs := filepath.Join(tempHome, ".local", "share", "jellyjams", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Spotify.Enabled {
		t.Fatal("expected spotify disabled by default")
	}
	if cfg.Playlists.MaxTracks != 100 || cfg.Playlists.MinTracks != 5 {
		t.Fatalf("unexpected track limits: %d/%d", cfg.Playlists.MaxTracks, cfg.Playlists.MinTracks)
	}
	if !cfg.TypeEnabled("genre") || !cfg.TypeEnabled("Personal") {
		t.Fatal("expected all playlist types enabled by default")
	}
	if cfg.Schedule.Mode != "manual" {
		t.Fatalf("unexpected schedule mode: %q", cfg.Schedule.Mode)
	}
}

func TestLoadMissingAPIKeyFails(t *testing.T) {
	t.Setenv("JELLYFIN_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "jellyfin.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	t.Setenv("JELLYFIN_API_KEY", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[jellyfin]
url = "http://media.local:8096/"
api_key = "abc123"

[playlists]
types = ["Genre", " Decade "]
excluded_artists = [" Old Mervs ", ""]

[schedule]
mode = "Daily"
time = "03:30"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Jellyfin.URL != "http://media.local:8096" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Jellyfin.URL)
	}
	if !cfg.TypeEnabled("decade") {
		t.Fatal("expected decade type enabled after trimming")
	}
	if cfg.TypeEnabled("artist") {
		t.Fatal("artist type should not be enabled")
	}
	if len(cfg.Playlists.ExcludedArtists) != 1 || cfg.Playlists.ExcludedArtists[0] != "Old Mervs" {
		t.Fatalf("unexpected excluded artists: %v", cfg.Playlists.ExcludedArtists)
	}
	if cfg.Schedule.Mode != "daily" {
		t.Fatalf("expected lowercased schedule mode, got %q", cfg.Schedule.Mode)
	}
}

func TestValidateRejectsBadSchedule(t *testing.T) {
	cfg := config.Default()
	cfg.Jellyfin.APIKey = "k"
	cfg.Schedule.Mode = "daily"
	cfg.Schedule.Time = "25:99"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range schedule time")
	}
}

func TestValidateRejectsSpotifyWithoutCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Jellyfin.APIKey = "k"
	cfg.Spotify.Enabled = true
	cfg.Spotify.ClientID = ""
	cfg.Spotify.ClientSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for spotify without credentials")
	}
}

func TestValidateRejectsUnknownPlaylistType(t *testing.T) {
	cfg := config.Default()
	cfg.Jellyfin.APIKey = "k"
	cfg.Playlists.Types = []string{"Genre", "Moods"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown playlist type")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error for existing file")
	}
}
