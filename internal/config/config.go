package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	PlaylistDir string `toml:"playlist_dir"`
	CoverDir    string `toml:"cover_dir"`
	LogDir      string `toml:"log_dir"`
	DataDir     string `toml:"data_dir"`
	APIBind     string `toml:"api_bind"`
	APIToken    string `toml:"api_token"`
}

// Jellyfin contains connection settings for the media server.
type Jellyfin struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

// Spotify contains credentials for the optional cover art integration.
type Spotify struct {
	Enabled      bool   `toml:"enabled"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Playlists contains curation thresholds and type toggles.
type Playlists struct {
	Types              []string `toml:"types"`
	MaxTracks          int      `toml:"max_tracks"`
	MinTracks          int      `toml:"min_tracks"`
	ExcludedGenres     []string `toml:"excluded_genres"`
	ExcludedArtists    []string `toml:"excluded_artists"`
	ShuffleTracks      bool     `toml:"shuffle_tracks"`
	MinArtistDiversity int      `toml:"min_artist_diversity"`
	MinAlbumsPerArtist int      `toml:"min_albums_per_artist"`
	MinAlbumsPerDecade int      `toml:"min_albums_per_decade"`
	TriggerLibraryScan bool     `toml:"trigger_library_scan"`
}

// Personal contains settings for per-user playlist generation.
type Personal struct {
	Users             string `toml:"users"`
	MaxSongsPerAlbum  int    `toml:"discovery_max_songs_per_album"`
	MaxSongsPerArtist int    `toml:"discovery_max_songs_per_artist"`
}

// Genres contains the genre grouping configuration.
type Genres struct {
	GroupingEnabled bool   `toml:"grouping_enabled"`
	MappingFile     string `toml:"mapping_file"`
}

// Schedule contains daemon trigger configuration.
type Schedule struct {
	Mode              string `toml:"mode"` // manual, daily, interval
	Time              string `toml:"time"` // HH:MM for daily mode
	IntervalHours     int    `toml:"interval_hours"`
	GenerateOnStartup bool   `toml:"generate_on_startup"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Passes         bool   `toml:"passes"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for JellyJams.
//
// Configuration sections by subsystem:
//   - Paths: playlist/cover directories, state dir, API bind address
//   - Jellyfin: media server connection
//   - Spotify: optional cover art search credentials
//   - Playlists: curation thresholds and exclusion lists
//   - Personal: per-user playlist settings and discovery caps
//   - Genres: genre grouping toggle and mapping file override
//   - Schedule: daemon trigger mode
//   - Notifications: ntfy settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Jellyfin      Jellyfin      `toml:"jellyfin"`
	Spotify       Spotify       `toml:"spotify"`
	Playlists     Playlists     `toml:"playlists"`
	Personal      Personal      `toml:"personal"`
	Genres        Genres        `toml:"genres"`
	Schedule      Schedule      `toml:"schedule"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/jellyjams/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and credential fields filled from the
// environment (a `.env` file next to the working directory is honored when
// present).
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("jellyjams.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// PlaylistDir is created on a best-effort basis so the daemon can start when
// the host mount is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.PlaylistDir) != "" {
		_ = os.MkdirAll(c.Paths.PlaylistDir, 0o755)
	}
	return nil
}

// TypeEnabled reports whether a playlist type is selected in configuration.
// Matching is case-insensitive.
func (c *Config) TypeEnabled(name string) bool {
	for _, t := range c.Playlists.Types {
		if strings.EqualFold(strings.TrimSpace(t), name) {
			return true
		}
	}
	return false
}

// WriteSample writes the embedded sample configuration to the given path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
