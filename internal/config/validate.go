package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateJellyfin(); err != nil {
		return err
	}
	if err := c.validateSpotify(); err != nil {
		return err
	}
	if err := c.validatePlaylists(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateJellyfin() error {
	if c.Jellyfin.URL == "" {
		return errors.New("jellyfin.url must be set")
	}
	if c.Jellyfin.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/jellyjams/config.toml"
		}
		return fmt.Errorf("jellyfin.api_key is required. Set JELLYFIN_API_KEY env var or edit %s (create with 'jellyjams config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateSpotify() error {
	if !c.Spotify.Enabled {
		return nil
	}
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return errors.New("spotify.enabled requires spotify.client_id and spotify.client_secret (or SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET env vars)")
	}
	return nil
}

func (c *Config) validatePlaylists() error {
	if c.Playlists.MaxTracks <= 0 {
		return errors.New("playlists.max_tracks must be positive")
	}
	if c.Playlists.MinTracks <= 0 {
		return errors.New("playlists.min_tracks must be positive")
	}
	if c.Playlists.MinTracks > c.Playlists.MaxTracks {
		return errors.New("playlists.min_tracks cannot exceed playlists.max_tracks")
	}
	if c.Playlists.MinArtistDiversity < 0 {
		return errors.New("playlists.min_artist_diversity cannot be negative")
	}
	if c.Personal.MaxSongsPerAlbum <= 0 {
		return errors.New("personal.discovery_max_songs_per_album must be positive")
	}
	if c.Personal.MaxSongsPerArtist <= 0 {
		return errors.New("personal.discovery_max_songs_per_artist must be positive")
	}
	for _, t := range c.Playlists.Types {
		switch strings.ToLower(t) {
		case "genre", "decade", "artist", "personal":
		default:
			return fmt.Errorf("playlists.types: unknown type %q", t)
		}
	}
	return nil
}

func (c *Config) validateSchedule() error {
	switch c.Schedule.Mode {
	case "manual", "interval":
	case "daily":
		var hour, minute int
		if _, err := fmt.Sscanf(c.Schedule.Time, "%d:%d", &hour, &minute); err != nil {
			return fmt.Errorf("schedule.time: expected HH:MM, got %q", c.Schedule.Time)
		}
		if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			return fmt.Errorf("schedule.time: out of range value %q", c.Schedule.Time)
		}
	default:
		return fmt.Errorf("schedule.mode: unsupported value %q", c.Schedule.Mode)
	}
	if c.Schedule.Mode == "interval" && c.Schedule.IntervalHours <= 0 {
		return errors.New("schedule.interval_hours must be positive in interval mode")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
