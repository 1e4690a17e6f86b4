package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeJellyfin()
	c.normalizePlaylists()
	c.normalizeSchedule()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.PlaylistDir, err = expandPath(c.Paths.PlaylistDir); err != nil {
		return fmt.Errorf("paths.playlist_dir: %w", err)
	}
	if c.Paths.CoverDir, err = expandPath(c.Paths.CoverDir); err != nil {
		return fmt.Errorf("paths.cover_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Genres.MappingFile) != "" {
		if c.Genres.MappingFile, err = expandPath(c.Genres.MappingFile); err != nil {
			return fmt.Errorf("genres.mapping_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeJellyfin() {
	c.Jellyfin.URL = strings.TrimRight(strings.TrimSpace(c.Jellyfin.URL), "/")
	c.Jellyfin.APIKey = strings.TrimSpace(c.Jellyfin.APIKey)
}

func (c *Config) normalizePlaylists() {
	c.Playlists.Types = trimStrings(c.Playlists.Types)
	c.Playlists.ExcludedGenres = trimStrings(c.Playlists.ExcludedGenres)
	c.Playlists.ExcludedArtists = trimStrings(c.Playlists.ExcludedArtists)
	c.Personal.Users = strings.TrimSpace(c.Personal.Users)
	if c.Personal.Users == "" {
		c.Personal.Users = "all"
	}
}

func (c *Config) normalizeSchedule() {
	c.Schedule.Mode = strings.ToLower(strings.TrimSpace(c.Schedule.Mode))
	if c.Schedule.Mode == "" {
		c.Schedule.Mode = defaultScheduleMode
	}
	c.Schedule.Time = strings.TrimSpace(c.Schedule.Time)
	if c.Schedule.Time == "" {
		c.Schedule.Time = defaultScheduleTime
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
