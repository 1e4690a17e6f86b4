package config

import (
	"os"
	"strings"
)

const (
	defaultPlaylistDir        = "/playlists"
	defaultCoverDir           = "/data/cover"
	defaultLogDir             = "~/.local/share/jellyjams/logs"
	defaultDataDir            = "~/.local/share/jellyjams"
	defaultAPIBind            = "127.0.0.1:7768"
	defaultJellyfinURL        = "http://jellyfin:8096"
	defaultMaxTracks          = 100
	defaultMinTracks          = 5
	defaultMinArtistDiversity = 5
	defaultMinAlbumsPerArtist = 2
	defaultMinAlbumsPerDecade = 3
	defaultMaxSongsPerAlbum   = 1
	defaultMaxSongsPerArtist  = 2
	defaultScheduleMode       = "manual"
	defaultScheduleTime       = "00:00"
	defaultIntervalHours      = 24
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultNotifyTimeout      = 10
)

// Default returns a Config populated with repository defaults. Credentials
// are taken from the environment when set.
func Default() Config {
	return Config{
		Paths: Paths{
			PlaylistDir: defaultPlaylistDir,
			CoverDir:    defaultCoverDir,
			LogDir:      defaultLogDir,
			DataDir:     defaultDataDir,
			APIBind:     defaultAPIBind,
		},
		Jellyfin: Jellyfin{
			URL:    envOr("JELLYFIN_URL", defaultJellyfinURL),
			APIKey: strings.TrimSpace(os.Getenv("JELLYFIN_API_KEY")),
		},
		Spotify: Spotify{
			ClientID:     strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_SECRET")),
		},
		Playlists: Playlists{
			Types:              []string{"Genre", "Decade", "Artist", "Personal"},
			MaxTracks:          defaultMaxTracks,
			MinTracks:          defaultMinTracks,
			ShuffleTracks:      true,
			MinArtistDiversity: defaultMinArtistDiversity,
			MinAlbumsPerArtist: defaultMinAlbumsPerArtist,
			MinAlbumsPerDecade: defaultMinAlbumsPerDecade,
			TriggerLibraryScan: true,
		},
		Personal: Personal{
			Users:             "all",
			MaxSongsPerAlbum:  defaultMaxSongsPerAlbum,
			MaxSongsPerArtist: defaultMaxSongsPerArtist,
		},
		Genres: Genres{
			GroupingEnabled: true,
		},
		Schedule: Schedule{
			Mode:          defaultScheduleMode,
			Time:          defaultScheduleTime,
			IntervalHours: defaultIntervalHours,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Passes:         true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
