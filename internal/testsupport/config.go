package testsupport

import (
	"path/filepath"
	"testing"

	"jellyjams/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Jellyfin.URL = "http://127.0.0.1:8096"
	cfgVal.Jellyfin.APIKey = "test"
	cfgVal.Paths.PlaylistDir = filepath.Join(base, "playlists")
	cfgVal.Paths.CoverDir = filepath.Join(base, "covers")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithJellyfin overrides the media server connection settings.
func WithJellyfin(url, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Jellyfin.URL = url
		b.cfg.Jellyfin.APIKey = apiKey
	}
}

// WithTypes restricts the enabled playlist types.
func WithTypes(types ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Playlists.Types = types
	}
}

// WithSpotify enables the cover art integration with test credentials.
func WithSpotify(clientID, clientSecret string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Spotify.Enabled = true
		b.cfg.Spotify.ClientID = clientID
		b.cfg.Spotify.ClientSecret = clientSecret
	}
}
