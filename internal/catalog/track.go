package catalog

import (
	"strings"
	"time"

	"jellyjams/internal/services"
)

// Track is a single audio item from the media server library after
// normalization. Genres are individual tags (multi-valued tags already split)
// and Artists are individual names (joined credits already split).
type Track struct {
	ID             string
	Name           string
	Path           string
	Album          string
	AlbumID        string
	AlbumArtist    string
	Artists        []string
	Genres         []string
	ProductionYear int
	RunTimeTicks   int64
	DateCreated    time.Time
}

// User identifies a media server account that personal playlists are built for.
type User struct {
	ID   string
	Name string
}

// ParseTrack normalizes a raw library item. Tracks without a server item ID
// cannot be placed into playlists and are rejected.
func ParseTrack(raw Track) (Track, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return Track{}, services.Wrap(services.ErrValidation, "catalog", "parse", "track is missing an item id", nil)
	}
	t := raw
	t.Name = strings.TrimSpace(t.Name)
	t.Genres = SplitGenres(raw.Genres)
	t.Artists = SplitArtists(raw.Artists)
	return t, nil
}

// SplitGenres expands semicolon-joined genre tags into individual tags,
// trimming whitespace and dropping duplicates while preserving first-seen
// order.
func SplitGenres(genres []string) []string {
	if len(genres) == 0 {
		return nil
	}
	out := make([]string, 0, len(genres))
	seen := make(map[string]struct{}, len(genres))
	for _, raw := range genres {
		for _, part := range strings.Split(raw, ";") {
			tag := strings.TrimSpace(part)
			if tag == "" {
				continue
			}
			key := strings.ToLower(tag)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, tag)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SplitArtists expands NUL-joined artist credits into individual names. Some
// taggers write multi-artist credits as a single NUL-separated string.
func SplitArtists(artists []string) []string {
	if len(artists) == 0 {
		return nil
	}
	out := make([]string, 0, len(artists))
	seen := make(map[string]struct{}, len(artists))
	for _, raw := range artists {
		for _, part := range strings.Split(raw, "\x00") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// PrimaryArtist returns the first credited artist, or the empty string when
// the track carries no artist metadata.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Decade reports the track's release decade (1970, 1980, ...). The second
// return is false when the production year is unknown.
func (t Track) Decade() (int, bool) {
	if t.ProductionYear <= 0 {
		return 0, false
	}
	return t.ProductionYear / 10 * 10, true
}
