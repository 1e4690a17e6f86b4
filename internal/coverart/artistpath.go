package coverart

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"jellyjams/internal/catalog"
)

// DefaultMusicRoots are the mount points checked for artist folders when
// track paths give no answer.
var DefaultMusicRoots = []string{"/music", "/data/music", "/media/music"}

// ArtistPathCache resolves artist names to their library folders. Lookups
// walk the track paths of the library snapshot, so the common layout
// /music/Artist/Album/Track.ext resolves through the grandparent directory
// and the flat /music/Artist/Track.ext through the parent. Results, including
// misses, are cached for the life of the cache.
type ArtistPathCache struct {
	fetch catalog.FetchFunc
	roots []string

	mu    sync.Mutex
	paths map[string]string
}

// NewArtistPathCache builds a cache over the given library fetch. Empty roots
// fall back to DefaultMusicRoots.
func NewArtistPathCache(fetch catalog.FetchFunc, roots ...string) *ArtistPathCache {
	if len(roots) == 0 {
		roots = DefaultMusicRoots
	}
	return &ArtistPathCache{
		fetch: fetch,
		roots: roots,
		paths: make(map[string]string),
	}
}

// Find returns the artist's folder. The boolean is false when no folder could
// be located; that outcome is cached too.
func (c *ArtistPathCache) Find(ctx context.Context, artist string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(artist))
	if key == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if dir, cached := c.paths[key]; cached {
		return dir, dir != ""
	}

	dir := c.locate(ctx, artist, key)
	c.paths[key] = dir
	return dir, dir != ""
}

// Invalidate drops all cached paths.
func (c *ArtistPathCache) Invalidate() {
	c.mu.Lock()
	c.paths = make(map[string]string)
	c.mu.Unlock()
}

func (c *ArtistPathCache) locate(ctx context.Context, artist, key string) string {
	if c.fetch != nil {
		tracks, err := c.fetch(ctx)
		if err == nil {
			if dir := dirFromTracks(tracks, key); dir != "" {
				return dir
			}
		}
	}
	for _, root := range c.roots {
		candidate := filepath.Join(root, artist)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}

func dirFromTracks(tracks []catalog.Track, key string) string {
	for _, track := range tracks {
		if track.Path == "" || !creditsArtist(track, key) {
			continue
		}
		parent := filepath.Dir(track.Path)
		grandparent := filepath.Dir(parent)
		if strings.ToLower(filepath.Base(grandparent)) == key {
			return grandparent
		}
		if strings.ToLower(filepath.Base(parent)) == key {
			return parent
		}
	}
	return ""
}

func creditsArtist(track catalog.Track, key string) bool {
	for _, a := range track.Artists {
		if strings.ToLower(a) == key {
			return true
		}
	}
	return false
}
