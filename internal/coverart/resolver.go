package coverart

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"jellyjams/internal/assemble"
	"jellyjams/internal/fileutil"
	"jellyjams/internal/logging"
)

// Source identifies which chain step produced a cover.
type Source string

const (
	SourceExact        Source = "exact"
	SourceTypeFallback Source = "type-fallback"
	SourceDecade       Source = "decade"
	SourceGenre        Source = "genre"
	SourceSpotify      Source = "spotify"
	SourceArtistFolder Source = "artist-folder"
	SourceNone         Source = "none"
)

// Result reports the outcome of cover resolution.
type Result struct {
	Source Source
	Path   string
}

// allExtensions is the search order for operator-supplied covers.
var allExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp"}

// imageExtensions is the narrower set accepted for decade, genre and artist
// folder artwork.
var imageExtensions = []string{".jpg", ".jpeg", ".png"}

// SpotifySource fetches editorial playlist covers.
type SpotifySource interface {
	ArtistCover(ctx context.Context, artist string) ([]byte, bool, error)
}

// Renderer draws text overlays onto cover images.
type Renderer interface {
	GenreCover(ctx context.Context, backgroundPath, genre, destPath string) error
	ArtistOverlay(ctx context.Context, sourcePath, artist, destPath string) error
}

// Resolver walks the cover source chain for one playlist at a time.
type Resolver struct {
	// CoverDir holds operator-supplied artwork, keyed by playlist name.
	CoverDir string
	// Spotify is optional; nil skips the Spotify step.
	Spotify SpotifySource
	// Renderer is optional; nil skips generated covers.
	Renderer Renderer
	// Artists locates artist folders for overlay sources. Optional.
	Artists *ArtistPathCache
	Logger  *slog.Logger
}

// Resolve finds and installs a cover for the playlist into destDir. A fully
// exhausted chain is not an error; the playlist ships without artwork.
func (r *Resolver) Resolve(ctx context.Context, p assemble.Playlist, destDir string) (Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.FieldPlaylist, p.Name)

	steps := []func(context.Context, assemble.Playlist, string, *slog.Logger) (Result, bool){
		r.exactMatch,
		r.typeFallback,
		r.decadeCover,
		r.genreCover,
		r.spotifyCover,
		r.artistFolderCover,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return Result{Source: SourceNone}, err
		}
		if result, ok := step(ctx, p, destDir, logger); ok {
			logger.Info("cover art applied",
				slog.String("source", string(result.Source)),
				slog.String("path", result.Path))
			return result, nil
		}
	}
	logger.Info("no cover art found")
	return Result{Source: SourceNone}, nil
}

// exactMatch copies an operator image named exactly after the playlist,
// preserving its extension as folder.<ext>.
func (r *Resolver) exactMatch(_ context.Context, p assemble.Playlist, destDir string, logger *slog.Logger) (Result, bool) {
	src, ext, ok := findImage(r.CoverDir, p.Name, allExtensions)
	if !ok {
		return Result{}, false
	}
	return r.install(SourceExact, src, filepath.Join(destDir, "folder"+ext), logger)
}

// typeFallback tries the shared per-type image ("Discovery Mix - all" and
// friends) when no exact match exists.
func (r *Resolver) typeFallback(_ context.Context, p assemble.Playlist, destDir string, logger *slog.Logger) (Result, bool) {
	pattern, ok := fallbackPattern(p.Name)
	if !ok {
		return Result{}, false
	}
	src, ext, ok := findImage(r.CoverDir, pattern, allExtensions)
	if !ok {
		return Result{}, false
	}
	return r.install(SourceTypeFallback, src, filepath.Join(destDir, "folder"+ext), logger)
}

// decadeCover looks for decade artwork by playlist name or "<decade>-cover",
// falling back to a shared 1800s image for anything before 1900.
func (r *Resolver) decadeCover(_ context.Context, p assemble.Playlist, destDir string, logger *slog.Logger) (Result, bool) {
	if p.Type != assemble.TypeDecade {
		return Result{}, false
	}
	decade, ok := strings.CutPrefix(p.Name, "Back to the ")
	if !ok {
		return Result{}, false
	}
	decade = strings.TrimSpace(decade)

	names := []string{p.Name, decade + "-cover"}
	if year, err := strconv.Atoi(strings.TrimSuffix(decade, "s")); err == nil && year < 1900 {
		names = append(names, "1800s-cover")
	}
	for _, name := range names {
		if src, ext, found := findImage(r.CoverDir, name, imageExtensions); found {
			return r.install(SourceDecade, src, filepath.Join(destDir, "cover"+ext), logger)
		}
	}
	return Result{}, false
}

// genreCover prefers predefined genre artwork and otherwise renders one from
// the "Fallback Radio" background template.
func (r *Resolver) genreCover(ctx context.Context, p assemble.Playlist, destDir string, logger *slog.Logger) (Result, bool) {
	if p.Type != assemble.TypeGenre {
		return Result{}, false
	}
	group, ok := strings.CutSuffix(p.Name, " Radio")
	if !ok {
		return Result{}, false
	}
	group = strings.TrimSpace(group)

	for _, name := range []string{group + " Radio", group} {
		if src, ext, found := findImage(r.CoverDir, name, imageExtensions); found {
			return r.install(SourceGenre, src, filepath.Join(destDir, "cover"+ext), logger)
		}
	}
	if r.Renderer == nil {
		return Result{}, false
	}
	background, _, found := findImage(r.CoverDir, "Fallback Radio", imageExtensions)
	if !found {
		logger.Warn("no fallback background template for genre cover")
		return Result{}, false
	}
	dest := filepath.Join(destDir, "cover.jpg")
	if err := r.Renderer.GenreCover(ctx, background, group, dest); err != nil {
		logger.Warn("genre cover generation failed", logging.Error(err))
		return Result{}, false
	}
	return Result{Source: SourceGenre, Path: dest}, true
}

// spotifyCover downloads the editorial "This is" playlist cover for artist
// playlists.
func (r *Resolver) spotifyCover(ctx context.Context, p assemble.Playlist, destDir string, logger *slog.Logger) (Result, bool) {
	if p.Type != assemble.TypeArtist || r.Spotify == nil {
		return Result{}, false
	}
	artist, ok := artistFromName(p.Name)
	if !ok {
		return Result{}, false
	}
	data, found, err := r.Spotify.ArtistCover(ctx, artist)
	if err != nil {
		logger.Warn("spotify cover lookup failed", logging.Error(err))
		return Result{}, false
	}
	if !found {
		return Result{}, false
	}
	dest := filepath.Join(destDir, "cover.jpg")
	if err := os.WriteFile(dest, data, 0o664); err != nil {
		logger.Warn("writing spotify cover failed", logging.Error(err))
		return Result{}, false
	}
	return Result{Source: SourceSpotify, Path: dest}, true
}

// artistFolderCover renders a "This is <artist>" overlay from the artist's
// own folder image, falling back to a plain copy when rendering fails.
func (r *Resolver) artistFolderCover(ctx context.Context, p assemble.Playlist, destDir string, logger *slog.Logger) (Result, bool) {
	if p.Type != assemble.TypeArtist || r.Artists == nil {
		return Result{}, false
	}
	artist, ok := artistFromName(p.Name)
	if !ok {
		return Result{}, false
	}
	dir, found := r.Artists.Find(ctx, artist)
	if !found {
		return Result{}, false
	}
	src, ext, found := findCoverInDir(dir)
	if !found {
		return Result{}, false
	}
	if r.Renderer != nil {
		dest := filepath.Join(destDir, "cover.jpg")
		err := r.Renderer.ArtistOverlay(ctx, src, artist, dest)
		if err == nil {
			return Result{Source: SourceArtistFolder, Path: dest}, true
		}
		logger.Warn("artist overlay failed, copying source image", logging.Error(err))
	}
	return r.install(SourceArtistFolder, src, filepath.Join(destDir, "folder"+ext), logger)
}

func (r *Resolver) install(source Source, src, dest string, logger *slog.Logger) (Result, bool) {
	if err := fileutil.CopyFile(src, dest); err != nil {
		logger.Warn("copying cover art failed",
			slog.String("source_path", src),
			logging.Error(err))
		return Result{}, false
	}
	return Result{Source: source, Path: dest}, true
}

// fallbackPattern maps a playlist name onto its shared per-type cover name.
func fallbackPattern(name string) (string, bool) {
	switch {
	case strings.Contains(name, "Top Tracks -"):
		return "Top Tracks - all", true
	case strings.Contains(name, "Discovery Mix -"):
		return "Discovery Mix - all", true
	case strings.Contains(name, "Recent Favorites -"):
		return "Recent Favorites - all", true
	case strings.Contains(name, "Genre Mix -"):
		return "Genre Mix - all", true
	case strings.Contains(name, "This is"):
		return "This is - all", true
	case strings.Contains(name, "Radio"):
		return "Radio - all", true
	case strings.Contains(name, "Back to"):
		return "Back to - all", true
	}
	return "", false
}

func artistFromName(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, "This is ")
	if !ok {
		return "", false
	}
	artist := strings.TrimSpace(strings.ReplaceAll(rest, "!", ""))
	return artist, artist != ""
}

func findImage(dir, base string, exts []string) (path, ext string, found bool) {
	if dir == "" {
		return "", "", false
	}
	for _, e := range exts {
		candidate := filepath.Join(dir, base+e)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, e, true
		}
	}
	return "", "", false
}

// artistCoverNames is the search order inside an artist's folder.
var artistCoverNames = []string{"folder", "cover", "artist", "thumb"}

func findCoverInDir(dir string) (path, ext string, found bool) {
	for _, name := range artistCoverNames {
		if p, e, ok := findImage(dir, name, imageExtensions); ok {
			return p, e, ok
		}
	}
	return "", "", false
}
