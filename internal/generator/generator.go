package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"jellyjams/internal/assemble"
	"jellyjams/internal/catalog"
	"jellyjams/internal/classify"
	"jellyjams/internal/config"
	"jellyjams/internal/coverart"
	"jellyjams/internal/diversity"
	"jellyjams/internal/genre"
	"jellyjams/internal/history"
	"jellyjams/internal/logging"
	"jellyjams/internal/notifications"
	"jellyjams/internal/services"
	"jellyjams/internal/services/jellyfin"
)

// MediaServer is the catalog and playlist surface the generator depends on.
type MediaServer interface {
	AudioItems(ctx context.Context) ([]catalog.Track, error)
	Users(ctx context.Context) ([]catalog.User, error)
	ListeningStats(ctx context.Context, userID string, limit int) ([]jellyfin.PlayStat, error)
	FavoriteTracks(ctx context.Context, userID string) ([]catalog.Track, error)
	RecentlyPlayed(ctx context.Context, userID string, limit int) ([]catalog.Track, error)
	CreatePlaylist(ctx context.Context, req jellyfin.CreatePlaylistRequest) (string, error)
	FindPlaylist(ctx context.Context, userID, name string) (string, bool, error)
	DeleteItem(ctx context.Context, itemID string) error
	RefreshLibrary(ctx context.Context) error
}

// CoverResolver picks or renders cover art for one playlist directory.
type CoverResolver interface {
	Resolve(ctx context.Context, p assemble.Playlist, destDir string) (coverart.Result, error)
}

// HistoryRecorder persists pass and playlist outcomes.
type HistoryRecorder interface {
	BeginPass(ctx context.Context) (*history.Pass, error)
	CompletePass(ctx context.Context, passID string, playlistCount, trackCount int) error
	FailPass(ctx context.Context, passID string, playlistCount, trackCount int, message string) error
	RecordPlaylist(ctx context.Context, rec *history.PlaylistRecord) error
}

// Summary reports what one pass produced.
type Summary struct {
	PassID        string
	StartedAt     time.Time
	FinishedAt    time.Time
	PlaylistCount int
	TrackCount    int
	Skipped       []string
}

// Duration returns the elapsed pass time.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Generator runs generation passes against a media server.
type Generator struct {
	cfg      *config.Config
	server   MediaServer
	snapshot *catalog.SnapshotCache
	mapper   *genre.Mapper
	covers   CoverResolver
	history  HistoryRecorder
	notifier notifications.Service
	logger   *slog.Logger
	rand     *rand.Rand
}

// Option customizes a Generator.
type Option func(*Generator)

// WithSnapshot overrides the library snapshot cache.
func WithSnapshot(cache *catalog.SnapshotCache) Option {
	return func(g *Generator) { g.snapshot = cache }
}

// WithMapper overrides the genre group mapper.
func WithMapper(m *genre.Mapper) Option {
	return func(g *Generator) { g.mapper = m }
}

// WithCovers wires a cover art resolver.
func WithCovers(r CoverResolver) Option {
	return func(g *Generator) { g.covers = r }
}

// WithHistory wires a pass history recorder.
func WithHistory(h HistoryRecorder) Option {
	return func(g *Generator) { g.history = h }
}

// WithNotifier wires a notification service.
func WithNotifier(n notifications.Service) Option {
	return func(g *Generator) { g.notifier = n }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithRand fixes the random source, primarily for tests.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rand = r }
}

// New builds a Generator for the given configuration and media server.
func New(cfg *config.Config, server MediaServer, opts ...Option) (*Generator, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrValidation, "generator", "new", "configuration is required", nil)
	}
	if server == nil {
		return nil, services.Wrap(services.ErrValidation, "generator", "new", "media server is required", nil)
	}

	g := &Generator{
		cfg:    cfg,
		server: server,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.snapshot == nil {
		g.snapshot = catalog.NewSnapshotCache(server.AudioItems, catalog.DefaultSnapshotTTL)
	}
	if g.mapper == nil {
		g.mapper = genre.NewMapper(cfg.Genres.GroupingEnabled)
	}
	if g.notifier == nil {
		g.notifier = notifications.NewService(cfg)
	}
	return g, nil
}

// Run executes one generation pass. The trigger label ("manual", "scheduled",
// "startup", "api") only decorates logs and notifications.
func (g *Generator) Run(ctx context.Context, trigger string) (*Summary, error) {
	summary := &Summary{StartedAt: time.Now()}

	if g.history != nil {
		pass, err := g.history.BeginPass(ctx)
		if err != nil {
			g.logger.Warn("pass history unavailable", logging.Error(err))
		} else {
			summary.PassID = pass.ID
			ctx = services.WithPassID(ctx, pass.ID)
		}
	}

	logger := logging.WithContext(ctx, g.logger)
	logger.Info("generation pass started", logging.String("trigger", trigger))
	if err := g.notifier.NotifyPassStarted(ctx, trigger); err != nil {
		logger.Warn("start notification failed", logging.Error(err))
	}

	snap, err := g.snapshot.Get(ctx)
	if err != nil {
		return summary, g.fail(ctx, summary, "library fetch", err)
	}
	library := snap.Tracks
	logger.Info("library snapshot ready",
		logging.Int("tracks", len(library)),
		logging.String("fetched_at", snap.FetchedAt.Format(time.RFC3339)))

	var users []catalog.User
	if users, err = g.server.Users(ctx); err != nil {
		logger.Warn("user listing failed", logging.Error(err))
		users = nil
	}

	opts := classify.Options{
		Mapper:          g.mapper,
		ExcludedGenres:  g.cfg.Playlists.ExcludedGenres,
		ExcludedArtists: g.cfg.Playlists.ExcludedArtists,
	}
	policy := diversity.Policy{
		MinTracks:          g.cfg.Playlists.MinTracks,
		MinArtistDiversity: g.cfg.Playlists.MinArtistDiversity,
		MinAlbumsPerArtist: g.cfg.Playlists.MinAlbumsPerArtist,
		MinAlbumsPerDecade: g.cfg.Playlists.MinAlbumsPerDecade,
	}
	seq := assemble.Sequencer{
		MaxTracks: g.cfg.Playlists.MaxTracks,
		Shuffle:   g.cfg.Playlists.ShuffleTracks,
		Rand:      g.rand,
	}
	publicOwner := ""
	if len(users) > 0 {
		publicOwner = users[0].ID
	}

	if g.cfg.TypeEnabled("Genre") {
		kept, rejected := policy.FilterGenre(classify.ByGenre(library, opts))
		g.recordRejections(summary, logger, assemble.TypeGenre, rejected)
		for _, bucket := range kept {
			p := assemble.New(assemble.TypeGenre, assemble.GenreName(bucket.Key), seq.Sequence(bucket.Tracks))
			g.publish(ctx, summary, p, publicOwner)
		}
	}
	if g.cfg.TypeEnabled("Decade") {
		kept, rejected := policy.FilterDecade(classify.ByDecade(library, opts))
		g.recordRejections(summary, logger, assemble.TypeDecade, rejected)
		for _, bucket := range kept {
			p := assemble.New(assemble.TypeDecade, assemble.DecadeName(bucket.Key), seq.Sequence(bucket.Tracks))
			g.publish(ctx, summary, p, publicOwner)
		}
	}
	if g.cfg.TypeEnabled("Artist") {
		kept, rejected := policy.FilterArtist(classify.ByArtist(library, opts))
		g.recordRejections(summary, logger, assemble.TypeArtist, rejected)
		for _, bucket := range kept {
			p := assemble.New(assemble.TypeArtist, assemble.ArtistName(bucket.Key), seq.Sequence(bucket.Tracks))
			g.publish(ctx, summary, p, publicOwner)
		}
	}
	if g.cfg.TypeEnabled("Personal") {
		g.personalPass(ctx, summary, library, users, policy, seq)
	}

	if g.cfg.Playlists.TriggerLibraryScan {
		if err := g.server.RefreshLibrary(ctx); err != nil {
			logger.Warn("library refresh failed", logging.Error(err))
		}
	}

	summary.FinishedAt = time.Now()
	if g.history != nil && summary.PassID != "" {
		if err := g.history.CompletePass(ctx, summary.PassID, summary.PlaylistCount, summary.TrackCount); err != nil {
			logger.Warn("pass completion not recorded", logging.Error(err))
		}
	}
	if err := g.notifier.NotifyPassCompleted(ctx, summary.PlaylistCount, summary.TrackCount, summary.Duration()); err != nil {
		logger.Warn("completion notification failed", logging.Error(err))
	}
	logger.Info("generation pass complete",
		logging.Int("playlists", summary.PlaylistCount),
		logging.Int("tracks", summary.TrackCount),
		logging.Int("skipped", len(summary.Skipped)),
		logging.Duration("duration", summary.Duration()))
	return summary, nil
}

// Invalidate drops the cached library snapshot so the next pass refetches.
func (g *Generator) Invalidate() {
	g.snapshot.Invalidate()
}

func (g *Generator) fail(ctx context.Context, summary *Summary, label string, err error) error {
	summary.FinishedAt = time.Now()
	logger := logging.WithContext(ctx, g.logger)
	logger.Error("generation pass failed", logging.String("step", label), logging.Error(err))
	if g.history != nil && summary.PassID != "" {
		if herr := g.history.FailPass(ctx, summary.PassID, summary.PlaylistCount, summary.TrackCount, err.Error()); herr != nil {
			logger.Warn("pass failure not recorded", logging.Error(herr))
		}
	}
	if nerr := g.notifier.NotifyPassFailed(ctx, err, label); nerr != nil {
		logger.Warn("failure notification failed", logging.Error(nerr))
	}
	return err
}

func (g *Generator) recordRejections(summary *Summary, logger *slog.Logger, t assemble.Type, rejected []diversity.Rejection) {
	for _, r := range rejected {
		summary.Skipped = append(summary.Skipped, fmt.Sprintf("%s: %s", t, r))
		logger.Debug("bucket below diversity policy",
			logging.String("type", string(t)),
			logging.String("bucket", r.Key),
			logging.String("reason", string(r.Reason)),
			logging.Int("have", r.Have),
			logging.Int("want", r.Want))
	}
}

// publish replaces any prior playlist of the same name, creates the new one,
// resolves its cover, and records the result. Failures skip the playlist but
// never abort the pass.
func (g *Generator) publish(ctx context.Context, summary *Summary, p assemble.Playlist, ownerID string) {
	ctx = services.WithPlaylist(ctx, p.Name)
	logger := logging.WithContext(ctx, g.logger)

	if len(p.Tracks) == 0 {
		summary.Skipped = append(summary.Skipped, fmt.Sprintf("%s: %s has no tracks", p.Type, p.Name))
		logger.Debug("empty playlist skipped")
		return
	}

	if id, found, err := g.server.FindPlaylist(ctx, ownerID, p.Name); err != nil {
		logger.Warn("existing playlist lookup failed", logging.Error(err))
	} else if found {
		if err := g.server.DeleteItem(ctx, id); err != nil {
			logger.Warn("stale playlist not deleted", logging.Error(err))
		}
	}

	remoteID, err := g.server.CreatePlaylist(ctx, jellyfin.CreatePlaylistRequest{
		Name:     p.Name,
		TrackIDs: p.TrackIDs(),
		UserID:   ownerID,
		Public:   p.Public(),
	})
	if err != nil {
		summary.Skipped = append(summary.Skipped, fmt.Sprintf("%s: %s not created", p.Type, p.Name))
		logger.Error("playlist creation failed", logging.Error(err))
		return
	}

	coverSource := g.resolveCover(ctx, p, logger)

	summary.PlaylistCount++
	summary.TrackCount += len(p.Tracks)
	if g.history != nil && summary.PassID != "" {
		rec := &history.PlaylistRecord{
			PassID:      summary.PassID,
			RemoteID:    remoteID,
			Name:        p.Name,
			Type:        string(p.Type),
			Owner:       p.Owner.Name,
			TrackCount:  len(p.Tracks),
			CoverSource: coverSource,
		}
		if err := g.history.RecordPlaylist(ctx, rec); err != nil {
			logger.Warn("playlist not recorded", logging.Error(err))
		}
	}
	logger.Info("playlist created",
		logging.String("type", string(p.Type)),
		logging.Int("tracks", len(p.Tracks)),
		logging.String("cover", coverSource))
}

func (g *Generator) resolveCover(ctx context.Context, p assemble.Playlist, logger *slog.Logger) string {
	if g.covers == nil {
		return ""
	}
	destDir := filepath.Join(g.cfg.Paths.CoverDir, p.DirName())
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		logger.Warn("cover directory not created", logging.Error(err))
		return string(coverart.SourceNone)
	}
	result, err := g.covers.Resolve(ctx, p, destDir)
	if err != nil {
		logger.Warn("cover resolution failed", logging.Error(err))
		return string(coverart.SourceNone)
	}
	return string(result.Source)
}
