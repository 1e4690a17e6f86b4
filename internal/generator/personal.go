package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"jellyjams/internal/assemble"
	"jellyjams/internal/catalog"
	"jellyjams/internal/classify"
	"jellyjams/internal/diversity"
	"jellyjams/internal/logging"
	"jellyjams/internal/services"
)

const (
	// discoveryRecentLimit bounds the recently played seed for discovery.
	discoveryRecentLimit = 20
	// recentFavoritesLimit is the play history window for personal mixes.
	recentFavoritesLimit = 30
	// genreMixTopGenres is how many listening genres feed the genre mix.
	genreMixTopGenres = 3
	// discoveryPoolFactor oversizes the similarity pool before capping.
	discoveryPoolFactor = 3
)

func (g *Generator) personalPass(ctx context.Context, summary *Summary, library []catalog.Track, users []catalog.User, policy diversity.Policy, seq assemble.Sequencer) {
	selected := selectUsers(users, g.cfg.Personal.Users)
	if len(selected) == 0 {
		logging.WithContext(ctx, g.logger).Warn("no users match personal playlist selection",
			logging.String("selection", g.cfg.Personal.Users))
		return
	}

	index := indexByID(library)
	for _, user := range selected {
		uctx := services.WithUser(ctx, user.Name)
		g.personalForUser(uctx, summary, library, index, user, policy, seq)
	}
}

func (g *Generator) personalForUser(ctx context.Context, summary *Summary, library []catalog.Track, index map[string]catalog.Track, user catalog.User, policy diversity.Policy, seq assemble.Sequencer) {
	logger := logging.WithContext(ctx, g.logger)

	favorites, err := g.server.FavoriteTracks(ctx, user.ID)
	if err != nil {
		logger.Warn("favorite listing failed", logging.Error(err))
	}
	recents, err := g.server.RecentlyPlayed(ctx, user.ID, recentFavoritesLimit)
	if err != nil {
		logger.Warn("play history listing failed", logging.Error(err))
	}

	g.publishPersonal(ctx, summary, user, policy,
		assemble.KindTopTracks, seq.Sequence(g.topTracks(ctx, user, index, favorites, recents, logger)))
	g.publishPersonal(ctx, summary, user, policy,
		assemble.KindDiscovery, seq.Ranked(g.discovery(library, favorites, recents)))
	g.publishPersonal(ctx, summary, user, policy,
		assemble.KindRecentFavorites, seq.Sequence(recents))
	g.publishPersonal(ctx, summary, user, policy,
		assemble.KindGenreMix, seq.Sequence(g.genreMix(library, favorites, recents)))
}

func (g *Generator) publishPersonal(ctx context.Context, summary *Summary, user catalog.User, policy diversity.Policy, kind assemble.PersonalKind, tracks []catalog.Track) {
	p := assemble.NewPersonal(kind, user, tracks)
	if !policy.MeetsMinTracks(tracks) {
		summary.Skipped = append(summary.Skipped, fmt.Sprintf("%s: %s below minimum", p.Type, p.Name))
		logging.WithContext(ctx, g.logger).Debug("personal playlist below minimum",
			logging.String("kind", string(kind)),
			logging.Int("tracks", len(tracks)))
		return
	}
	g.publish(ctx, summary, p, user.ID)
}

// topTracks prefers real play statistics, then favorites, then whatever was
// played recently.
func (g *Generator) topTracks(ctx context.Context, user catalog.User, index map[string]catalog.Track, favorites, recents []catalog.Track, logger *slog.Logger) []catalog.Track {
	stats, err := g.server.ListeningStats(ctx, user.ID, g.cfg.Playlists.MaxTracks)
	if err != nil {
		logger.Warn("listening stats unavailable", logging.Error(err))
	}
	tracks := make([]catalog.Track, 0, len(stats))
	for _, stat := range stats {
		if track, ok := index[stat.ItemID]; ok {
			tracks = append(tracks, track)
		}
	}
	if len(tracks) > 0 {
		return tracks
	}
	if len(favorites) > 0 {
		return favorites
	}
	return recents
}

// discovery scores the library against the user's taste profile and caps
// album and artist repetition so the pool stays varied.
func (g *Generator) discovery(library, favorites, recents []catalog.Track) []catalog.Track {
	seed := recents
	if len(seed) > discoveryRecentLimit {
		seed = seed[:discoveryRecentLimit]
	}
	refs := classify.MergeReferences(seed, favorites)
	if len(refs) == 0 {
		return nil
	}
	scored := classify.SimilarByGenre(refs, library, g.cfg.Playlists.MaxTracks*discoveryPoolFactor)
	caps := diversity.Caps{
		MaxSongsPerAlbum:  g.cfg.Personal.MaxSongsPerAlbum,
		MaxSongsPerArtist: g.cfg.Personal.MaxSongsPerArtist,
	}
	return caps.Apply(classify.Tracks(scored))
}

// genreMix samples fresh tracks from the user's top listening genres,
// excluding everything already in their reference set.
func (g *Generator) genreMix(library, favorites, recents []catalog.Track) []catalog.Track {
	refs := classify.MergeReferences(recents, favorites)
	if len(refs) == 0 {
		return nil
	}
	top := classify.TopGenres(refs, genreMixTopGenres)
	if len(top) == 0 {
		return nil
	}
	quota := g.cfg.Playlists.MaxTracks / genreMixTopGenres
	if quota <= 0 {
		return nil
	}

	refIDs := make(map[string]struct{}, len(refs))
	for _, t := range refs {
		refIDs[t.ID] = struct{}{}
	}

	var mix []catalog.Track
	for _, tag := range top {
		candidates := tracksWithGenre(library, tag, refIDs)
		mix = append(mix, g.sample(candidates, quota)...)
	}
	return mix
}

func tracksWithGenre(library []catalog.Track, tag string, exclude map[string]struct{}) []catalog.Track {
	var out []catalog.Track
	for _, t := range library {
		if _, skip := exclude[t.ID]; skip {
			continue
		}
		for _, g := range t.Genres {
			if strings.EqualFold(g, tag) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// sample picks up to n tracks at random.
func (g *Generator) sample(tracks []catalog.Track, n int) []catalog.Track {
	out := make([]catalog.Track, len(tracks))
	copy(out, tracks)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if g.rand != nil {
		g.rand.Shuffle(len(out), swap)
	} else {
		rand.Shuffle(len(out), swap)
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func indexByID(tracks []catalog.Track) map[string]catalog.Track {
	index := make(map[string]catalog.Track, len(tracks))
	for _, t := range tracks {
		index[t.ID] = t
	}
	return index
}

// selectUsers honors the "all" selector or a comma separated list of
// usernames, matched case-insensitively.
func selectUsers(users []catalog.User, selection string) []catalog.User {
	selection = strings.TrimSpace(selection)
	if selection == "" || strings.EqualFold(selection, "all") {
		return users
	}
	wanted := make(map[string]struct{})
	for _, name := range strings.Split(selection, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			wanted[name] = struct{}{}
		}
	}
	var selected []catalog.User
	for _, user := range users {
		if _, ok := wanted[strings.ToLower(user.Name)]; ok {
			selected = append(selected, user)
		}
	}
	return selected
}
