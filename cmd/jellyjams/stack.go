package main

import (
	"context"
	"fmt"
	"log/slog"

	"jellyjams/internal/catalog"
	"jellyjams/internal/config"
	"jellyjams/internal/coverart"
	"jellyjams/internal/coverart/render"
	"jellyjams/internal/generator"
	"jellyjams/internal/genre"
	"jellyjams/internal/history"
	"jellyjams/internal/logging"
	"jellyjams/internal/notifications"
	"jellyjams/internal/services/jellyfin"
	"jellyjams/internal/services/spotify"
)

// stack wires the full generation dependency graph for the CLI commands.
type stack struct {
	cfg       *config.Config
	logger    *slog.Logger
	client    *jellyfin.Client
	store     *history.Store
	generator *generator.Generator
	notifier  notifications.Service
	covers    *coverart.Resolver
}

// checkConnection verifies the media server is reachable before any pass work
// starts, so credential and URL mistakes surface immediately.
func (s *stack) checkConnection(ctx context.Context) error {
	info, err := s.client.SystemInfo(ctx)
	if err != nil {
		return fmt.Errorf("jellyfin connection check: %w", err)
	}
	s.logger.Info("connected to jellyfin",
		logging.String("server", info.ServerName),
		logging.String("version", info.Version))
	return nil
}

func buildStack(cfg *config.Config) (*stack, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}

	client, err := jellyfin.New(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey)
	if err != nil {
		return nil, err
	}

	var mapper *genre.Mapper
	if cfg.Genres.MappingFile != "" {
		mapper, err = genre.LoadMapper(cfg.Genres.MappingFile, cfg.Genres.GroupingEnabled)
		if err != nil {
			return nil, err
		}
	} else {
		mapper = genre.NewMapper(cfg.Genres.GroupingEnabled)
	}

	store, err := history.Open(cfg)
	if err != nil {
		return nil, err
	}

	snapshot := catalog.NewSnapshotCache(client.AudioItems, catalog.DefaultSnapshotTTL)
	fetch := func(ctx context.Context) ([]catalog.Track, error) {
		snap, err := snapshot.Get(ctx)
		if err != nil {
			return nil, err
		}
		return snap.Tracks, nil
	}

	resolver := &coverart.Resolver{
		CoverDir: cfg.Paths.CoverDir,
		Renderer: render.New(render.Options{}),
		Artists:  coverart.NewArtistPathCache(fetch),
		Logger:   logger,
	}
	if cfg.Spotify.Enabled && cfg.Spotify.ClientID != "" && cfg.Spotify.ClientSecret != "" {
		sp, err := spotify.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		resolver.Spotify = sp
	}

	notifier := notifications.NewService(cfg)
	gen, err := generator.New(cfg, client,
		generator.WithSnapshot(snapshot),
		generator.WithMapper(mapper),
		generator.WithCovers(resolver),
		generator.WithHistory(store),
		generator.WithNotifier(notifier),
		generator.WithLogger(logger),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &stack{
		cfg:       cfg,
		logger:    logger,
		client:    client,
		store:     store,
		generator: gen,
		notifier:  notifier,
		covers:    resolver,
	}, nil
}

func (s *stack) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}
