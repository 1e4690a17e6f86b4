package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"jellyjams/internal/assemble"
	"jellyjams/internal/catalog"
	"jellyjams/internal/history"
)

func newCoversCommand(ctx *commandContext) *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "covers [playlist]",
		Short: "Re-resolve cover art for the latest pass",
		Long: "Walks the playlists recorded by the most recent generation pass and " +
			"resolves cover art for each one again, picking up artwork dropped into " +
			"the cover directory since the pass ran. An optional playlist name or " +
			"--type filter narrows the set.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			stack, err := buildStack(cfg)
			if err != nil {
				return err
			}
			defer stack.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			latest, err := stack.store.LatestPass(runCtx)
			if err != nil {
				return err
			}
			if latest == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No passes recorded yet; run generate first.")
				return nil
			}
			records, err := stack.store.PlaylistsForPass(runCtx, latest.ID)
			if err != nil {
				return err
			}

			var nameFilter string
			if len(args) == 1 {
				nameFilter = strings.TrimSpace(args[0])
			}
			records = filterRecords(records, nameFilter, typeFilter)
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No playlists match the given filters.")
				return nil
			}

			resolver := stack.covers
			out := cmd.OutOrStdout()
			for _, rec := range records {
				p := playlistFromRecord(rec)
				destDir := filepath.Join(cfg.Paths.CoverDir, p.DirName())
				if err := os.MkdirAll(destDir, 0o755); err != nil {
					fmt.Fprintf(out, "%-40s error: %v\n", p.Name, err)
					continue
				}
				result, err := resolver.Resolve(runCtx, p, destDir)
				if err != nil {
					fmt.Fprintf(out, "%-40s error: %v\n", p.Name, err)
					continue
				}
				fmt.Fprintf(out, "%-40s %s\n", p.Name, result.Source)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFilter, "type", "t", "", "Only playlists of this type (genre, decade, artist, personal)")
	return cmd
}

func filterRecords(records []*history.PlaylistRecord, name, playlistType string) []*history.PlaylistRecord {
	if name == "" && playlistType == "" {
		return records
	}
	out := make([]*history.PlaylistRecord, 0, len(records))
	for _, rec := range records {
		if name != "" && !strings.EqualFold(rec.Name, name) {
			continue
		}
		if playlistType != "" && !strings.EqualFold(rec.Type, playlistType) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func playlistFromRecord(rec *history.PlaylistRecord) assemble.Playlist {
	p := assemble.Playlist{
		Type:  assemble.Type(rec.Type),
		Name:  rec.Name,
		Owner: catalog.User{Name: rec.Owner},
	}
	if p.Type == assemble.TypePersonal {
		switch {
		case strings.HasPrefix(rec.Name, string(assemble.KindTopTracks)):
			p.Kind = assemble.KindTopTracks
		case strings.HasPrefix(rec.Name, string(assemble.KindDiscovery)):
			p.Kind = assemble.KindDiscovery
		case strings.HasPrefix(rec.Name, string(assemble.KindRecentFavorites)):
			p.Kind = assemble.KindRecentFavorites
		case strings.HasPrefix(rec.Name, string(assemble.KindGenreMix)):
			p.Kind = assemble.KindGenreMix
		}
	}
	return p
}
