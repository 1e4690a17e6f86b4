package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"jellyjams/internal/history"
)

func newPassesCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "passes",
		Short: "List recent generation passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			passes, err := store.RecentPasses(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(passes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No passes recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(passes))
			for _, pass := range passes {
				finished := "-"
				if !pass.FinishedAt.IsZero() {
					finished = pass.Duration().Round(time.Second).String()
				}
				detail := ""
				if pass.ErrorMessage != "" {
					detail = pass.ErrorMessage
				}
				rows = append(rows, []string{
					pass.ID,
					string(pass.Status),
					pass.StartedAt.Local().Format("2006-01-02 15:04:05"),
					finished,
					strconv.Itoa(pass.PlaylistCount),
					strconv.Itoa(pass.TrackCount),
					detail,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Status", "Started", "Duration", "Playlists", "Tracks", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of passes to list")
	return cmd
}
