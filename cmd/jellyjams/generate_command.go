package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Run one playlist generation pass",
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

			if err := stack.checkConnection(runCtx); err != nil {
				return err
			}

			summary, err := stack.generator.Run(runCtx, "manual")
			if err != nil {
				return fmt.Errorf("generation pass: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Playlists", "Tracks", "Skipped", "Duration"},
				[][]string{{
					strconv.Itoa(summary.PlaylistCount),
					strconv.Itoa(summary.TrackCount),
					strconv.Itoa(len(summary.Skipped)),
					summary.Duration().Round(time.Second).String(),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
			))
			for _, reason := range summary.Skipped {
				fmt.Fprintf(out, "skipped: %s\n", reason)
			}
			return nil
		},
	}
}
