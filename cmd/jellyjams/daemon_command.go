package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jellyjams/internal/daemon"
	"jellyjams/internal/logging"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the scheduled generation daemon",
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

			if _, err := stack.store.ResetStuckPasses(cmd.Context()); err != nil {
				stack.logger.Warn("could not reset interrupted passes", logging.Error(err))
			}

			if err := stack.checkConnection(cmd.Context()); err != nil {
				stack.logger.Warn("jellyfin unreachable at startup; scheduled passes will retry", logging.Error(err))
			}

			d, err := daemon.New(cfg, stack.generator, stack.store, stack.logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				return err
			}
			defer d.Stop()

			<-runCtx.Done()
			return nil
		},
	}
}
