package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			bind := strings.TrimSpace(cfg.Paths.APIBind)
			if bind == "" {
				return fmt.Errorf("no api_bind configured; the status command talks to a running daemon")
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, "http://"+bind+"/api/status", nil)
			if err != nil {
				return err
			}
			if token := strings.TrimSpace(cfg.Paths.APIToken); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}

			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("daemon unreachable at %s: %w", bind, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("daemon returned %d", resp.StatusCode)
			}

			var status struct {
				Running      bool   `json:"running"`
				PassActive   bool   `json:"pass_active"`
				ScheduleMode string `json:"schedule_mode"`
				NextRun      string `json:"next_run"`
				LastPass     *struct {
					Status        string `json:"status"`
					StartedAt     string `json:"started_at"`
					PlaylistCount int    `json:"playlist_count"`
					TrackCount    int    `json:"track_count"`
				} `json:"last_pass"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
				return fmt.Errorf("decode status: %w", err)
			}

			rows := [][]string{
				{"Running", yesNo(status.Running)},
				{"Pass active", yesNo(status.PassActive)},
				{"Schedule", status.ScheduleMode},
			}
			if status.NextRun != "" {
				rows = append(rows, []string{"Next run", status.NextRun})
			}
			if status.LastPass != nil {
				rows = append(rows,
					[]string{"Last pass", fmt.Sprintf("%s at %s", status.LastPass.Status, status.LastPass.StartedAt)},
					[]string{"Last pass playlists", fmt.Sprintf("%d (%d tracks)", status.LastPass.PlaylistCount, status.LastPass.TrackCount)},
				)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
