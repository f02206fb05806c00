package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AchilleasB/pet-care/console-service/internal/config"
)

func sessionCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Restore the persisted session and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, ok := a.session.Restore(ctx); !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no session")
				return nil
			}

			// Per-pet checks need the directory caches; wait briefly for them.
			select {
			case <-a.session.CachesLoaded():
			case <-time.After(wait):
				logger.Warn().Dur("wait", wait).Msg("Directory caches not loaded yet")
			}

			out := struct {
				Session      any `json:"session"`
				Capabilities any `json:"capabilities"`
				Pets         int `json:"pets"`
			}{
				Session:      a.session.Snapshot(),
				Capabilities: a.policy.Capabilities(""),
				Pets:         len(a.session.Pets()),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 5*time.Second, "how long to wait for the directory caches")
	return cmd
}
