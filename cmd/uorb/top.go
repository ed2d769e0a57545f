package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newTopCmd(g *globalFlags) *cobra.Command {
	var (
		df       demoFlags
		duration time.Duration
		format   string
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print per-topic status after a short simulated load",
		Long: `Top runs the simulated load for a short time and prints one line per topic
instance: queue depth, generation, subscribers, callbacks and buffer size.

Output formats:
  table - Human-readable table format (default)
  json  - Machine-readable JSON format`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported output format %q, use table or json", format)
			}
			cfg, cleanup, err := prepare(cmd, g)
			if err != nil {
				return err
			}
			defer cleanup()

			la := buildApp(cfg, df.config(), g.verbose)
			if err := la.app.Err(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), duration+10*time.Second)
			defer cancel()

			if err := la.app.Start(ctx); err != nil {
				return err
			}
			time.Sleep(duration)
			snap := la.bus.Snapshot()
			if err := la.app.Stop(ctx); err != nil {
				return err
			}
			return printSnapshot(cmd.OutOrStdout(), snap, format)
		},
	}

	df.register(cmd)
	cmd.Flags().DurationVarP(&duration, "duration", "d", time.Second, "how long to run the simulated load")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table, json)")
	return cmd
}
