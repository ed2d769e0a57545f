package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	var validateOnly bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Config resolves the configuration exactly as "run" would and prints it as JSON.
With --validate it only reports whether the configuration is valid.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if validateOnly {
				fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
				return nil
			}
			data, err := cfg.ToJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&validateOnly, "validate", false, "only validate the configuration")
	return cmd
}
