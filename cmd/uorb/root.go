package main

import (
	"github.com/spf13/cobra"
)

// globalFlags 所有子命令共享的参数
type globalFlags struct {
	configFile string
	envFile    string
	logLevel   string
	logFormat  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "uorb",
		Short: "uORB topic bus toolkit",
		Long: `uorb runs and inspects a topic-based publish/subscribe data bus.

Configuration is resolved in this order (later wins):
  1. built-in defaults
  2. JSON config file (--config)
  3. UORB_* environment variables (a .env file is loaded first when present)
  4. command line flags

Available commands:
  run      Run simulated publishers and subscribers, optionally serving metrics
  top      Run a short simulated load and print per-topic status
  config   Print the effective configuration
  version  Print version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configFile, "config", "c", "", "JSON config file")
	pf.StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before reading UORB_* variables")
	pf.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&g.logFormat, "log-format", "", "log format (text, json)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log dependency injection events")

	root.AddCommand(
		newRunCmd(g),
		newTopCmd(g),
		newConfigCmd(g),
		newVersionCmd(),
	)
	return root
}
