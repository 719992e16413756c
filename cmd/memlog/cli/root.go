package cli

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	dbPath     string
	driver     string
	verbose    bool
	jsonLogs   bool
}

// NewRootCmd builds the memlog command tree. Each call returns fresh flag
// state.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "memlog",
		Short: "Minimal memory and note logger",
		Long: `memlog keeps short notes, each with a topic and optional tags, in a local
database. Notes can be added and searched from the web UI, the terminal
browser or the command line.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML or JSON config file")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database file (overrides config)")
	flags.StringVar(&opts.driver, "driver", "", "Storage driver: sqlite or postgres (overrides config)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&opts.jsonLogs, "json-logs", false, "Write logs as JSON")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newAddCmd(opts),
		newListCmd(opts),
		newSearchCmd(opts),
		newBrowseCmd(opts),
		newConfigCmd(opts),
	)

	return rootCmd
}
