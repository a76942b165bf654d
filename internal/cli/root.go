package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// ConfigPath is the configuration file. Empty reads config.DefaultPath
	// if it exists.
	ConfigPath string

	// Overrides for the configuration file.
	DataDir   string
	IngestDir string
	Journal   string
	Scenarios string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ingestsim CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ingestsim",
		Short: "ingestsim - broadcast ingest regression harness",
		Long: `Deliver broadcast messages into a scheduler's ingest directory and walk an
operator through regression scenarios.

Message headers can be rewritten so their creation, effective and expiration
times are relative to the moment of delivery.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigPath, "config", "", "configuration file")
	flags.StringVar(&opts.DataDir, "data-dir", "", "scenario data directory")
	flags.StringVar(&opts.IngestDir, "ingest-dir", "", "ingest directory messages are delivered to")
	flags.StringVar(&opts.Journal, "journal", "", "SQLite journal path (empty disables the journal)")
	flags.StringVar(&opts.Scenarios, "scenarios", "", "scenario catalog file (default: built-in catalog)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDeliverCommand(opts))
	cmd.AddCommand(NewHeaderCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
