package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/ingestsim/internal/harness"
)

// ScenarioEntry is one catalog entry in JSON output.
type ScenarioEntry struct {
	Ordinal  int    `json:"ordinal"`
	Name     string `json:"name"`
	Expected string `json:"expected"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the scenario catalog",
		Long: `List the scenarios in the catalog with the number that selects each one.

Example:
  ingestsim list
  ingestsim list --scenarios ./catalog.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			catalog, err := e.loadCatalog()
			if err != nil {
				return err
			}

			if !e.out.JSON() {
				harness.PrintListing(e.out.Writer, catalog)
				return nil
			}

			entries := make([]ScenarioEntry, 0, catalog.Len())
			for i, s := range catalog.Scenarios() {
				entries = append(entries, ScenarioEntry{Ordinal: i, Name: s.Name(), Expected: s.ExpectedResult()})
			}
			return e.out.Success(entries)
		},
	}
}
