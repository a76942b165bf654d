package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ingestsim/internal/deliver"
	"github.com/roach88/ingestsim/internal/harness"
	"github.com/roach88/ingestsim/internal/scenario"
)

// DataDirPrompt asks for the data directory when the configured one is missing.
const DataDirPrompt = "Enter the location of the directory containing the scenario data: "

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	// IDs overrides the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs harness.IDGenerator
}

// RunSummary is the JSON result of a non-interactive run.
type RunSummary struct {
	Executions []*harness.Execution `json:"executions"`
	Passed     int                  `json:"passed"`
	Failed     int                  `json:"failed"`
	Aborted    int                  `json:"aborted"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run regression scenarios",
		Long: `Run regression scenarios against the ingest directory.

Without arguments the catalog is listed and the operator is prompted for
scenarios by name or number until \q is entered. ALL runs every scenario in
order and exits.

With arguments each named scenario runs in turn; ALL runs the whole catalog.
Checkpoints and the final verdict are still asked on the terminal.

Example:
  ingestsim run
  ingestsim run InterruptScenario 12
  ingestsim run ALL --journal ./ingestsim.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	return cmd
}

func runScenarios(opts *RunOptions, tokens []string, cmd *cobra.Command) error {
	e, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	catalog, err := e.loadCatalog()
	if err != nil {
		return err
	}

	prompts := cmd.OutOrStdout()
	if e.out.JSON() {
		// Keep prompts out of the JSON document.
		prompts = cmd.ErrOrStderr()
	}
	terminal := harness.NewTerminal(cmd.InOrStdin(), prompts)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	dataDir, err := resolveDataDir(ctx, e, terminal)
	if err != nil {
		return err
	}
	fmt.Fprintf(prompts, "Using Data Directory: %s\n", dataDir)

	if path, created, err := scenario.EnsureLargeFile(dataDir, e.cfg.LargeFileSize); err != nil {
		e.logger.Warn("large message not prepared", "error", err)
	} else if created {
		e.logger.Info("created large message", "path", path, "bytes", e.cfg.LargeFileSize)
	}

	if err := e.requireDir("ingest directory", e.cfg.IngestDir); err != nil {
		return err
	}

	journal, err := e.openJournal()
	if err != nil {
		return err
	}
	cfg := harness.Config{
		Catalog:   catalog,
		Confirm:   terminal,
		DataDir:   dataDir,
		IngestDir: e.cfg.IngestDir,
		Simulator: deliver.NewSimulator(deliver.NewCounter(), e.logger),
		IDs:       opts.IDs,
		Out:       prompts,
		Logger:    e.logger,
	}
	if journal != nil {
		defer journal.Close()
		cfg.Journal = journal
	}

	d, err := harness.New(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create dispatcher", err)
	}

	if len(tokens) == 0 {
		harness.PrintListing(prompts, catalog)
		err := d.Loop(ctx, terminal)
		if errors.Is(err, harness.ErrInputClosed) {
			fmt.Fprintln(prompts, "\nExiting ...")
			return nil
		}
		if err != nil {
			return WrapExitError(ExitFailure, "scenario loop ended", err)
		}
		return nil
	}

	return runTokens(ctx, e, d, tokens)
}

// resolveDataDir returns the configured data directory, asking the operator
// for another one when it does not exist.
func resolveDataDir(ctx context.Context, e *env, sel harness.Selector) (string, error) {
	dir := e.cfg.DataDir
	if scenario.CheckDataDir(dir) == nil {
		return dir, nil
	}

	answer, err := sel.Select(ctx, DataDirPrompt)
	if err != nil {
		return "", e.out.Fail(ExitCommandError, ErrCodeNotFound, "no data directory", err)
	}
	if err := scenario.CheckDataDir(answer); err != nil {
		return "", e.out.Fail(ExitCommandError, ErrCodeNotFound, "data directory not found: "+answer, err)
	}
	return answer, nil
}

// runTokens runs each token in order and reports a summary.
func runTokens(ctx context.Context, e *env, d *harness.Dispatcher, tokens []string) error {
	summary := RunSummary{Executions: []*harness.Execution{}}

	for _, token := range tokens {
		var execs []*harness.Execution
		var err error

		if scenario.Normalize(token) == scenario.AllToken {
			execs, err = d.RunAll(ctx)
		} else {
			var exec *harness.Execution
			exec, err = d.Run(ctx, token)
			if exec != nil {
				execs = append(execs, exec)
			}
			if errors.Is(err, scenario.ErrNotFound) {
				return e.out.Fail(ExitCommandError, ErrCodeNotFound, "No scenario exists with name: "+token, err)
			}
			if harness.IsScenarioError(err) {
				err = nil
			}
		}

		summary.Executions = append(summary.Executions, execs...)
		if err != nil {
			return WrapExitError(ExitFailure, "scenario run interrupted", err)
		}
	}

	for _, exec := range summary.Executions {
		switch {
		case exec.State == harness.Aborted:
			summary.Aborted++
		case exec.Verdict == harness.VerdictPass:
			summary.Passed++
		default:
			summary.Failed++
		}
	}

	if e.out.JSON() {
		if err := e.out.Success(summary); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(e.out.Writer, "\n%d passed, %d failed, %d aborted\n", summary.Passed, summary.Failed, summary.Aborted)
	}

	if summary.Failed > 0 || summary.Aborted > 0 {
		return NewExitError(ExitFailure, "one or more scenarios did not pass")
	}
	return nil
}
