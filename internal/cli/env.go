package cli

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ingestsim/internal/config"
	"github.com/roach88/ingestsim/internal/logging"
	"github.com/roach88/ingestsim/internal/scenario"
	"github.com/roach88/ingestsim/internal/store"
)

// env is the resolved configuration shared by the subcommands.
type env struct {
	cfg    config.Config
	out    *OutputFormatter
	logger *slog.Logger
	closer io.Closer
}

// newEnv loads the configuration, applies flag overrides and sets up
// logging. Failures are reported through the formatter.
func newEnv(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, "failed to load configuration", err)
	}

	logger, closer, err := logging.Setup(cmd.ErrOrStderr(), cfg.Logs, opts.Verbose)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, "failed to set up logging", err)
	}
	slog.SetDefault(logger)

	return &env{cfg: cfg, out: out, logger: logger, closer: closer}, nil
}

func (e *env) Close() {
	if err := e.closer.Close(); err != nil {
		e.logger.Error("error closing log file", "error", err)
	}
}

// loadConfig reads the configuration file and applies flag overrides.
// A missing default file is not an error; a missing --config file is.
func (o *RootOptions) loadConfig() (config.Config, error) {
	path := o.ConfigPath
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
		cfg = config.Default()
	}

	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.IngestDir != "" {
		cfg.IngestDir = o.IngestDir
	}
	if o.Journal != "" {
		cfg.Journal = o.Journal
	}
	if o.Scenarios != "" {
		cfg.Scenarios = o.Scenarios
	}
	return cfg, cfg.Validate()
}

// loadCatalog returns the configured catalog or the built-in one.
func (e *env) loadCatalog() (*scenario.Catalog, error) {
	if e.cfg.Scenarios == "" {
		return scenario.Builtin(), nil
	}
	catalog, err := scenario.LoadCatalog(e.cfg.Scenarios)
	if err != nil {
		return nil, e.out.Fail(ExitCommandError, ErrCodeCatalog, "failed to load scenario catalog", err)
	}
	e.logger.Debug("scenario catalog loaded", "path", e.cfg.Scenarios, "scenarios", catalog.Len())
	return catalog, nil
}

// openJournal opens the configured journal. It returns nil when the journal
// is disabled.
func (e *env) openJournal() (*store.Store, error) {
	if e.cfg.Journal == "" {
		return nil, nil
	}
	st, err := store.Open(e.cfg.Journal)
	if err != nil {
		return nil, e.out.Fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err)
	}
	e.logger.Debug("journal ready", "path", e.cfg.Journal)
	return st, nil
}

// requireDir reports a missing directory as a command error.
func (e *env) requireDir(what, dir string) error {
	info, err := os.Stat(dir)
	if err == nil && !info.IsDir() {
		err = errors.New("not a directory")
	}
	if err != nil {
		return e.out.Fail(ExitCommandError, ErrCodeNotFound, what+" not found: "+dir, err)
	}
	return nil
}
