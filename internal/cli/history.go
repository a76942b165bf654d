package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ingestsim/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit    int
	RunID    string
	Arrivals bool
}

// RunDetail is the JSON result of history --run.
type RunDetail struct {
	store.RunSummary
	DeliveryLog []store.Delivery `json:"delivery_log"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled runs",
		Long: `Show scenario runs recorded in the journal, newest first.

--run shows the deliveries of one run. --arrivals shows what watch observed.

Example:
  ingestsim history --journal ./ingestsim.db
  ingestsim history --journal ./ingestsim.db --run 0190f3a2-7c1e-7b4d-9a55-0c8e2d7f1a10
  ingestsim history --journal ./ingestsim.db --arrivals --limit 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum entries to show (0 shows all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show the deliveries of one run")
	cmd.Flags().BoolVar(&opts.Arrivals, "arrivals", false, "show observed arrivals instead of runs")

	return cmd
}

func showHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	e, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if e.cfg.Journal == "" {
		return e.out.Fail(ExitCommandError, ErrCodeJournal, "no journal configured (use --journal)", nil)
	}
	st, err := e.openJournal()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case opts.RunID != "":
		return showRun(ctx, e, st, opts.RunID)
	case opts.Arrivals:
		return showArrivals(ctx, e, st, opts.Limit)
	default:
		return showRuns(ctx, e, st, opts.Limit)
	}
}

func showRuns(ctx context.Context, e *env, st *store.Store, limit int) error {
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return e.out.Fail(ExitFailure, ErrCodeJournal, "failed to read runs", err)
	}
	if e.out.JSON() {
		return e.out.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(e.out.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(e.out.Writer, "%s  %s  %-40s %d deliveries  %s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Scenario, r.Deliveries, verdictText(r.Verdict))
	}
	return nil
}

func showRun(ctx context.Context, e *env, st *store.Store, id string) error {
	run, ok, err := st.GetRun(ctx, id)
	if err != nil {
		return e.out.Fail(ExitFailure, ErrCodeJournal, "failed to read run", err)
	}
	if !ok {
		return e.out.Fail(ExitCommandError, ErrCodeNotFound, "no run with id: "+id, nil)
	}
	deliveries, err := st.ListDeliveries(ctx, id)
	if err != nil {
		return e.out.Fail(ExitFailure, ErrCodeJournal, "failed to read deliveries", err)
	}

	if e.out.JSON() {
		return e.out.Success(RunDetail{RunSummary: run, DeliveryLog: deliveries})
	}

	w := e.out.Writer
	fmt.Fprintf(w, "Run:        %s\n", run.ID)
	fmt.Fprintf(w, "Scenario:   %s\n", run.Scenario)
	fmt.Fprintf(w, "Started:    %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Data dir:   %s\n", run.DataDir)
	fmt.Fprintf(w, "Ingest dir: %s\n", run.IngestDir)
	fmt.Fprintf(w, "Verdict:    %s\n", verdictText(run.Verdict))
	for _, d := range deliveries {
		fmt.Fprintf(w, "  step %d: %s -> %s", d.Step, d.Source, d.Path)
		if d.UniqueID != nil {
			fmt.Fprintf(w, " id=%d", *d.UniqueID)
		}
		if d.Rewritten {
			fmt.Fprintf(w, " created=%s effective=%s expires=%s", d.Created, d.Effective, d.Expires)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func showArrivals(ctx context.Context, e *env, st *store.Store, limit int) error {
	arrivals, err := st.ListArrivals(ctx, limit)
	if err != nil {
		return e.out.Fail(ExitFailure, ErrCodeJournal, "failed to read arrivals", err)
	}
	if e.out.JSON() {
		return e.out.Success(arrivals)
	}

	if len(arrivals) == 0 {
		fmt.Fprintln(e.out.Writer, "No arrivals recorded.")
		return nil
	}
	for _, a := range arrivals {
		if a.Error != "" {
			fmt.Fprintf(e.out.Writer, "%s  %s %s: %s\n", a.ObservedAt.Format(time.RFC3339), a.Op, a.Path, a.Error)
			continue
		}
		fmt.Fprintf(e.out.Writer, "%s  %s %s class=%s designator=%s expires=%s\n",
			a.ObservedAt.Format(time.RFC3339), a.Op, a.Path, a.Class, a.Designator, a.Expires)
	}
	return nil
}

func verdictText(v *store.Verdict) string {
	if v == nil {
		return "no verdict"
	}
	if v.Detail != "" {
		return v.State + " (" + v.Detail + ")"
	}
	return v.State
}
