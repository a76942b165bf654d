package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/roach88/ingestsim/internal/clock"
	"github.com/roach88/ingestsim/internal/deliver"
	"github.com/roach88/ingestsim/internal/header"
	"github.com/roach88/ingestsim/internal/scenario"
	"github.com/roach88/ingestsim/internal/store"
)

// SelectPrompt is shown before every scenario selection.
const SelectPrompt = `Enter the name or number of the scenario you would like to run (use ALL to run all scenarios | use \q to quit): `

// FinalPrompt asks the operator for the verdict.
const FinalPrompt = "Did the scenario produce the expected result?"

// Config wires a Dispatcher. Catalog, Confirm, DataDir and IngestDir are
// required; the rest default.
type Config struct {
	Catalog   *scenario.Catalog
	Confirm   ConfirmationSource
	DataDir   string
	IngestDir string

	// Simulator defaults to a fresh simulator with its own counter.
	Simulator *deliver.Simulator

	// Journal defaults to discarding records.
	Journal Journal

	// Clock defaults to the system clock.
	Clock clock.Clock

	// IDs defaults to UUIDv7Generator.
	IDs IDGenerator

	// Out receives operator-facing text. Defaults to io.Discard.
	Out io.Writer

	// Logger defaults to discarding log output.
	Logger *slog.Logger
}

// Dispatcher runs scenarios from a catalog one at a time.
type Dispatcher struct {
	catalog   *scenario.Catalog
	confirm   ConfirmationSource
	dataDir   string
	ingestDir string
	sim       *deliver.Simulator
	journal   Journal
	clock     clock.Clock
	ids       IDGenerator
	out       io.Writer
	logger    *slog.Logger
}

// New validates cfg and builds a Dispatcher.
func New(cfg Config) (*Dispatcher, error) {
	switch {
	case cfg.Catalog == nil:
		return nil, errors.New("dispatcher: catalog is required")
	case cfg.Confirm == nil:
		return nil, errors.New("dispatcher: confirmation source is required")
	case cfg.DataDir == "":
		return nil, errors.New("dispatcher: data directory is required")
	case cfg.IngestDir == "":
		return nil, errors.New("dispatcher: ingest directory is required")
	}

	d := &Dispatcher{
		catalog:   cfg.Catalog,
		confirm:   cfg.Confirm,
		dataDir:   cfg.DataDir,
		ingestDir: cfg.IngestDir,
		sim:       cfg.Simulator,
		journal:   cfg.Journal,
		clock:     cfg.Clock,
		ids:       cfg.IDs,
		out:       cfg.Out,
		logger:    cfg.Logger,
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.sim == nil {
		d.sim = deliver.NewSimulator(nil, d.logger)
	}
	if d.journal == nil {
		d.journal = nopJournal{}
	}
	if d.clock == nil {
		d.clock = clock.System{}
	}
	if d.ids == nil {
		d.ids = UUIDv7Generator{}
	}
	if d.out == nil {
		d.out = io.Discard
	}
	return d, nil
}

// Catalog returns the dispatcher's catalog.
func (d *Dispatcher) Catalog() *scenario.Catalog {
	return d.catalog
}

// Run resolves token and executes the scenario it names.
//
// Unknown tokens return an error wrapping scenario.ErrNotFound. A hard error
// during execution returns the Execution (state Aborted) together with a
// *ScenarioError.
func (d *Dispatcher) Run(ctx context.Context, token string) (*Execution, error) {
	s, err := d.catalog.Resolve(token)
	if err != nil {
		return nil, err
	}
	return d.Execute(ctx, s)
}

// RunAll executes every scenario in registration order. A scenario aborted
// by a hard error is reported and the next one runs; any other error stops
// the sequence.
func (d *Dispatcher) RunAll(ctx context.Context) ([]*Execution, error) {
	var execs []*Execution
	for _, s := range d.catalog.Scenarios() {
		exec, err := d.Execute(ctx, s)
		if exec != nil {
			execs = append(execs, exec)
		}
		if err != nil && !IsScenarioError(err) {
			return execs, err
		}
	}
	return execs, nil
}

// Loop prompts for tokens until the operator quits or runs ALL.
//
// Unknown tokens print a message and re-prompt. Scenario hard errors are
// reported and control returns to the prompt. Input errors end the loop.
func (d *Dispatcher) Loop(ctx context.Context, sel Selector) error {
	for {
		token, err := sel.Select(ctx, SelectPrompt)
		if err != nil {
			return err
		}
		token = scenario.Normalize(token)

		switch token {
		case "":
			continue
		case scenario.QuitToken:
			fmt.Fprintln(d.out, "Exiting ...")
			return nil
		case scenario.AllToken:
			_, err := d.RunAll(ctx)
			return err
		}

		_, err = d.Run(ctx, token)
		switch {
		case err == nil:
		case errors.Is(err, scenario.ErrNotFound):
			fmt.Fprintf(d.out, "No scenario exists with name: %s\n", token)
		case IsScenarioError(err):
			// Already reported by Execute.
		default:
			return err
		}
	}
}

// Execute runs one scenario through its full lifecycle.
func (d *Dispatcher) Execute(ctx context.Context, s scenario.Scenario) (*Execution, error) {
	exec := &Execution{
		RunID:     d.ids.Generate(),
		Scenario:  s.Name(),
		State:     NotStarted,
		StoppedAt: -1,
		StartedAt: d.clock.Now(),
	}
	logger := d.logger.With("run_id", exec.RunID, "scenario", exec.Scenario)

	d.record(logger, d.journal.BeginRun(ctx, store.Run{
		ID:        exec.RunID,
		Scenario:  exec.Scenario,
		DataDir:   d.dataDir,
		IngestDir: d.ingestDir,
		StartedAt: exec.StartedAt,
	}))

	fmt.Fprintf(d.out, "\nRunning scenario: %s\n", exec.Scenario)
	logger.Info("scenario started")

	exec.State = Preparing
	steps, err := s.Prepare(d.dataDir)
	if err != nil {
		return exec, d.abort(ctx, logger, exec, -1, err)
	}

	for i, step := range steps {
		stop, err := d.runStep(ctx, logger, exec, i, step)
		if err != nil {
			return exec, err
		}
		if stop {
			exec.StoppedAt = i
			fmt.Fprintln(d.out, "Skipping the remaining steps.")
			break
		}
	}

	exec.State = AwaitingFinalConfirmation
	fmt.Fprintf(d.out, "Expected result: %s\n", s.ExpectedResult())
	resp, err := d.confirm.Confirm(ctx, FinalPrompt)
	if err != nil {
		return exec, fmt.Errorf("scenario %s: final confirmation: %w", exec.Scenario, err)
	}

	exec.Verdict = VerdictFail
	if resp == Proceed {
		exec.Verdict = VerdictPass
	}
	exec.State = Completed

	detail := string(exec.Verdict)
	if exec.StoppedAt >= 0 {
		detail = fmt.Sprintf("%s; stopped at step %d", detail, exec.StoppedAt)
	}
	d.record(logger, d.journal.RecordVerdict(ctx, store.Verdict{
		RunID:      exec.RunID,
		State:      exec.State.String(),
		Confirmed:  exec.Verdict == VerdictPass,
		Detail:     detail,
		RecordedAt: d.clock.Now(),
	}))

	fmt.Fprintf(d.out, "Scenario %s: %s\n", exec.Scenario, exec.Verdict)
	logger.Info("scenario completed", "verdict", exec.Verdict, "deliveries", len(exec.Deliveries))
	return exec, nil
}

// runStep executes one step. stop reports a checkpoint that ended the
// sequence early.
func (d *Dispatcher) runStep(ctx context.Context, logger *slog.Logger, exec *Execution, i int, step scenario.Step) (stop bool, err error) {
	switch st := step.(type) {
	case scenario.Deliver:
		spec := deliver.Spec{
			Source:                 st.Source,
			DestinationDir:         d.ingestDir,
			RewriteHeader:          st.RewriteHeader,
			MakeUnique:             st.MakeUnique,
			ExpireOffsetMinutes:    st.ExpireMinutes,
			EffectiveOffsetMinutes: st.EffectiveMinutes + exec.cursor,
		}
		receipt, err := d.sim.Deliver(spec, d.clock.Now())
		if err != nil {
			return false, d.abort(ctx, logger, exec, i, err)
		}
		exec.Deliveries = append(exec.Deliveries, receipt)
		exec.cursor += st.StaggerMinutes

		d.record(logger, d.journal.RecordDelivery(ctx, journalDelivery(exec.RunID, i, receipt)))

		if receipt.Tagged {
			fmt.Fprintf(d.out, "Delivered %s (unique id %d)\n", filepath.Base(receipt.Path), receipt.UniqueID)
		} else {
			fmt.Fprintf(d.out, "Delivered %s\n", filepath.Base(receipt.Path))
		}
		return false, nil

	case scenario.Checkpoint:
		resp, err := d.confirm.Confirm(ctx, st.Prompt)
		if err != nil {
			return false, fmt.Errorf("scenario %s: step %d: %w", exec.Scenario, i, err)
		}
		logger.Debug("checkpoint answered", "step", i, "response", resp.String())
		return resp == Abort && st.Otherwise == scenario.OtherwiseStop, nil

	case scenario.Sleep:
		fmt.Fprintf(d.out, "Waiting %s ...\n", st.Duration)
		d.clock.Sleep(st.Duration)
		return false, nil

	case scenario.Note:
		fmt.Fprintf(d.out, "NOTE: %s\n", st.Text)
		return false, nil

	default:
		return false, d.abort(ctx, logger, exec, i, fmt.Errorf("unsupported step %T", step))
	}
}

// abort moves exec to Aborted, reports err and records the verdict.
func (d *Dispatcher) abort(ctx context.Context, logger *slog.Logger, exec *Execution, step int, err error) error {
	serr := &ScenarioError{Scenario: exec.Scenario, Step: step, Err: err}
	exec.State = Aborted
	exec.Err = serr

	fmt.Fprintf(d.out, "Scenario %s aborted: %v\n", exec.Scenario, err)
	logger.Error("scenario aborted", "step", step, "error", err)

	d.record(logger, d.journal.RecordVerdict(ctx, store.Verdict{
		RunID:      exec.RunID,
		State:      exec.State.String(),
		Detail:     serr.Error(),
		RecordedAt: d.clock.Now(),
	}))
	return serr
}

// record logs journal failures; the run continues without them.
func (d *Dispatcher) record(logger *slog.Logger, err error) {
	if err != nil {
		logger.Warn("journal write failed", "error", err)
	}
}

func journalDelivery(runID string, step int, r *deliver.Receipt) store.Delivery {
	d := store.Delivery{
		RunID:       runID,
		Step:        step,
		Source:      r.Source,
		Path:        r.Path,
		Bytes:       int64(r.Bytes),
		SHA256:      r.SHA256,
		Rewritten:   r.Rewritten,
		DeliveredAt: r.DeliveredAt,
	}
	if r.Tagged {
		id := r.UniqueID
		d.UniqueID = &id
	}
	if r.Rewritten {
		d.Created = header.FormatStamp(r.Times.Created)
		d.Effective = header.FormatStamp(r.Times.Effective)
		d.Expires = header.FormatStamp(r.Times.Expires)
	}
	return d
}

// PrintListing writes the numbered catalog listing shown before the first
// prompt.
func PrintListing(w io.Writer, c *scenario.Catalog) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available Scenario(s)")
	fmt.Fprintln(w, "---------------------")
	for i, s := range c.Scenarios() {
		fmt.Fprintf(w, "%d)%s\n", i, s.Name())
	}
}
