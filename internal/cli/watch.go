package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/ingestsim/internal/header"
	"github.com/roach88/ingestsim/internal/ingest"
	"github.com/roach88/ingestsim/internal/store"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Count int
}

// ArrivalView is the JSON form of one observed arrival.
type ArrivalView struct {
	Path       string `json:"path"`
	Op         string `json:"op"`
	Size       int64  `json:"size"`
	Class      string `json:"class,omitempty"`
	Designator string `json:"designator,omitempty"`
	Created    string `json:"created,omitempty"`
	Effective  string `json:"effective,omitempty"`
	Expires    string `json:"expires,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report messages arriving in the ingest directory",
		Long: `Watch the ingest directory and print the decoded header of every message
that lands there. Arrivals are recorded in the journal when one is configured.

Runs until interrupted, or until --count arrivals have been seen.

Example:
  ingestsim watch
  ingestsim watch --count 3 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchIngest(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 0, "stop after this many arrivals (0 runs until interrupted)")

	return cmd
}

func watchIngest(opts *WatchOptions, cmd *cobra.Command) error {
	e, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.requireDir("ingest directory", e.cfg.IngestDir); err != nil {
		return err
	}

	journal, err := e.openJournal()
	if err != nil {
		return err
	}
	if journal != nil {
		defer journal.Close()
	}

	w, err := ingest.New(e.cfg.IngestDir, ingest.Options{Debounce: e.cfg.WatchDebounce, Logger: e.logger})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to watch ingest directory", err)
	}
	defer w.Stop()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			e.logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := w.Start(ctx); err != nil {
		return WrapExitError(ExitFailure, "failed to start watcher", err)
	}
	if !e.out.JSON() {
		fmt.Fprintf(e.out.Writer, "Watching %s. Press Ctrl-C to stop.\n", w.Dir())
	}

	seen := 0
	for arrival := range w.Arrivals() {
		view := newArrivalView(arrival)

		if journal != nil {
			if _, err := journal.RecordArrival(ctx, arrivalRecord(arrival, view)); err != nil {
				e.logger.Error("failed to record arrival", "path", arrival.Path, "error", err)
			}
		}

		if e.out.JSON() {
			if err := e.out.Success(view); err != nil {
				return err
			}
		} else {
			printArrival(e.out, view)
		}

		seen++
		if opts.Count > 0 && seen >= opts.Count {
			cancel()
			break
		}
	}

	e.logger.Info("watch stopped", "arrivals", seen)
	return nil
}

func newArrivalView(a ingest.Arrival) ArrivalView {
	view := ArrivalView{Path: a.Path, Op: string(a.Op), Size: a.Size}
	if a.Err != nil {
		view.Error = a.Err.Error()
	}
	if rec := a.Header; rec != nil {
		view.Class = string(rec.Class())
		view.Designator = rec.Designator()
		view.Created = header.FormatStamp(rec.Created)
		view.Effective = header.FormatStamp(rec.Effective)
		if rec.NeverExpires {
			view.Expires = header.NeverExpires
		} else {
			view.Expires = header.FormatStamp(rec.Expires)
		}
	}
	return view
}

func arrivalRecord(a ingest.Arrival, v ArrivalView) store.Arrival {
	return store.Arrival{
		Path:       v.Path,
		Op:         v.Op,
		ObservedAt: a.At,
		Class:      v.Class,
		Designator: v.Designator,
		Created:    v.Created,
		Effective:  v.Effective,
		Expires:    v.Expires,
		Error:      v.Error,
	}
}

func printArrival(out *OutputFormatter, v ArrivalView) {
	if v.Error != "" {
		fmt.Fprintf(out.Writer, "%s %s (%d bytes): %s\n", v.Op, v.Path, v.Size, v.Error)
		return
	}
	fmt.Fprintf(out.Writer, "%s %s (%d bytes) class=%s designator=%s created=%s effective=%s expires=%s\n",
		v.Op, v.Path, v.Size, v.Class, v.Designator, v.Created, v.Effective, v.Expires)
}
