package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ingestsim/internal/clock"
	"github.com/roach88/ingestsim/internal/deliver"
	"github.com/roach88/ingestsim/internal/header"
)

// DeliverOptions holds flags for the deliver command.
type DeliverOptions struct {
	*RootOptions
	Rewrite     bool
	Unique      bool
	UniqueStart int64
	Expire      int
	Effective   int

	// Clock overrides the delivery clock (for testing).
	// If nil, defaults to the system clock.
	Clock clock.Clock
}

// DeliveryResult is the JSON result of the deliver command.
type DeliveryResult struct {
	*deliver.Receipt
	Created   string `json:"created,omitempty"`
	Effective string `json:"effective,omitempty"`
	Expires   string `json:"expires,omitempty"`
}

// NewDeliverCommand creates the deliver command.
func NewDeliverCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeliverOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "deliver <message-file>",
		Short: "Deliver one message into the ingest directory",
		Long: `Copy one message file into the ingest directory, optionally tagging it with a
unique identifier and rewriting its header times relative to now.

Example:
  ingestsim deliver data/parsing/MSG_VALID_TONES
  ingestsim deliver --rewrite --expire 15 --unique data/scheduling/MSG_ROUTINE_1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deliverMessage(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Rewrite, "rewrite", false, "rewrite header times relative to now")
	cmd.Flags().BoolVar(&opts.Unique, "unique", false, "inject a unique identifier at the uniqueness marker")
	cmd.Flags().Int64Var(&opts.UniqueStart, "unique-start", 0, "identifier injected by --unique")
	cmd.Flags().IntVar(&opts.Expire, "expire", 0, "minutes from now to the rewritten expiration (may be negative)")
	cmd.Flags().IntVar(&opts.Effective, "effective", 0, "minutes from now to the rewritten effective time")

	return cmd
}

func deliverMessage(opts *DeliverOptions, source string, cmd *cobra.Command) error {
	e, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.requireDir("ingest directory", e.cfg.IngestDir); err != nil {
		return err
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}

	sim := deliver.NewSimulator(deliver.NewCounterAt(opts.UniqueStart), e.logger)
	receipt, err := sim.Deliver(deliver.Spec{
		Source:                 source,
		DestinationDir:         e.cfg.IngestDir,
		RewriteHeader:          opts.Rewrite,
		MakeUnique:             opts.Unique,
		ExpireOffsetMinutes:    opts.Expire,
		EffectiveOffsetMinutes: opts.Effective,
	}, clk.Now())
	if err != nil {
		exitCode := ExitFailure
		if deliver.CodeOf(err) == deliver.ErrCodeDestinationUnwritable {
			exitCode = ExitCommandError
		}
		return e.out.Fail(exitCode, ErrCodeDeliveryFailed, "delivery failed", err)
	}

	result := DeliveryResult{Receipt: receipt}
	if receipt.Rewritten {
		result.Created = header.FormatStamp(receipt.Times.Created)
		result.Effective = header.FormatStamp(receipt.Times.Effective)
		result.Expires = header.FormatStamp(receipt.Times.Expires)
	}

	if e.out.JSON() {
		return e.out.Success(result)
	}

	w := e.out.Writer
	fmt.Fprintf(w, "Delivered %s -> %s (%d bytes)\n", receipt.Source, receipt.Path, receipt.Bytes)
	if receipt.Tagged {
		fmt.Fprintf(w, "  unique id: %d\n", receipt.UniqueID)
	}
	if receipt.Rewritten {
		fmt.Fprintf(w, "  created:   %s\n  effective: %s\n  expires:   %s\n", result.Created, result.Effective, result.Expires)
	}
	fmt.Fprintf(w, "  sha256:    %s\n", receipt.SHA256)
	return nil
}
