package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ingestsim/internal/header"
)

// HeaderView is the JSON form of a parsed header.
type HeaderView struct {
	Class        string     `json:"class"`
	Designator   string     `json:"designator"`
	Created      time.Time  `json:"created"`
	Effective    time.Time  `json:"effective"`
	Middle       string     `json:"middle"`
	Expires      *time.Time `json:"expires,omitempty"`
	NeverExpires bool       `json:"never_expires"`
	Offset       int        `json:"offset"`
}

func newHeaderView(rec *header.Record) HeaderView {
	v := HeaderView{
		Class:        string(rec.Class()),
		Designator:   rec.Designator(),
		Created:      rec.Created,
		Effective:    rec.Effective,
		Middle:       rec.Middle,
		NeverExpires: rec.NeverExpires,
		Offset:       rec.Start,
	}
	if !rec.NeverExpires {
		expires := rec.Expires
		v.Expires = &expires
	}
	return v
}

// NewHeaderCommand creates the header command.
func NewHeaderCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "header <message-file>",
		Short: "Decode a message header",
		Long: `Find the header line in a message file and print its fields.

Exits 1 if the file has no header or a header time is not a valid instant.

Example:
  ingestsim header data/parsing/MSG_VALID_EXPIRE_NINES
  ingestsim header --format json /var/spool/ingestsim/ingest/MSG_ROUTINE_1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return out.Fail(ExitCommandError, ErrCodeNotFound, "failed to read message file", err)
			}

			rec, err := header.Parse(string(data))
			if err != nil {
				return out.Fail(ExitFailure, ErrCodeHeader, "no usable header in "+args[0], err)
			}

			view := newHeaderView(rec)
			if out.JSON() {
				return out.Success(view)
			}

			w := out.Writer
			fmt.Fprintf(w, "class:      %s\n", view.Class)
			fmt.Fprintf(w, "designator: %s\n", view.Designator)
			fmt.Fprintf(w, "created:    %s\n", header.FormatStamp(rec.Created))
			fmt.Fprintf(w, "effective:  %s\n", header.FormatStamp(rec.Effective))
			fmt.Fprintf(w, "middle:     %q\n", rec.Middle)
			if rec.NeverExpires {
				fmt.Fprintf(w, "expires:    %s (never)\n", header.NeverExpires)
			} else {
				fmt.Fprintf(w, "expires:    %s\n", header.FormatStamp(rec.Expires))
			}
			return nil
		},
	}
}
