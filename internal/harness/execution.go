package harness

import (
	"time"

	"github.com/roach88/ingestsim/internal/deliver"
)

// Verdict is the operator's judgement of a completed execution.
type Verdict string

const (
	VerdictNone Verdict = ""
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// Execution is the record of one scenario run. Each run gets its own
// Execution; nothing in it is shared with other runs.
type Execution struct {
	RunID      string             `json:"run_id"`
	Scenario   string             `json:"scenario"`
	State      State              `json:"state"`
	Deliveries []*deliver.Receipt `json:"deliveries"`
	Verdict    Verdict            `json:"verdict,omitempty"`

	// StoppedAt is the index of the checkpoint that ended the step
	// sequence early, or -1 when every step ran.
	StoppedAt int `json:"stopped_at"`

	StartedAt time.Time `json:"started_at"`

	// Err is the hard error that aborted the execution.
	Err error `json:"-"`

	// cursor is the effective-time offset in minutes added to deliveries.
	cursor int
}
