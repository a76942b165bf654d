package scenario

import "time"

// Scenario is a named sequence of steps with the result the operator should
// observe.
//
// Prepare must return a fresh step slice on every call. Execution state,
// such as the effective-time cursor, belongs to the caller running the
// steps, so running the same Scenario twice never leaks state between runs.
type Scenario interface {
	Name() string
	ExpectedResult() string
	Prepare(dataDir string) ([]Step, error)
}

// Step is one unit of scenario work.
type Step interface {
	// stepMarker restricts implementers to this package.
	stepMarker()
}

// Deliver copies Source into the ingest directory.
type Deliver struct {
	// Source is the absolute path of the message file.
	Source string

	RewriteHeader bool
	MakeUnique    bool

	// ExpireMinutes is the expire offset written by a header rewrite.
	ExpireMinutes int

	// EffectiveMinutes delays the rewritten effective time. The running
	// execution adds its cursor to this value.
	EffectiveMinutes int

	// StaggerMinutes advances the execution's effective-time cursor after
	// this delivery.
	StaggerMinutes int
}

// Otherwise selects what a checkpoint does when the operator answers no.
type Otherwise string

const (
	// OtherwiseStop skips the remaining steps and moves to final confirmation.
	OtherwiseStop Otherwise = "stop"

	// OtherwiseContinue runs the remaining steps regardless of the answer.
	OtherwiseContinue Otherwise = "continue"
)

// Checkpoint blocks until the operator answers Prompt.
type Checkpoint struct {
	Prompt    string
	Otherwise Otherwise
}

// Sleep waits a fixed wall-clock duration.
type Sleep struct {
	Duration time.Duration
}

// Note prints guidance for the operator.
type Note struct {
	Text string
}

func (Deliver) stepMarker()    {}
func (Checkpoint) stepMarker() {}
func (Sleep) stepMarker()      {}
func (Note) stepMarker()       {}
