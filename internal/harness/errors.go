package harness

import (
	"errors"
	"fmt"
)

// ScenarioError is a hard error that aborted a scenario.
// Step is the index of the failing step, or -1 when the scenario could not
// be prepared.
type ScenarioError struct {
	Scenario string
	Step     int
	Err      error
}

// Error implements the error interface.
func (e *ScenarioError) Error() string {
	if e.Step < 0 {
		return fmt.Sprintf("scenario %s: %v", e.Scenario, e.Err)
	}
	return fmt.Sprintf("scenario %s: step %d: %v", e.Scenario, e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScenarioError) Unwrap() error {
	return e.Err
}

// IsScenarioError reports whether err aborted a scenario. The dispatcher
// reports such errors and moves on; any other error ends the session.
func IsScenarioError(err error) bool {
	var se *ScenarioError
	return errors.As(err, &se)
}
