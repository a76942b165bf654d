package harness

import "fmt"

// State is the lifecycle position of one execution.
type State int

const (
	NotStarted State = iota
	Preparing
	AwaitingFinalConfirmation
	Completed
	Aborted
)

// String returns the state name as stored in the journal.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Preparing:
		return "Preparing"
	case AwaitingFinalConfirmation:
		return "AwaitingFinalConfirmation"
	case Completed:
		return "Completed"
	case Aborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == Completed || s == Aborted
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for st := NotStarted; st <= Aborted; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}
