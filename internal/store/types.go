package store

import "time"

// Run is one scenario execution.
type Run struct {
	ID        string    `json:"id"`
	Scenario  string    `json:"scenario"`
	DataDir   string    `json:"data_dir"`
	IngestDir string    `json:"ingest_dir"`
	StartedAt time.Time `json:"started_at"`
}

// Delivery is one message delivered by a run. Step is the index of the
// delivering step within the scenario.
//
// Created, Effective and Expires hold the rewritten header stamps and are
// empty when the header was not rewritten. UniqueID is nil when no
// identifier was injected.
type Delivery struct {
	RunID       string    `json:"run_id"`
	Step        int       `json:"step"`
	Source      string    `json:"source"`
	Path        string    `json:"path"`
	Bytes       int64     `json:"bytes"`
	SHA256      string    `json:"sha256"`
	UniqueID    *int64    `json:"unique_id,omitempty"`
	Rewritten   bool      `json:"rewritten"`
	Created     string    `json:"created,omitempty"`
	Effective   string    `json:"effective,omitempty"`
	Expires     string    `json:"expires,omitempty"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// Verdict is the outcome of a run.
type Verdict struct {
	RunID      string    `json:"run_id"`
	State      string    `json:"state"`
	Confirmed  bool      `json:"confirmed"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RunSummary is a run with its delivery count and verdict, if recorded.
type RunSummary struct {
	Run
	Deliveries int      `json:"deliveries"`
	Verdict    *Verdict `json:"verdict,omitempty"`
}

// Arrival is a file observed in the ingest directory.
// Header fields are empty when the file had no parsable header; Error then
// says why.
type Arrival struct {
	ID         int64     `json:"id"`
	Path       string    `json:"path"`
	Op         string    `json:"op"`
	ObservedAt time.Time `json:"observed_at"`
	Class      string    `json:"class,omitempty"`
	Designator string    `json:"designator,omitempty"`
	Created    string    `json:"created,omitempty"`
	Effective  string    `json:"effective,omitempty"`
	Expires    string    `json:"expires,omitempty"`
	Error      string    `json:"error,omitempty"`
}
