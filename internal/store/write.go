package store

import (
	"context"
	"fmt"
	"time"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// BeginRun records the start of a run. A run ID that already exists is
// ignored.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, data_dir, ingest_dir, started_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Scenario,
		run.DataDir,
		run.IngestDir,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordDelivery records a delivery made by a run.
// The run must exist (foreign key constraint). A second delivery for the
// same (run, step) is ignored.
func (s *Store) RecordDelivery(ctx context.Context, d Delivery) error {
	var uniqueID any
	if d.UniqueID != nil {
		uniqueID = *d.UniqueID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deliveries
		(run_id, step, source, path, bytes, sha256, unique_id, rewritten, created, effective, expires, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		d.RunID,
		d.Step,
		d.Source,
		d.Path,
		d.Bytes,
		d.SHA256,
		uniqueID,
		boolInt(d.Rewritten),
		d.Created,
		d.Effective,
		d.Expires,
		formatTime(d.DeliveredAt),
	)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

// RecordVerdict records how a run ended. Only the first verdict for a run
// is kept.
func (s *Store) RecordVerdict(ctx context.Context, v Verdict) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verdicts (run_id, state, confirmed, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`,
		v.RunID,
		v.State,
		boolInt(v.Confirmed),
		v.Detail,
		formatTime(v.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("record verdict: %w", err)
	}
	return nil
}

// RecordArrival appends an ingest arrival and returns its ID.
func (s *Store) RecordArrival(ctx context.Context, a Arrival) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO arrivals
		(path, op, observed_at, class, designator, created, effective, expires, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.Path,
		a.Op,
		formatTime(a.ObservedAt),
		a.Class,
		a.Designator,
		a.Created,
		a.Effective,
		a.Expires,
		a.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("record arrival: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record arrival: %w", err)
	}
	return id, nil
}
