package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ListRuns returns the most recent runs first, each with its delivery count
// and verdict. limit <= 0 returns every run.
//
// Returns an empty slice (not nil) when the journal has no runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.scenario, r.data_dir, r.ingest_dir, r.started_at,
		       (SELECT COUNT(*) FROM deliveries d WHERE d.run_id = r.id),
		       v.state, v.confirmed, v.detail, v.recorded_at
		FROM runs r
		LEFT JOIN verdicts v ON v.run_id = r.id
		ORDER BY r.started_at DESC, r.id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		summary, err := scanRunSummary(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// GetRun returns one run summary. The bool is false when no run has id.
func (s *Store) GetRun(ctx context.Context, id string) (RunSummary, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.scenario, r.data_dir, r.ingest_dir, r.started_at,
		       (SELECT COUNT(*) FROM deliveries d WHERE d.run_id = r.id),
		       v.state, v.confirmed, v.detail, v.recorded_at
		FROM runs r
		LEFT JOIN verdicts v ON v.run_id = r.id
		WHERE r.id = ?
	`, id)

	summary, err := scanRunSummary(row)
	if err == sql.ErrNoRows {
		return RunSummary{}, false, nil
	}
	if err != nil {
		return RunSummary{}, false, err
	}
	return summary, true, nil
}

// ListDeliveries returns a run's deliveries in step order.
func (s *Store) ListDeliveries(ctx context.Context, runID string) ([]Delivery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, step, source, path, bytes, sha256, unique_id, rewritten,
		       created, effective, expires, delivered_at
		FROM deliveries
		WHERE run_id = ?
		ORDER BY step ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := []Delivery{}
	for rows.Next() {
		var (
			d           Delivery
			uniqueID    sql.NullInt64
			rewritten   int
			deliveredAt string
		)
		if err := rows.Scan(
			&d.RunID, &d.Step, &d.Source, &d.Path, &d.Bytes, &d.SHA256,
			&uniqueID, &rewritten, &d.Created, &d.Effective, &d.Expires, &deliveredAt,
		); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		if uniqueID.Valid {
			id := uniqueID.Int64
			d.UniqueID = &id
		}
		d.Rewritten = rewritten != 0
		if d.DeliveredAt, err = parseTime(deliveredAt); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}

	return deliveries, nil
}

// ListArrivals returns the most recent arrivals first. limit <= 0 returns
// every arrival.
func (s *Store) ListArrivals(ctx context.Context, limit int) ([]Arrival, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, op, observed_at, class, designator, created, effective, expires, error
		FROM arrivals
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query arrivals: %w", err)
	}
	defer rows.Close()

	arrivals := []Arrival{}
	for rows.Next() {
		var (
			a          Arrival
			observedAt string
		)
		if err := rows.Scan(
			&a.ID, &a.Path, &a.Op, &observedAt, &a.Class, &a.Designator,
			&a.Created, &a.Effective, &a.Expires, &a.Error,
		); err != nil {
			return nil, fmt.Errorf("scan arrival: %w", err)
		}
		if a.ObservedAt, err = parseTime(observedAt); err != nil {
			return nil, err
		}
		arrivals = append(arrivals, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate arrivals: %w", err)
	}

	return arrivals, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunSummary(row rowScanner) (RunSummary, error) {
	var (
		summary    RunSummary
		startedAt  string
		state      sql.NullString
		confirmed  sql.NullInt64
		detail     sql.NullString
		recordedAt sql.NullString
	)
	err := row.Scan(
		&summary.ID, &summary.Scenario, &summary.DataDir, &summary.IngestDir, &startedAt,
		&summary.Deliveries,
		&state, &confirmed, &detail, &recordedAt,
	)
	if err == sql.ErrNoRows {
		return RunSummary{}, err
	}
	if err != nil {
		return RunSummary{}, fmt.Errorf("scan run: %w", err)
	}

	if summary.StartedAt, err = parseTime(startedAt); err != nil {
		return RunSummary{}, err
	}

	if state.Valid {
		v := &Verdict{
			RunID:     summary.ID,
			State:     state.String,
			Confirmed: confirmed.Int64 != 0,
			Detail:    detail.String,
		}
		if v.RecordedAt, err = parseTime(recordedAt.String); err != nil {
			return RunSummary{}, err
		}
		summary.Verdict = v
	}

	return summary, nil
}
