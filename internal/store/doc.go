// Package store is the SQLite journal of harness activity.
//
// It records:
//   - Runs: one row per scenario execution
//   - Deliveries: each message copied into the ingest directory by a run
//   - Verdicts: the final state and operator confirmation of a run
//   - Arrivals: files the ingest watcher observed, with their parsed header
//
// Deliveries are keyed by (run_id, step) and verdicts by run_id. Writes use
// ON CONFLICT DO NOTHING, so recording the same event twice is a no-op.
//
// # Database Configuration
//
//   - WAL mode: the watcher and history command read while a run writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
