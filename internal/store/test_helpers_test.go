package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var testEpoch = time.Date(2016, 2, 3, 9, 10, 0, 0, time.UTC)

func testRun(id, scenario string, offset time.Duration) Run {
	return Run{
		ID:        id,
		Scenario:  scenario,
		DataDir:   "/data",
		IngestDir: "/ingest",
		StartedAt: testEpoch.Add(offset),
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}
