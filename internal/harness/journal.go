package harness

import (
	"context"

	"github.com/roach88/ingestsim/internal/store"
)

// Journal records runs as they happen. *store.Store implements it.
type Journal interface {
	BeginRun(ctx context.Context, run store.Run) error
	RecordDelivery(ctx context.Context, d store.Delivery) error
	RecordVerdict(ctx context.Context, v store.Verdict) error
}

// nopJournal discards everything.
type nopJournal struct{}

func (nopJournal) BeginRun(context.Context, store.Run) error           { return nil }
func (nopJournal) RecordDelivery(context.Context, store.Delivery) error { return nil }
func (nopJournal) RecordVerdict(context.Context, store.Verdict) error   { return nil }
