package deliver

import "sync/atomic"

// Counter hands out uniqueness identifiers for the life of one harness run.
//
// Values start at 0 and increase by one per call to Next. The counter is not
// persisted; a new Counter starts over.
type Counter struct {
	n atomic.Int64
}

// NewCounter creates a counter whose first value is 0.
func NewCounter() *Counter {
	return &Counter{}
}

// NewCounterAt creates a counter whose first value is start.
func NewCounterAt(start int64) *Counter {
	c := &Counter{}
	c.n.Store(start)
	return c
}

// Next returns the current value and advances the counter.
func (c *Counter) Next() int64 {
	return c.n.Add(1) - 1
}

// Peek returns the value the next call to Next will return.
func (c *Counter) Peek() int64 {
	return c.n.Load()
}
