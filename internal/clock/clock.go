// Package clock provides the wall-clock capability used by the dispatcher to
// stamp deliveries and space them out in real time.
package clock

import "time"

// Clock reads the current time and blocks for fixed delays.
//
// Sleep is not cancellable: a scenario that asks for a delay waits it out in
// full before its next step.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// System is the real wall clock. Now is reported in UTC.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Sleep blocks for d.
func (System) Sleep(d time.Duration) {
	time.Sleep(d)
}
