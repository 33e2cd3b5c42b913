// Package debounce converts transient adverse signals into confirmed
// violations only when the adverse state persists past a per-channel
// confirmation window.
package debounce

import "time"

// Timer is a cancellable scheduled callback. Stop reports whether the
// callback was prevented from running.
type Timer interface {
	Stop() bool
}

// Scheduler provides time and timer scheduling for the gate and the
// escalation policy. This interface allows time to be driven deterministically
// in tests.
type Scheduler interface {
	Now() time.Time
	// AfterFunc schedules fn to run after d. A nil return means scheduling
	// failed; callers drop the pending work.
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealScheduler schedules on the system clock.
type RealScheduler struct{}

// NewScheduler returns a Scheduler backed by the system clock.
func NewScheduler() Scheduler { return RealScheduler{} }

// Now returns the current system time.
func (RealScheduler) Now() time.Time { return time.Now() }

// AfterFunc schedules fn via time.AfterFunc.
func (RealScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
