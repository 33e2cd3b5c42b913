package debounce

import (
	"sort"
	"sync"
	"time"
)

// ManualScheduler is a deterministic Scheduler driven by Advance. Due
// callbacks run synchronously on the advancing goroutine, in deadline order.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers map[int]*manualTimer
}

// NewManualScheduler creates a manual scheduler starting at the given time.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{
		now:    start,
		timers: make(map[int]*manualTimer),
	}
}

// Now returns the scheduler's current virtual time.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc registers fn to fire once virtual time passes d from now.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t := &manualTimer{
		s:        s,
		id:       s.nextID,
		deadline: s.now.Add(d),
		fn:       fn,
	}
	s.timers[t.id] = t
	return t
}

// Advance moves virtual time forward by d, firing every timer whose deadline
// falls within the window. A recovery handler that ran before Advance always
// wins over the timer it stopped.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	for {
		t := s.nextDueLocked(target)
		if t == nil {
			break
		}
		delete(s.timers, t.id)
		if t.deadline.After(s.now) {
			s.now = t.deadline
		}
		s.mu.Unlock()
		t.fn()
		s.mu.Lock()
	}
	s.now = target
	s.mu.Unlock()
}

func (s *ManualScheduler) nextDueLocked(target time.Time) *manualTimer {
	due := make([]*manualTimer, 0, len(s.timers))
	for _, t := range s.timers {
		if !t.deadline.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].id < due[j].id
		}
		return due[i].deadline.Before(due[j].deadline)
	})
	return due[0]
}

type manualTimer struct {
	s        *ManualScheduler
	id       int
	deadline time.Time
	fn       func()
}

// Stop cancels the timer if it has not fired yet.
func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.timers[t.id]; !ok {
		return false
	}
	delete(t.s.timers, t.id)
	return true
}
