// Package ledger holds the authoritative per-category violation counters.
// All mutation funnels through Record and Reset; nothing else may touch the
// counts.
package ledger

import (
	"sync"
	"time"

	"github.com/examwatch/examwatch/internal/metrics"
	"github.com/examwatch/examwatch/internal/signal"
	"github.com/rs/zerolog"
)

// Record is the per-category counter. Counts never decrease between resets.
type Record struct {
	Category signal.Category
	Count    int
	LastAt   time.Time
}

// Snapshot is the authoritative post-increment view returned by Record.
// Counted is false when the owning session was inactive and the signal was
// not committed; the snapshot then reflects the unchanged state.
type Snapshot struct {
	Category signal.Category
	Count    int
	Total    int
	At       time.Time
	Counted  bool
}

// Ledger is the single source of truth for violation counts. The active
// predicate is checked at commit time, not at schedule time, so a debounce
// timer firing after stop() is a clean no-op.
type Ledger struct {
	mu      sync.Mutex
	records map[signal.Category]*Record
	total   int
	active  func() bool
	now     func() time.Time
	logger  zerolog.Logger
}

// New creates an empty ledger owned by a session whose activity is reported
// by active.
func New(active func() bool, now func() time.Time, logger zerolog.Logger) *Ledger {
	l := &Ledger{
		records: make(map[signal.Category]*Record, len(signal.Categories())),
		active:  active,
		now:     now,
		logger:  logger.With().Str("component", "ledger").Logger(),
	}
	for _, cat := range signal.Categories() {
		l.records[cat] = &Record{Category: cat}
	}
	return l
}

// Record commits one confirmed violation and returns the post-increment
// snapshot. When the session is inactive the call is a no-op and the
// unchanged snapshot is returned with Counted false.
func (l *Ledger) Record(cat signal.Category) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.records[cat]
	if rec == nil {
		rec = &Record{Category: cat}
		l.records[cat] = rec
	}

	if !l.active() {
		l.logger.Debug().
			Str("category", string(cat)).
			Msg("Session inactive, signal not counted")
		return Snapshot{Category: cat, Count: rec.Count, Total: l.total}
	}

	rec.Count++
	rec.LastAt = l.now()
	l.total++
	metrics.ViolationsRecorded.WithLabelValues(string(cat)).Inc()

	l.logger.Info().
		Str("category", string(cat)).
		Int("count", rec.Count).
		Int("total", l.total).
		Msg("Violation recorded")

	return Snapshot{
		Category: cat,
		Count:    rec.Count,
		Total:    l.total,
		At:       rec.LastAt,
		Counted:  true,
	}
}

// Reset zeroes every category. Safe to call regardless of monitoring state.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rec := range l.records {
		rec.Count = 0
		rec.LastAt = time.Time{}
	}
	l.total = 0
	l.logger.Info().Msg("Violation counters reset")
}

// Total returns the aggregate violation count.
func (l *Ledger) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Breakdown returns a copy of the per-category counts.
func (l *Ledger) Breakdown() map[signal.Category]int {
	b, _ := l.Counts()
	return b
}

// Counts returns the per-category counts and the aggregate total from a
// single consistent view, so the total always equals the sum of the counts.
func (l *Ledger) Counts() (map[signal.Category]int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[signal.Category]int, len(l.records))
	for cat, rec := range l.records {
		out[cat] = rec.Count
	}
	return out, l.total
}
