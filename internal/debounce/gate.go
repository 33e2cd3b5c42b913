package debounce

import (
	"sync"
	"time"

	"github.com/examwatch/examwatch/internal/metrics"
	"github.com/examwatch/examwatch/internal/signal"
	"github.com/rs/zerolog"
)

const (
	// VisibilityWindow is how long the document must stay hidden before a
	// tab-switch candidate is confirmed.
	VisibilityWindow = 1500 * time.Millisecond

	// FocusWindow is how long the window must stay blurred before a
	// focus-loss candidate is confirmed. Longer than the visibility window
	// because brief focus steals (system dialogs) are common.
	FocusWindow = 3 * time.Second
)

// Gate holds candidate signals for their channel's confirmation window and
// forwards only the ones whose adverse state persisted. Channels with a zero
// window are confirmed immediately. At most one timer is outstanding per
// channel.
type Gate struct {
	mu      sync.Mutex
	sched   Scheduler
	windows map[signal.Category]time.Duration
	pending map[signal.Category]Timer
	forward func(signal.RawSignal)
	logger  zerolog.Logger
}

// NewGate creates a gate that forwards confirmed signals to forward.
func NewGate(sched Scheduler, windows map[signal.Category]time.Duration, forward func(signal.RawSignal), logger zerolog.Logger) *Gate {
	w := make(map[signal.Category]time.Duration, len(windows))
	for cat, d := range windows {
		w[cat] = d
	}
	return &Gate{
		sched:   sched,
		windows: w,
		pending: make(map[signal.Category]Timer),
		forward: forward,
		logger:  logger.With().Str("component", "debounce").Logger(),
	}
}

// Candidate offers a raw signal to the gate. Implements signal.Sink.
func (g *Gate) Candidate(s signal.RawSignal) {
	metrics.SignalCandidates.WithLabelValues(string(s.Category)).Inc()

	window := g.windows[s.Category]
	if window <= 0 {
		g.forward(s)
		return
	}

	g.mu.Lock()
	if _, ok := g.pending[s.Category]; ok {
		g.mu.Unlock()
		metrics.SignalsDiscarded.WithLabelValues(string(s.Category), "duplicate").Inc()
		g.logger.Debug().
			Str("category", string(s.Category)).
			Msg("Candidate already pending, ignoring")
		return
	}
	t := g.sched.AfterFunc(window, func() { g.confirm(s) })
	if t == nil {
		g.mu.Unlock()
		metrics.SignalsDiscarded.WithLabelValues(string(s.Category), "timer").Inc()
		g.logger.Warn().
			Str("category", string(s.Category)).
			Msg("Timer scheduling failed, candidate dropped")
		return
	}
	g.pending[s.Category] = t
	g.mu.Unlock()

	g.logger.Debug().
		Str("category", string(s.Category)).
		Dur("window", window).
		Msg("Confirmation window armed")
}

// confirm runs when a channel's window elapses. Recovery may have raced the
// timer; the pending entry decides the winner.
func (g *Gate) confirm(s signal.RawSignal) {
	g.mu.Lock()
	if _, ok := g.pending[s.Category]; !ok {
		g.mu.Unlock()
		return
	}
	delete(g.pending, s.Category)
	g.mu.Unlock()

	g.logger.Debug().
		Str("category", string(s.Category)).
		Msg("Candidate confirmed")
	g.forward(s)
}

// Recovered discards the channel's pending candidate, if any. Implements
// signal.Sink.
func (g *Gate) Recovered(cat signal.Category) {
	g.mu.Lock()
	t, ok := g.pending[cat]
	if ok {
		delete(g.pending, cat)
	}
	g.mu.Unlock()
	if !ok {
		return
	}
	t.Stop()
	metrics.SignalsDiscarded.WithLabelValues(string(cat), "recovered").Inc()
	g.logger.Debug().
		Str("category", string(cat)).
		Msg("Candidate discarded, state recovered within window")
}

// PendingCount returns the number of outstanding confirmation windows.
func (g *Gate) PendingCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}
