// Package session owns the monitoring lifecycle: it wires the signal
// adapters, debounce gate, ledger and escalation policy together and exposes
// the public contract of the violation-detection engine.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/examwatch/examwatch/internal/debounce"
	"github.com/examwatch/examwatch/internal/escalate"
	"github.com/examwatch/examwatch/internal/history"
	"github.com/examwatch/examwatch/internal/ledger"
	"github.com/examwatch/examwatch/internal/metrics"
	"github.com/examwatch/examwatch/internal/signal"
	"github.com/rs/zerolog"
)

// Monitor is one proctoring session. States are Idle and Monitoring; Start
// and Stop move between them and Reset is a self-loop on either. A monitor
// can be restarted indefinitely within one process lifetime.
type Monitor struct {
	mu         sync.Mutex
	cfg        Config
	host       signal.Host
	sched      debounce.Scheduler
	ledger     *ledger.Ledger
	gate       *debounce.Gate
	policy     *escalate.Policy
	adapters   []signal.Adapter
	attached   []signal.Adapter
	journal    *history.Journal
	callbacks  Callbacks
	logger     zerolog.Logger
	active     bool
	terminated bool
	startedAt  time.Time
	stoppedAt  time.Time
}

// NewMonitor creates an idle monitor bound to the given host. A nil sched
// uses the system clock.
func NewMonitor(host signal.Host, cfg Config, cb Callbacks, sched debounce.Scheduler, logger zerolog.Logger) (*Monitor, error) {
	cfg = cfg.withDefaults()
	if sched == nil {
		sched = debounce.NewScheduler()
	}

	journal, err := history.NewJournal(cfg.JournalCapacity)
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		cfg:       cfg,
		host:      host,
		sched:     sched,
		journal:   journal,
		callbacks: cb,
		logger:    logger.With().Str("component", "session").Logger(),
	}

	m.ledger = ledger.New(m.Active, sched.Now, logger)

	windows := map[signal.Category]time.Duration{
		signal.CategoryTabSwitch:        cfg.VisibilityWindow,
		signal.CategoryVisibilityChange: cfg.VisibilityWindow,
		signal.CategoryFocusLoss:        cfg.FocusWindow,
	}
	m.gate = debounce.NewGate(sched, windows, m.commit, logger)

	m.policy = escalate.NewPolicy(escalate.Config{
		MaxViolations:   cfg.MaxViolations,
		WarningsEnabled: !cfg.DisableWarnings,
		SettleDelay:     cfg.SettleDelay,
	}, sched, cb.OnWarning, m.handleTerminate, logger)

	m.adapters = []signal.Adapter{
		signal.NewVisibilityAdapter(m.gate),
		signal.NewFocusAdapter(m.gate),
		signal.NewContextMenuAdapter(m.gate),
		signal.NewKeyboardAdapter(m.gate),
		signal.NewNavigationAdapter(),
	}

	return m, nil
}

// Start activates monitoring and binds the adapters to the host. Idempotent:
// a second Start keeps the original start timestamp. An adapter whose channel
// the host does not support degrades silently after a single diagnostic.
func (m *Monitor) Start() error {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		m.logger.Debug().Msg("Start ignored, already monitoring")
		return nil
	}
	m.active = true
	m.startedAt = m.sched.Now()
	m.stoppedAt = time.Time{}
	m.mu.Unlock()

	m.attach()
	metrics.ActiveSessions.Inc()

	m.logger.Info().Time("started_at", m.startedAt).Msg("Monitoring activated")
	m.notify("Exam monitoring is now active.")
	return nil
}

func (m *Monitor) attach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.attached) > 0 {
		return
	}
	for _, a := range m.adapters {
		if err := a.Attach(m.host); err != nil {
			m.logger.Error().
				Err(err).
				Str("channel", a.Name()).
				Msg("Adapter channel unavailable, degrading")
			if m.callbacks.OnDiagnostic != nil {
				m.deliver("diagnostic", func() { m.callbacks.OnDiagnostic(a.Name(), err) })
			}
			continue
		}
		m.attached = append(m.attached, a)
	}
}

// Stop deactivates monitoring. Counters are kept and in-flight debounce
// timers are not cancelled; the ledger's commit-time activity check makes a
// late-firing timer a no-op. Idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		m.logger.Debug().Msg("Stop ignored, not monitoring")
		return
	}
	m.active = false
	m.stoppedAt = m.sched.Now()
	elapsed := m.elapsedMinutesLocked(m.stoppedAt)
	attached := m.attached
	m.attached = nil
	m.mu.Unlock()

	for _, a := range attached {
		a.Detach()
	}
	metrics.ActiveSessions.Dec()

	m.logger.Info().Int("elapsed_minutes", elapsed).Msg("Monitoring stopped")
	m.notify(stopNotice(elapsed))
}

// Reset zeroes all violation counters and re-arms the first warning. It does
// not change the monitoring state, and it does not cancel a termination that
// is already scheduled.
func (m *Monitor) Reset() {
	m.ledger.Reset()
	m.policy.Rearm()
	m.logger.Info().Msg("Session reset")
}

// Active reports whether the session is monitoring.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Terminated reports whether the termination sink has fired.
func (m *Monitor) Terminated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.terminated
}

// StartedAt returns the current session's start time, zero if never started.
func (m *Monitor) StartedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startedAt
}

// Summary builds the read-only violation summary. Callable at any time in
// either state.
func (m *Monitor) Summary() Summary {
	now := m.sched.Now()

	m.mu.Lock()
	end := now
	if !m.active && !m.stoppedAt.IsZero() {
		end = m.stoppedAt
	}
	duration := m.elapsedMinutesLocked(end)
	m.mu.Unlock()

	breakdown, total := m.ledger.Counts()

	return Summary{
		Total:           total,
		DurationMinutes: duration,
		Breakdown:       breakdown,
		RiskLevel:       m.riskFor(total),
		GeneratedAt:     now,
	}
}

// Recent returns the retained diagnostic trail, oldest first.
func (m *Monitor) Recent() []history.Entry {
	return m.journal.Recent()
}

// Gate exposes the debounce gate so a host bridge can report channel state.
func (m *Monitor) Gate() *debounce.Gate {
	return m.gate
}

// commit is the gate's forward path: every confirmed signal funnels through
// the ledger here, then through the escalation policy with the authoritative
// post-increment snapshot.
func (m *Monitor) commit(s signal.RawSignal) {
	snap := m.ledger.Record(s.Category)
	if !snap.Counted {
		metrics.SignalsDiscarded.WithLabelValues(string(s.Category), "inactive").Inc()
		return
	}

	m.journal.Append(s.Category, snap.At, s.Details)

	if m.callbacks.OnViolation != nil {
		ev := ViolationEvent{
			Category:  s.Category,
			Count:     snap.Count,
			Total:     snap.Total,
			Details:   s.Details,
			Timestamp: snap.At,
		}
		m.deliver("violation", func() { m.callbacks.OnViolation(ev) })
	}

	m.policy.Observe(snap)
}

func (m *Monitor) handleTerminate() {
	m.mu.Lock()
	m.terminated = true
	m.mu.Unlock()
	if m.callbacks.OnTerminate != nil {
		m.callbacks.OnTerminate()
	}
}

func (m *Monitor) notify(msg string) {
	if m.callbacks.OnNotice == nil {
		return
	}
	m.deliver("notice", func() { m.callbacks.OnNotice(msg) })
}

func (m *Monitor) deliver(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().
				Str("sink", name).
				Interface("panic", r).
				Msg("Callback panicked")
		}
	}()
	fn()
}

func (m *Monitor) elapsedMinutesLocked(end time.Time) int {
	if m.startedAt.IsZero() {
		return 0
	}
	mins := int(end.Sub(m.startedAt).Minutes())
	if mins < 0 {
		return 0
	}
	return mins
}

func (m *Monitor) riskFor(total int) RiskLevel {
	switch {
	case total >= m.cfg.RiskHighAt:
		return RiskHigh
	case total >= m.cfg.RiskMediumAt:
		return RiskMedium
	default:
		return RiskLow
	}
}

func stopNotice(elapsed int) string {
	if elapsed == 1 {
		return "Exam monitoring stopped after 1 minute."
	}
	return fmt.Sprintf("Exam monitoring stopped after %d minutes.", elapsed)
}
