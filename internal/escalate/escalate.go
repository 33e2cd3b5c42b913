// Package escalate maps the aggregate violation count to a consequence and
// delivers it to the warning and termination sinks.
package escalate

import (
	"fmt"
	"sync"
	"time"

	"github.com/examwatch/examwatch/internal/debounce"
	"github.com/examwatch/examwatch/internal/ledger"
	"github.com/examwatch/examwatch/internal/metrics"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxViolations is the aggregate count at which the session is
	// terminated.
	DefaultMaxViolations = 2

	// SettleDelay is the wait between crossing the termination threshold and
	// invoking the termination sink, so the final warning stays visible.
	SettleDelay = 2 * time.Second
)

// Consequence is the outcome of a policy decision.
type Consequence int

const (
	None Consequence = iota
	Warn
	Terminate
)

func (c Consequence) String() string {
	switch c {
	case Warn:
		return "warn"
	case Terminate:
		return "terminate"
	}
	return "none"
}

// Decide maps the aggregate total to a consequence. Pure: no state is read
// or written beyond the arguments.
func Decide(total, maxViolations int, warned, warningsEnabled bool) Consequence {
	switch {
	case total >= maxViolations:
		return Terminate
	case total == 1 && !warned && warningsEnabled:
		return Warn
	default:
		return None
	}
}

// WarningMessage builds the human-readable warning for the sink, naming the
// triggering category and the current progress toward termination.
func WarningMessage(snap ledger.Snapshot, maxViolations int) string {
	return fmt.Sprintf("Violation detected: %s. Warning %d/%d — the session will be terminated if further violations occur.",
		snap.Category.Label(), snap.Total, maxViolations)
}

// Config holds the policy's tunables.
type Config struct {
	MaxViolations   int
	WarningsEnabled bool
	SettleDelay     time.Duration
}

// Policy applies Decide to authoritative ledger snapshots and delivers the
// consequences. The warning is total-triggered: it fires once per ledger
// lifetime and is re-armed only by Rearm. Termination, once scheduled, always
// completes; neither reset nor stop cancels the settle timer.
type Policy struct {
	mu          sync.Mutex
	max         int
	warnings    bool
	settleDelay time.Duration
	warned      bool
	terminating bool
	sched       debounce.Scheduler
	onWarning   func(message string)
	onTerminate func()
	logger      zerolog.Logger
}

// NewPolicy creates a policy delivering to the given sinks. Either sink may
// be nil.
func NewPolicy(cfg Config, sched debounce.Scheduler, onWarning func(string), onTerminate func(), logger zerolog.Logger) *Policy {
	if cfg.MaxViolations <= 0 {
		cfg.MaxViolations = DefaultMaxViolations
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = SettleDelay
	}
	return &Policy{
		max:         cfg.MaxViolations,
		warnings:    cfg.WarningsEnabled,
		settleDelay: cfg.SettleDelay,
		sched:       sched,
		onWarning:   onWarning,
		onTerminate: onTerminate,
		logger:      logger.With().Str("component", "escalation").Logger(),
	}
}

// Observe applies the consequence for a post-increment snapshot. It must be
// called synchronously with the authoritative snapshot returned by the
// ledger, never a stale read.
func (p *Policy) Observe(snap ledger.Snapshot) Consequence {
	if !snap.Counted {
		return None
	}

	p.mu.Lock()
	c := Decide(snap.Total, p.max, p.warned, p.warnings)
	switch c {
	case Warn:
		p.warned = true
	case Terminate:
		if p.terminating {
			p.mu.Unlock()
			return None
		}
		p.terminating = true
	}
	p.mu.Unlock()

	switch c {
	case Warn:
		metrics.WarningsIssued.Inc()
		msg := WarningMessage(snap, p.max)
		p.logger.Warn().Int("total", snap.Total).Int("max", p.max).Msg("Warning issued")
		p.deliver("warning", func() {
			if p.onWarning != nil {
				p.onWarning(msg)
			}
		})
	case Terminate:
		p.logger.Warn().
			Int("total", snap.Total).
			Int("max", p.max).
			Dur("settle_delay", p.settleDelay).
			Msg("Violation limit reached, termination scheduled")
		t := p.sched.AfterFunc(p.settleDelay, p.fireTerminate)
		if t == nil {
			// Scheduling failed; terminate without the settle delay rather
			// than let the session run past its limit.
			p.logger.Error().Msg("Settle timer scheduling failed, terminating immediately")
			p.fireTerminate()
		}
	}
	return c
}

func (p *Policy) fireTerminate() {
	metrics.SessionsTerminated.Inc()
	p.logger.Error().Msg("Session terminated")
	p.deliver("terminate", func() {
		if p.onTerminate != nil {
			p.onTerminate()
		}
	})
}

// Rearm re-enables the first warning after a ledger reset. A scheduled
// termination is unaffected.
func (p *Policy) Rearm() {
	p.mu.Lock()
	p.warned = false
	p.mu.Unlock()
}

// deliver isolates a consequence sink from the engine: a panicking sink is
// logged and absorbed, never corrupting engine state.
func (p *Policy) deliver(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Str("sink", name).
				Interface("panic", r).
				Msg("Consequence sink panicked")
		}
	}()
	fn()
}
