package session

import (
	"time"

	"github.com/examwatch/examwatch/internal/debounce"
	"github.com/examwatch/examwatch/internal/escalate"
	"github.com/examwatch/examwatch/internal/history"
	"github.com/examwatch/examwatch/internal/signal"
)

// Config holds a monitor's tunables. Configuration is constructor-injected;
// there is no ambient state, so independent sessions can coexist in one
// process.
type Config struct {
	MaxViolations int
	// DisableWarnings turns the escalation warning off. Inverted so the zero
	// value keeps warnings enabled.
	DisableWarnings  bool
	SettleDelay      time.Duration
	VisibilityWindow time.Duration
	FocusWindow      time.Duration
	RiskMediumAt     int
	RiskHighAt       int
	JournalCapacity  int
}

// DefaultConfig returns the stock configuration: terminate at 2 violations,
// warnings on, 1.5s/3s confirmation windows, risk medium at 1 and high at 3.
func DefaultConfig() Config {
	return Config{
		MaxViolations:    escalate.DefaultMaxViolations,
		SettleDelay:      escalate.SettleDelay,
		VisibilityWindow: debounce.VisibilityWindow,
		FocusWindow:      debounce.FocusWindow,
		RiskMediumAt:     1,
		RiskHighAt:       3,
		JournalCapacity:  history.DefaultCapacity,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxViolations <= 0 {
		c.MaxViolations = def.MaxViolations
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = def.SettleDelay
	}
	if c.VisibilityWindow <= 0 {
		c.VisibilityWindow = def.VisibilityWindow
	}
	if c.FocusWindow <= 0 {
		c.FocusWindow = def.FocusWindow
	}
	if c.RiskMediumAt <= 0 {
		c.RiskMediumAt = def.RiskMediumAt
	}
	if c.RiskHighAt <= c.RiskMediumAt {
		c.RiskHighAt = c.RiskMediumAt + 2
	}
	if c.JournalCapacity <= 0 {
		c.JournalCapacity = def.JournalCapacity
	}
	return c
}

// RiskLevel grades a session's aggregate violation count.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Summary is the derived, read-only snapshot of a session. It is computed on
// demand and never persisted by the engine itself.
type Summary struct {
	Total           int
	DurationMinutes int
	Breakdown       map[signal.Category]int
	RiskLevel       RiskLevel
	GeneratedAt     time.Time
}

// ViolationEvent is handed to OnViolation after every counted signal.
type ViolationEvent struct {
	Category  signal.Category
	Count     int
	Total     int
	Details   map[string]any
	Timestamp time.Time
}

// Callbacks are the monitor's outward sinks. Any of them may be nil. Sink
// failures are isolated: a panicking callback never corrupts the ledger or
// blocks later signals.
type Callbacks struct {
	// OnViolation is invoked synchronously after every confirmed and counted
	// signal.
	OnViolation func(ViolationEvent)
	// OnWarning receives the human-readable escalation warning.
	OnWarning func(message string)
	// OnTerminate fires once the settle delay after the violation limit is
	// reached.
	OnTerminate func()
	// OnNotice receives lifecycle notifications (monitoring activated or
	// stopped) for the host's toast presentation.
	OnNotice func(message string)
	// OnDiagnostic is called once per degraded adapter channel.
	OnDiagnostic func(channel string, err error)
}
