package session

import (
	"strings"
	"testing"
	"time"

	"github.com/examwatch/examwatch/internal/debounce"
	"github.com/examwatch/examwatch/internal/signal"
	"github.com/examwatch/examwatch/internal/trace"
	"github.com/rs/zerolog"
)

var testStart = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	host        *trace.ScriptedHost
	sched       *debounce.ManualScheduler
	monitor     *Monitor
	violations  []ViolationEvent
	warnings    []string
	notices     []string
	diagnostics []string
	terminated  int
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	f := &fixture{
		host:  trace.NewScriptedHost(),
		sched: debounce.NewManualScheduler(testStart),
	}

	cb := Callbacks{
		OnViolation:  func(ev ViolationEvent) { f.violations = append(f.violations, ev) },
		OnWarning:    func(msg string) { f.warnings = append(f.warnings, msg) },
		OnTerminate:  func() { f.terminated++ },
		OnNotice:     func(msg string) { f.notices = append(f.notices, msg) },
		OnDiagnostic: func(channel string, err error) { f.diagnostics = append(f.diagnostics, channel) },
	}

	m, err := NewMonitor(f.host, cfg, cb, f.sched, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMonitor failed: %v", err)
	}
	f.monitor = m
	return f
}

func (f *fixture) deliver(kind signal.Kind, detail map[string]any) {
	f.host.Deliver(kind, f.sched.Now(), detail)
}

func TestTwoTabSwitchesWarnThenTerminate(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// First tab switch: hidden long enough to confirm.
	f.deliver(signal.KindVisibilityHidden, nil)
	f.sched.Advance(debounce.VisibilityWindow)

	if len(f.violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(f.violations))
	}
	if f.violations[0].Category != signal.CategoryTabSwitch {
		t.Errorf("unexpected category %s", f.violations[0].Category)
	}
	if len(f.warnings) != 1 {
		t.Fatalf("first violation should warn, got %d warnings", len(f.warnings))
	}
	if !strings.Contains(f.warnings[0], "tab switch") {
		t.Errorf("warning should name the category: %q", f.warnings[0])
	}

	// Candidate returns, then leaves again.
	f.deliver(signal.KindVisibilityVisible, nil)
	f.sched.Advance(10 * time.Second)
	f.deliver(signal.KindVisibilityHidden, nil)
	f.sched.Advance(debounce.VisibilityWindow)

	if len(f.violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(f.violations))
	}
	if f.monitor.Terminated() {
		t.Fatal("termination must wait for the settle delay")
	}

	f.sched.Advance(2 * time.Second)
	if f.terminated != 1 || !f.monitor.Terminated() {
		t.Errorf("expected termination after settle delay, terminated=%d", f.terminated)
	}
	if len(f.warnings) != 1 {
		t.Errorf("only the first violation warns, got %d warnings", len(f.warnings))
	}
}

func TestWarningsEnabledOnZeroValueConfig(t *testing.T) {
	// A partially filled Config must behave like the documented defaults:
	// warnings stay on unless explicitly disabled.
	f := newFixture(t, Config{MaxViolations: 5})
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	f.deliver(signal.KindContextMenu, nil)

	if len(f.warnings) != 1 {
		t.Fatalf("first violation should warn, got %d warnings", len(f.warnings))
	}
}

func TestWarningsCanBeDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxViolations = 5
	cfg.DisableWarnings = true
	f := newFixture(t, cfg)
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	f.deliver(signal.KindContextMenu, nil)

	if len(f.warnings) != 0 {
		t.Fatalf("warnings disabled but %d delivered", len(f.warnings))
	}
}

func TestImmediateChannelsEscalateToTermination(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Context menu confirms without a window.
	f.deliver(signal.KindContextMenu, nil)
	if len(f.violations) != 1 || f.violations[0].Count != 1 || f.violations[0].Total != 1 {
		t.Fatalf("unexpected first violation: %+v", f.violations)
	}
	if len(f.warnings) != 1 {
		t.Fatalf("expected warning at total=1, got %d", len(f.warnings))
	}

	// A prohibited shortcut pushes total to the limit.
	f.deliver(signal.KindKeyDown, map[string]any{"key": "t", "ctrl": true})
	if len(f.violations) != 2 || f.violations[1].Total != 2 {
		t.Fatalf("unexpected second violation: %+v", f.violations)
	}

	f.sched.Advance(2 * time.Second)
	if f.terminated != 1 {
		t.Errorf("expected 1 termination, got %d", f.terminated)
	}

	// Further signals cannot terminate again.
	f.deliver(signal.KindContextMenu, nil)
	f.sched.Advance(time.Minute)
	if f.terminated != 1 {
		t.Errorf("termination must fire exactly once, got %d", f.terminated)
	}
}

func TestBriefHideIsNotAViolation(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	f.deliver(signal.KindVisibilityHidden, nil)
	f.sched.Advance(time.Second)
	f.deliver(signal.KindVisibilityVisible, nil)
	f.sched.Advance(time.Minute)

	if len(f.violations) != 0 {
		t.Errorf("hide shorter than the window must not count, got %d", len(f.violations))
	}
	if sum := f.monitor.Summary(); sum.Total != 0 {
		t.Errorf("summary total = %d, want 0", sum.Total)
	}
}

func TestBriefFocusStealIsNotAViolation(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	f.deliver(signal.KindWindowBlur, nil)
	f.sched.Advance(2 * time.Second)
	f.deliver(signal.KindWindowFocus, nil)
	f.sched.Advance(time.Minute)

	if len(f.violations) != 0 {
		t.Errorf("blur shorter than the focus window must not count, got %d", len(f.violations))
	}

	// A sustained blur does count.
	f.deliver(signal.KindWindowBlur, nil)
	f.sched.Advance(debounce.FocusWindow)
	if len(f.violations) != 1 || f.violations[0].Category != signal.CategoryFocusLoss {
		t.Errorf("sustained blur should count as focus loss, got %v", f.violations)
	}
}

func TestResetRearmsWarning(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxViolations = 5
	f := newFixture(t, cfg)
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Context menus confirm immediately.
	f.deliver(signal.KindContextMenu, nil)
	if len(f.warnings) != 1 {
		t.Fatalf("expected warning on first violation, got %d", len(f.warnings))
	}

	f.deliver(signal.KindContextMenu, nil)
	if len(f.warnings) != 1 {
		t.Fatalf("second violation must not warn again, got %d", len(f.warnings))
	}

	f.monitor.Reset()
	if sum := f.monitor.Summary(); sum.Total != 0 {
		t.Fatalf("total after reset = %d, want 0", sum.Total)
	}

	f.deliver(signal.KindContextMenu, nil)
	if len(f.warnings) != 2 {
		t.Errorf("first violation after reset should warn again, got %d warnings", len(f.warnings))
	}
}

func TestStopDropsLateDebounceTimer(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	f.deliver(signal.KindVisibilityHidden, nil)
	f.sched.Advance(500 * time.Millisecond)
	f.monitor.Stop()

	// The pending window elapses after stop; the commit-time check drops it.
	f.sched.Advance(10 * time.Second)

	if len(f.violations) != 0 {
		t.Errorf("signal confirmed after stop must not count, got %d", len(f.violations))
	}
	if sum := f.monitor.Summary(); sum.Total != 0 {
		t.Errorf("summary total = %d, want 0", sum.Total)
	}
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	started := f.monitor.StartedAt()

	f.sched.Advance(time.Minute)
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	if !f.monitor.StartedAt().Equal(started) {
		t.Error("second Start must keep the original start time")
	}

	f.monitor.Stop()
	f.monitor.Stop()
	if f.monitor.Active() {
		t.Error("monitor should be inactive after Stop")
	}

	// One activation notice and one stop notice despite the double calls.
	if len(f.notices) != 2 {
		t.Errorf("expected 2 notices, got %d: %v", len(f.notices), f.notices)
	}
}

func TestMonitorRestartsAfterStop(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	f.deliver(signal.KindContextMenu, nil)
	f.monitor.Stop()

	f.sched.Advance(time.Hour)
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}

	// Counters survive stop/start; only Reset clears them.
	f.deliver(signal.KindContextMenu, nil)
	if sum := f.monitor.Summary(); sum.Total != 2 {
		t.Errorf("total after restart = %d, want 2", sum.Total)
	}
}

func TestProhibitedShortcutCountsAndIsCancelled(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	f.deliver(signal.KindKeyDown, map[string]any{"key": "w", "ctrl": true})

	if f.host.Cancelled() != 1 {
		t.Errorf("prohibited shortcut should be cancelled on the host, got %d", f.host.Cancelled())
	}
	if len(f.violations) != 1 || f.violations[0].Category != signal.CategoryKeyboardShortcut {
		t.Fatalf("expected one keyboard violation, got %v", f.violations)
	}
	if f.violations[0].Details["combination"] != "Ctrl+W" {
		t.Errorf("violation should carry the combination, got %v", f.violations[0].Details)
	}

	// Ordinary typing is untouched.
	f.deliver(signal.KindKeyDown, map[string]any{"key": "a"})
	if f.host.Cancelled() != 1 || len(f.violations) != 1 {
		t.Error("ordinary key must not be cancelled or counted")
	}
}

func TestNavigationAttemptPromptsButNeverCounts(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	f.deliver(signal.KindBeforeUnload, nil)

	prompts := f.host.Confirmations()
	if len(prompts) != 1 || prompts[0] != signal.LeavePrompt {
		t.Errorf("expected leave prompt, got %v", prompts)
	}
	if len(f.violations) != 0 {
		t.Error("navigation attempts must not count as violations")
	}
}

func TestUnsupportedChannelDegradesThatAdapterOnly(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.host.DropChannel(signal.KindKeyDown)

	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start must succeed with a degraded channel: %v", err)
	}

	if len(f.diagnostics) != 1 || f.diagnostics[0] != "keyboard" {
		t.Errorf("expected a single keyboard diagnostic, got %v", f.diagnostics)
	}

	// The other channels keep working.
	f.deliver(signal.KindContextMenu, nil)
	if len(f.violations) != 1 {
		t.Errorf("remaining adapters should still emit, got %d violations", len(f.violations))
	}
}

func TestSummaryRiskLevels(t *testing.T) {
	tests := []struct {
		name       string
		violations int
		want       RiskLevel
	}{
		{"clean session", 0, RiskLow},
		{"one violation", 1, RiskMedium},
		{"two violations", 2, RiskMedium},
		{"three violations", 3, RiskHigh},
		{"many violations", 6, RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MaxViolations = 100
			f := newFixture(t, cfg)
			if err := f.monitor.Start(); err != nil {
				t.Fatalf("Start failed: %v", err)
			}

			for i := 0; i < tt.violations; i++ {
				f.deliver(signal.KindContextMenu, nil)
			}

			sum := f.monitor.Summary()
			if sum.Total != tt.violations {
				t.Fatalf("total = %d, want %d", sum.Total, tt.violations)
			}
			if sum.RiskLevel != tt.want {
				t.Errorf("risk = %s, want %s", sum.RiskLevel, tt.want)
			}
		})
	}
}

func TestSummaryDurationUsesStopTime(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	f.sched.Advance(12 * time.Minute)
	f.monitor.Stop()
	f.sched.Advance(time.Hour)

	sum := f.monitor.Summary()
	if sum.DurationMinutes != 12 {
		t.Errorf("duration = %d minutes, want 12", sum.DurationMinutes)
	}
}

func TestRecentJournalKeepsConfirmedViolations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxViolations = 100
	cfg.JournalCapacity = 2
	f := newFixture(t, cfg)
	if err := f.monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	f.deliver(signal.KindContextMenu, nil)
	f.deliver(signal.KindKeyDown, map[string]any{"key": "f5"})
	f.deliver(signal.KindContextMenu, nil)

	entries := f.monitor.Recent()
	if len(entries) != 2 {
		t.Fatalf("expected 2 retained entries, got %d", len(entries))
	}
	if entries[0].Category != signal.CategoryKeyboardShortcut || entries[1].Category != signal.CategoryContextMenu {
		t.Errorf("oldest entries should be evicted first: %v", entries)
	}
}

func TestPanickingCallbackDoesNotBreakCounting(t *testing.T) {
	host := trace.NewScriptedHost()
	sched := debounce.NewManualScheduler(testStart)

	cfg := DefaultConfig()
	cfg.MaxViolations = 100
	m, err := NewMonitor(host, cfg, Callbacks{
		OnViolation: func(ViolationEvent) { panic("violation sink down") },
		OnWarning:   func(string) { panic("warning sink down") },
	}, sched, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMonitor failed: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	host.Deliver(signal.KindContextMenu, sched.Now(), nil)
	host.Deliver(signal.KindContextMenu, sched.Now(), nil)

	if sum := m.Summary(); sum.Total != 2 {
		t.Errorf("ledger must be unaffected by sink panics, total = %d", sum.Total)
	}
}
