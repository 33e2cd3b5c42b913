package ledger

import (
	"testing"
	"time"

	"github.com/examwatch/examwatch/internal/signal"
	"github.com/rs/zerolog"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newTestLedger(active *bool) (*Ledger, *fixedClock) {
	clock := &fixedClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	l := New(func() bool { return *active }, clock.Now, zerolog.Nop())
	return l, clock
}

func TestRecordIncrementsCategoryAndTotal(t *testing.T) {
	active := true
	l, clock := newTestLedger(&active)

	snap := l.Record(signal.CategoryTabSwitch)
	if !snap.Counted {
		t.Fatal("active session record should be counted")
	}
	if snap.Count != 1 || snap.Total != 1 {
		t.Errorf("expected count=1 total=1, got count=%d total=%d", snap.Count, snap.Total)
	}
	if !snap.At.Equal(clock.now) {
		t.Errorf("snapshot time = %v, want %v", snap.At, clock.now)
	}

	clock.now = clock.now.Add(time.Minute)
	snap = l.Record(signal.CategoryFocusLoss)
	if snap.Count != 1 || snap.Total != 2 {
		t.Errorf("categories must count independently: count=%d total=%d", snap.Count, snap.Total)
	}

	snap = l.Record(signal.CategoryTabSwitch)
	if snap.Count != 2 || snap.Total != 3 {
		t.Errorf("expected count=2 total=3, got count=%d total=%d", snap.Count, snap.Total)
	}
}

func TestRecordWhileInactiveIsNoOp(t *testing.T) {
	active := true
	l, _ := newTestLedger(&active)

	l.Record(signal.CategoryTabSwitch)
	active = false

	snap := l.Record(signal.CategoryTabSwitch)
	if snap.Counted {
		t.Fatal("inactive session record must not be counted")
	}
	if snap.Count != 1 || snap.Total != 1 {
		t.Errorf("snapshot should reflect unchanged state: count=%d total=%d", snap.Count, snap.Total)
	}
	if l.Total() != 1 {
		t.Errorf("total changed by inactive record: %d", l.Total())
	}
}

func TestResetZeroesEverything(t *testing.T) {
	active := true
	l, _ := newTestLedger(&active)

	l.Record(signal.CategoryTabSwitch)
	l.Record(signal.CategoryContextMenu)
	l.Record(signal.CategoryContextMenu)

	l.Reset()

	if l.Total() != 0 {
		t.Errorf("total after reset = %d, want 0", l.Total())
	}
	for cat, n := range l.Breakdown() {
		if n != 0 {
			t.Errorf("category %s after reset = %d, want 0", cat, n)
		}
	}

	// Counting continues from zero after reset.
	snap := l.Record(signal.CategoryContextMenu)
	if snap.Count != 1 || snap.Total != 1 {
		t.Errorf("post-reset record: count=%d total=%d, want 1/1", snap.Count, snap.Total)
	}
}

func TestCountsTotalMatchesSum(t *testing.T) {
	active := true
	l, _ := newTestLedger(&active)

	l.Record(signal.CategoryTabSwitch)
	l.Record(signal.CategoryTabSwitch)
	l.Record(signal.CategoryFocusLoss)
	l.Record(signal.CategoryKeyboardShortcut)

	breakdown, total := l.Counts()
	sum := 0
	for _, n := range breakdown {
		sum += n
	}
	if total != 4 || sum != total {
		t.Errorf("total = %d, sum = %d, want both 4", total, sum)
	}
}

func TestBreakdownCoversAllCategoriesAndIsACopy(t *testing.T) {
	active := true
	l, _ := newTestLedger(&active)

	b := l.Breakdown()
	if len(b) != len(signal.Categories()) {
		t.Fatalf("breakdown has %d categories, want %d", len(b), len(signal.Categories()))
	}

	b[signal.CategoryTabSwitch] = 99
	if l.Breakdown()[signal.CategoryTabSwitch] != 0 {
		t.Error("mutating the returned breakdown must not affect the ledger")
	}
}
