package history

import (
	"testing"
	"time"

	"github.com/examwatch/examwatch/internal/signal"
)

func TestJournalAppendAndRecent(t *testing.T) {
	j, err := NewJournal(10)
	if err != nil {
		t.Fatalf("NewJournal failed: %v", err)
	}

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	j.Append(signal.CategoryTabSwitch, at, map[string]any{"reason": "document hidden"})
	j.Append(signal.CategoryContextMenu, at.Add(time.Minute), nil)

	entries := j.Recent()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Category != signal.CategoryTabSwitch || entries[1].Category != signal.CategoryContextMenu {
		t.Errorf("entries out of order: %v", entries)
	}
	if entries[0].Seq >= entries[1].Seq {
		t.Error("sequence numbers must increase")
	}
	if entries[0].Details["reason"] != "document hidden" {
		t.Errorf("details not retained: %v", entries[0].Details)
	}
}

func TestJournalEvictsOldestAtCapacity(t *testing.T) {
	j, err := NewJournal(3)
	if err != nil {
		t.Fatalf("NewJournal failed: %v", err)
	}

	at := time.Now()
	for i := 0; i < 5; i++ {
		j.Append(signal.CategoryFocusLoss, at, nil)
	}

	if j.Len() != 3 {
		t.Fatalf("expected 3 retained entries, got %d", j.Len())
	}

	entries := j.Recent()
	if entries[0].Seq != 3 || entries[2].Seq != 5 {
		t.Errorf("expected entries 3..5, got %d..%d", entries[0].Seq, entries[2].Seq)
	}
}

func TestJournalDefaultCapacity(t *testing.T) {
	j, err := NewJournal(0)
	if err != nil {
		t.Fatalf("NewJournal failed: %v", err)
	}

	at := time.Now()
	for i := 0; i < DefaultCapacity+10; i++ {
		j.Append(signal.CategoryTabSwitch, at, nil)
	}

	if j.Len() != DefaultCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultCapacity, j.Len())
	}
}
