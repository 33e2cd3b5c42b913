// Package history keeps a bounded trail of recent confirmed violations for
// operator diagnostics. The escalation path never consults it.
package history

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/examwatch/examwatch/internal/signal"
)

// DefaultCapacity bounds the journal when no capacity is configured.
const DefaultCapacity = 50

// Entry is one confirmed violation kept for diagnostics.
type Entry struct {
	Seq      uint64
	Category signal.Category
	At       time.Time
	Details  map[string]any
}

// Journal is a bounded, append-only record of recent violations. Old entries
// are evicted once capacity is reached.
type Journal struct {
	mu    sync.Mutex
	seq   uint64
	cache *lru.Cache[uint64, Entry]
}

// NewJournal creates a journal holding at most capacity entries.
func NewJournal(capacity int) (*Journal, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, err := lru.New[uint64, Entry](capacity)
	if err != nil {
		return nil, err
	}
	return &Journal{cache: cache}, nil
}

// Append records one confirmed violation.
func (j *Journal) Append(cat signal.Category, at time.Time, details map[string]any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seq++
	j.cache.Add(j.seq, Entry{
		Seq:      j.seq,
		Category: cat,
		At:       at,
		Details:  details,
	})
}

// Recent returns the retained entries, oldest first.
func (j *Journal) Recent() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	keys := j.cache.Keys()
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		if e, ok := j.cache.Peek(k); ok {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of retained entries.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cache.Len()
}
