// Package storage defines the persistence collaborator for end-of-session
// violation summaries. The engine itself never persists; the host hands a
// summary to a Store when the session ends.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// Store represents the root storage interface.
type Store interface {
	Close() error
	Summaries() SummaryStore
}

// SummaryStore manages persisted session summaries.
type SummaryStore interface {
	Save(ctx context.Context, summary SessionSummary) error
	Get(ctx context.Context, sessionID string) (*SessionSummary, error)
	List(ctx context.Context) ([]SessionSummary, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}
