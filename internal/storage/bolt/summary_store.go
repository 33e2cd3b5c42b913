package bolt

import (
	"context"
	"time"

	"github.com/examwatch/examwatch/internal/storage"
	"go.etcd.io/bbolt"
)

type summaryStore struct {
	db *bbolt.DB
}

func (s *summaryStore) Save(ctx context.Context, summary storage.SessionSummary) error {
	return putBucketValue(ctx, s.db, bucketSummaries, summary.SessionID, summary)
}

func (s *summaryStore) Get(ctx context.Context, sessionID string) (*storage.SessionSummary, error) {
	return getBucketValue[storage.SessionSummary](ctx, s.db, bucketSummaries, sessionID)
}

func (s *summaryStore) List(ctx context.Context) ([]storage.SessionSummary, error) {
	return listBucket[storage.SessionSummary](ctx, s.db, bucketSummaries)
}

func (s *summaryStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	deleted := 0
	return deleted, s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketSummaries))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var summary storage.SessionSummary
			if err := unmarshal(v, &summary); err != nil {
				return err
			}
			if summary.GeneratedAt.Before(cutoff) {
				if err := c.Delete(); err != nil {
					return err
				}
				deleted++
			}
		}
		return nil
	})
}
