package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/examwatch/examwatch/internal/storage"
	"github.com/redis/go-redis/v9"
)

const summaryIndexKey = "examwatch:summaries"

type summaryStore struct {
	client *redis.Client
}

func summaryKey(sessionID string) string {
	return fmt.Sprintf("examwatch:summary:%s", sessionID)
}

// Save persists a session summary as a hash and indexes it for listing.
func (s *summaryStore) Save(ctx context.Context, summary storage.SessionSummary) error {
	breakdown, err := json.Marshal(summary.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}

	terminated := "0"
	if summary.Terminated {
		terminated = "1"
	}

	key := summaryKey(summary.SessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"session_id":       summary.SessionID,
		"started_at":       summary.StartedAt.Format(time.RFC3339Nano),
		"generated_at":     summary.GeneratedAt.Format(time.RFC3339Nano),
		"duration_minutes": summary.DurationMinutes,
		"total":            summary.Total,
		"breakdown":        string(breakdown),
		"risk_level":       summary.RiskLevel,
		"terminated":       terminated,
	})
	pipe.SAdd(ctx, summaryIndexKey, summary.SessionID)
	_, err = pipe.Exec(ctx)
	return err
}

// Get retrieves a summary by session ID.
func (s *summaryStore) Get(ctx context.Context, sessionID string) (*storage.SessionSummary, error) {
	data, err := s.client.HGetAll(ctx, summaryKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}
	return parseSessionSummary(data)
}

// List returns all persisted summaries.
func (s *summaryStore) List(ctx context.Context) ([]storage.SessionSummary, error) {
	sessionIDs, err := s.client.SMembers(ctx, summaryIndexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(sessionIDs) == 0 {
		return []storage.SessionSummary{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(sessionIDs))
	for i, id := range sessionIDs {
		cmds[i] = pipe.HGetAll(ctx, summaryKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	summaries := make([]storage.SessionSummary, 0, len(sessionIDs))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil || len(data) == 0 {
			continue
		}
		summary, err := parseSessionSummary(data)
		if err == nil {
			summaries = append(summaries, *summary)
		}
	}
	return summaries, nil
}

// DeleteBefore removes summaries generated before the cutoff.
func (s *summaryStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	sessionIDs, err := s.client.SMembers(ctx, summaryIndexKey).Result()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, id := range sessionIDs {
		generatedAt, err := s.client.HGet(ctx, summaryKey(id), "generated_at").Result()
		if err == redis.Nil {
			// Stale index entry; drop it.
			s.client.SRem(ctx, summaryIndexKey, id)
			continue
		}
		if err != nil {
			return deleted, err
		}

		ts, err := time.Parse(time.RFC3339Nano, generatedAt)
		if err != nil {
			continue
		}
		if !ts.Before(cutoff) {
			continue
		}

		if err := s.client.Del(ctx, summaryKey(id)).Err(); err != nil {
			return deleted, err
		}
		s.client.SRem(ctx, summaryIndexKey, id)
		deleted++
	}
	return deleted, nil
}
