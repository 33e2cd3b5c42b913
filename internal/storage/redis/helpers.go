package redis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/examwatch/examwatch/internal/storage"
)

// parseSessionSummary converts a Redis hash to SessionSummary
func parseSessionSummary(data map[string]string) (*storage.SessionSummary, error) {
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	startedAt, err := time.Parse(time.RFC3339Nano, data["started_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}

	generatedAt, err := time.Parse(time.RFC3339Nano, data["generated_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse generated_at: %w", err)
	}

	durationMinutes, err := strconv.Atoi(data["duration_minutes"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse duration_minutes: %w", err)
	}

	total, err := strconv.Atoi(data["total"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse total: %w", err)
	}

	var breakdown map[string]int
	if raw := data["breakdown"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &breakdown); err != nil {
			return nil, fmt.Errorf("failed to parse breakdown: %w", err)
		}
	}

	terminated, err := strconv.ParseBool(data["terminated"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse terminated: %w", err)
	}

	return &storage.SessionSummary{
		SessionID:       data["session_id"],
		StartedAt:       startedAt,
		GeneratedAt:     generatedAt,
		DurationMinutes: durationMinutes,
		Total:           total,
		Breakdown:       breakdown,
		RiskLevel:       data["risk_level"],
		Terminated:      terminated,
	}, nil
}
