package storage

import "time"

// SessionSummary is the persisted end-of-session violation report.
type SessionSummary struct {
	SessionID       string         `json:"session_id"`
	StartedAt       time.Time      `json:"started_at"`
	GeneratedAt     time.Time      `json:"generated_at"`
	DurationMinutes int            `json:"duration_minutes"`
	Total           int            `json:"total"`
	Breakdown       map[string]int `json:"breakdown"`
	RiskLevel       string         `json:"risk_level"`
	Terminated      bool           `json:"terminated"`
}
