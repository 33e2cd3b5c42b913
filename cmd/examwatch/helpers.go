package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/examwatch/examwatch/internal/config"
	"github.com/examwatch/examwatch/internal/session"
	"github.com/examwatch/examwatch/internal/signal"
	"github.com/examwatch/examwatch/internal/storage"
	"github.com/examwatch/examwatch/internal/storage/bolt"
	"github.com/examwatch/examwatch/internal/storage/redis"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

var (
	cyanBold   = color.New(color.FgCyan, color.Bold)
	greenBold  = color.New(color.FgGreen, color.Bold)
	yellowBold = color.New(color.FgYellow, color.Bold)
	redBold    = color.New(color.FgRed, color.Bold)
)

func openStorage(cfg config.StorageConfig) (storage.Store, error) {
	storageType := cfg.Type
	if storageType == "" {
		storageType = "bolt"
	}

	switch storageType {
	case "bolt":
		return bolt.Open(cfg.Path)
	case "redis":
		return redis.Open(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (must be 'bolt' or 'redis')", storageType)
	}
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Set output format
	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	// Default to JSON
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// parseDuration parses a duration string with a fallback
func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// sessionConfig maps the file configuration onto the engine's tunables
func sessionConfig(cfg *config.Config) session.Config {
	sc := session.DefaultConfig()
	sc.MaxViolations = cfg.Monitor.MaxViolations
	sc.DisableWarnings = !cfg.Monitor.EnableWarnings
	sc.SettleDelay = parseDuration(cfg.Monitor.SettleDelay, sc.SettleDelay)
	sc.VisibilityWindow = parseDuration(cfg.Monitor.VisibilityWindow, sc.VisibilityWindow)
	sc.FocusWindow = parseDuration(cfg.Monitor.FocusWindow, sc.FocusWindow)
	sc.RiskMediumAt = cfg.Risk.MediumAt
	sc.RiskHighAt = cfg.Risk.HighAt
	sc.JournalCapacity = cfg.Monitor.JournalCapacity
	return sc
}

// newSessionID generates a random session identifier
func newSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("sess-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// persistSummary converts a session summary into its stored form and saves it
func persistSummary(store storage.Store, sessionID string, startedAt time.Time, sum session.Summary, terminated bool) error {
	breakdown := make(map[string]int, len(sum.Breakdown))
	for cat, n := range sum.Breakdown {
		breakdown[string(cat)] = n
	}

	return store.Summaries().Save(context.Background(), storage.SessionSummary{
		SessionID:       sessionID,
		StartedAt:       startedAt,
		GeneratedAt:     sum.GeneratedAt,
		DurationMinutes: sum.DurationMinutes,
		Total:           sum.Total,
		Breakdown:       breakdown,
		RiskLevel:       string(sum.RiskLevel),
		Terminated:      terminated,
	})
}

func riskColorized(level session.RiskLevel) string {
	switch level {
	case session.RiskHigh:
		return redBold.Sprint("HIGH")
	case session.RiskMedium:
		return yellowBold.Sprint("MEDIUM")
	default:
		return greenBold.Sprint("LOW")
	}
}

// printSummary prints a session summary with colors
func printSummary(sum session.Summary, terminated bool) {
	fmt.Println()
	cyanBold.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	cyanBold.Println("SESSION SUMMARY")
	cyanBold.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	fmt.Printf("Violations: %d\n", sum.Total)
	fmt.Printf("Duration:   %d minutes\n", sum.DurationMinutes)
	fmt.Printf("Risk:       %s\n", riskColorized(sum.RiskLevel))
	if terminated {
		redBold.Println("Session was TERMINATED")
	}
	fmt.Println()

	for _, cat := range signal.Categories() {
		if n := sum.Breakdown[cat]; n > 0 {
			fmt.Printf("  %-22s %d\n", cat.Label(), n)
		}
	}
	fmt.Println()
	cyanBold.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
}
