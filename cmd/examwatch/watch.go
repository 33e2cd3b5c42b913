package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/examwatch/examwatch/internal/config"
	"github.com/examwatch/examwatch/internal/debounce"
	"github.com/examwatch/examwatch/internal/metrics"
	"github.com/examwatch/examwatch/internal/session"
	"github.com/examwatch/examwatch/internal/trace"
	"github.com/spf13/cobra"
)

var (
	watchSave    bool
	watchSession string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor a live session from host events on stdin",
	Long: `Watch reads JSON-lines host events from stdin and feeds them to the
violation engine in real time. Event offsets are ignored; each line takes
effect when it arrives. The session stops at EOF.`,
	Example: `  event-bridge | examwatch -c config.yaml watch --save`,
	RunE:    runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchSave, "save", false, "Persist the session summary to storage")
	watchCmd.Flags().StringVar(&watchSession, "session", "", "Session ID to save under (default: random)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting ExamWatch")

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr, logger)
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		logger.Info().Str("addr", cfg.Metrics.Addr).Msg("Metrics Server started")
	}

	host := trace.NewScriptedHost()
	sched := debounce.NewScheduler()

	callbacks := session.Callbacks{
		OnViolation: func(ev session.ViolationEvent) {
			yellowBold.Printf("VIOLATION  ")
			fmt.Printf("%-22s count=%d total=%d\n", ev.Category.Label(), ev.Count, ev.Total)
		},
		OnWarning: func(msg string) {
			yellowBold.Println("WARNING    " + msg)
		},
		OnTerminate: func() {
			redBold.Println("TERMINATED Violation limit reached, session terminated")
		},
		OnNotice: func(msg string) {
			fmt.Println("NOTICE     " + msg)
		},
		OnDiagnostic: func(channel string, err error) {
			fmt.Printf("DEGRADED   channel %s unavailable: %v\n", channel, err)
		},
	}

	monitor, err := session.NewMonitor(host, sessionConfig(cfg), callbacks, sched, logger)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	if err := monitor.Start(); err != nil {
		return fmt.Errorf("failed to start monitoring: %w", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ev, err := trace.DecodeLine([]byte(line))
		if err != nil {
			logger.Warn().Err(err).Msg("Skipping malformed event")
			continue
		}
		host.Deliver(ev.Kind, sched.Now(), ev.Detail)
	}
	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Msg("Event stream read failed")
	}

	// Let pending confirmation windows and a scheduled termination settle
	// before the summary is taken.
	time.Sleep(settleGrace(cfg))
	monitor.Stop()

	sum := monitor.Summary()
	printSummary(sum, monitor.Terminated())

	if watchSave {
		sessionID := watchSession
		if sessionID == "" {
			sessionID = newSessionID()
		}

		store, err := openStorage(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		if err := persistSummary(store, sessionID, monitor.StartedAt(), sum, monitor.Terminated()); err != nil {
			return fmt.Errorf("failed to save summary: %w", err)
		}
		fmt.Printf("Summary saved as session %s\n", sessionID)
	}

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping Metrics Server")
		}
	}

	logger.Info().Msg("ExamWatch stopped")
	return nil
}

// settleGrace is the longest interval a confirmed-but-uncommitted signal or a
// scheduled termination can still be in flight after the last event.
func settleGrace(cfg *config.Config) time.Duration {
	sc := sessionConfig(cfg)
	grace := sc.VisibilityWindow
	if sc.FocusWindow > grace {
		grace = sc.FocusWindow
	}
	if sc.SettleDelay > grace {
		grace = sc.SettleDelay
	}
	return grace + 100*time.Millisecond
}
