package main

import (
	"fmt"
	"os"
	"time"

	"github.com/examwatch/examwatch/internal/config"
	"github.com/examwatch/examwatch/internal/session"
	"github.com/examwatch/examwatch/internal/trace"
	"github.com/spf13/cobra"
)

var (
	replaySave    bool
	replaySession string
	replayTail    string
)

var replayCmd = &cobra.Command{
	Use:   "replay [flags] TRACE_FILE",
	Short: "Replay a recorded host event trace",
	Long: `Replay a JSON-lines trace of host events through the violation engine on a
virtual clock. The replay is deterministic: debounce windows and the
termination settle delay elapse in trace time, not wall time.`,
	Example: `  examwatch replay session.jsonl
  examwatch -c config.yaml replay --save --session exam-42 session.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replaySave, "save", false, "Persist the session summary to storage")
	replayCmd.Flags().StringVar(&replaySession, "session", "", "Session ID to save under (default: random)")
	replayCmd.Flags().StringVar(&replayTail, "tail", "5s", "Virtual time to advance after the last event")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	tracePath := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	f, err := os.Open(tracePath)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	events, err := trace.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode trace: %w", err)
	}

	player := trace.NewPlayer(time.Now())

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

	monitor, err := session.NewMonitor(player.Host(), sessionConfig(cfg), callbacks, player.Scheduler(), logger)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	if err := monitor.Start(); err != nil {
		return fmt.Errorf("failed to start monitoring: %w", err)
	}

	player.Run(events, parseDuration(replayTail, 5*time.Second))
	monitor.Stop()

	sum := monitor.Summary()
	printSummary(sum, monitor.Terminated())

	if replaySave {
		sessionID := replaySession
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

	return nil
}
