package main

import (
	"context"
	"fmt"
	"time"

	"github.com/examwatch/examwatch/internal/config"
	"github.com/examwatch/examwatch/internal/session"
	"github.com/spf13/cobra"
)

var pruneOlderThan string

var summariesCmd = &cobra.Command{
	Use:   "summaries",
	Short: "Inspect stored session summaries",
	Long:  `List, show, and prune session summaries persisted by replay or watch.`,
}

var summariesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored session summaries",
	RunE:  runSummariesList,
}

var summariesShowCmd = &cobra.Command{
	Use:   "show SESSION_ID",
	Short: "Show one stored session summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummariesShow,
}

var summariesPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete summaries older than a cutoff",
	RunE:  runSummariesPrune,
}

func init() {
	summariesPruneCmd.Flags().StringVar(&pruneOlderThan, "older-than", "720h", "Delete summaries generated earlier than now minus this duration")

	summariesCmd.AddCommand(summariesListCmd)
	summariesCmd.AddCommand(summariesShowCmd)
	summariesCmd.AddCommand(summariesPruneCmd)
	rootCmd.AddCommand(summariesCmd)
}

func runSummariesList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	summaries, err := store.Summaries().List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list summaries: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Println("No stored summaries.")
		return nil
	}

	fmt.Printf("%-18s %-20s %-10s %-6s %-10s %s\n", "SESSION", "GENERATED", "VIOLATIONS", "MINS", "RISK", "TERMINATED")
	for _, s := range summaries {
		fmt.Printf("%-18s %-20s %-10d %-6d %-10s %v\n",
			s.SessionID,
			s.GeneratedAt.Format("2006-01-02 15:04:05"),
			s.Total,
			s.DurationMinutes,
			riskColorized(session.RiskLevel(s.RiskLevel)),
			s.Terminated,
		)
	}

	return nil
}

func runSummariesShow(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	s, err := store.Summaries().Get(context.Background(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to load summary %s: %w", sessionID, err)
	}

	fmt.Println()
	cyanBold.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	cyanBold.Printf("SESSION %s\n", s.SessionID)
	cyanBold.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	fmt.Printf("Started:    %s\n", s.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Generated:  %s\n", s.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Duration:   %d minutes\n", s.DurationMinutes)
	fmt.Printf("Violations: %d\n", s.Total)
	fmt.Printf("Risk:       %s\n", riskColorized(session.RiskLevel(s.RiskLevel)))
	if s.Terminated {
		redBold.Println("Session was TERMINATED")
	}
	fmt.Println()

	for cat, n := range s.Breakdown {
		if n > 0 {
			fmt.Printf("  %-22s %d\n", cat, n)
		}
	}
	fmt.Println()

	return nil
}

func runSummariesPrune(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	olderThan, err := time.ParseDuration(pruneOlderThan)
	if err != nil {
		return fmt.Errorf("invalid --older-than duration: %w", err)
	}

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	cutoff := time.Now().Add(-olderThan)
	n, err := store.Summaries().DeleteBefore(context.Background(), cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune summaries: %w", err)
	}

	fmt.Printf("Deleted %d summaries generated before %s\n", n, cutoff.Format("2006-01-02 15:04:05"))
	return nil
}
