package cli

// This file contains the history command for listing recorded test runs.

import (
	"fmt"
	"time"

	"github.com/azirolabs/resultdash/collector"
	"github.com/urfave/cli/v2"
)

func (a *App) history(ctx *cli.Context) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	entries := collector.New(a.logger, cfg).History()
	if len(entries) == 0 {
		fmt.Println("No test run history found")
		return nil
	}

	fmt.Printf("\n=== Run History (%d total) ===\n\n", len(entries))

	for _, entry := range entries {
		// Entries are stored newest first
		status := "✓"
		if entry.Failed > 0 {
			status = "✗"
		}

		timestamp := entry.Timestamp
		if ts, err := time.Parse(time.RFC3339, entry.Timestamp); err == nil {
			timestamp = ts.Format("2006-01-02 15:04:05")
		}
		if timestamp == "" {
			timestamp = "unknown"
		}

		fmt.Printf("%s  %s  build=%s\n", status, timestamp, entry.BuildNumber)
		fmt.Printf("   Total: %d  Passed: %d  Failed: %d  Skipped: %d  (%.1f%% pass rate)\n",
			entry.Total, entry.Passed, entry.Failed, entry.Skipped, entry.PassRate)
		if entry.Duration > 0 {
			fmt.Printf("   Duration: %.1fs\n", entry.Duration)
		}
		if entry.ProductName != "" {
			fmt.Printf("   Product: %s\n", entry.ProductName)
		}
		fmt.Println()
	}

	fmt.Printf("History file: %s\n", cfg.HistoryPath())

	return nil
}
