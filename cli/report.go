package cli

// This file contains the report command for printing a collected run.

import (
	"encoding/json"
	"fmt"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/azirolabs/resultdash/collector"
	"github.com/urfave/cli/v2"
)

func (a *App) report(ctx *cli.Context) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	run := collector.New(a.logger, cfg).Collect()

	if ctx.Bool("json") {
		out, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode run result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if run.Err != "" {
		fmt.Printf("Report error: %s\n", run.Err)
		return nil
	}
	if run.Total == 0 {
		fmt.Printf("No test results found in %s\n", cfg.ReportPath())
		return nil
	}

	status := "✓"
	if run.Failed > 0 {
		status = "✗"
	}

	fmt.Printf("\n=== Test Run: %s ===\n\n", run.BuildNumber)
	fmt.Printf("%s  %s\n", status, run.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("   Total: %d  Passed: %d  Failed: %d  Skipped: %d  (%.1f%% pass rate)\n",
		run.Total, run.Passed, run.Failed, run.Skipped, run.PassRate())
	fmt.Printf("   Duration: %.1fs\n", run.Duration())
	if run.LogFile != "" {
		fmt.Printf("   Log: %s\n", run.LogFile)
	}

	failed := run.FailedTests()
	if len(failed) == 0 {
		fmt.Println()
		return nil
	}

	fmt.Printf("\nFailed tests:\n\n")
	for _, t := range failed {
		fmt.Printf("✗  %s  [%.2fs]\n", t.Name, t.Duration)
		if line := firstErrorLine(t.Error); line != "" {
			fmt.Printf("   %s\n", line)
		}
		if t.Log != nil {
			fmt.Printf("   View log: %s\n", logCurlCommand(cfg.Port, t.Name))
		}
	}
	fmt.Println()

	return nil
}

// logCurlCommand renders a ready-to-run curl invocation for a test's log
// slice. Test names carry "::" separators and bracketed parameters, so the
// URL is shell-quoted and curl globbing is disabled.
func logCurlCommand(port int, name string) string {
	url := fmt.Sprintf("http://localhost:%d/log/%s", port, name)
	return fmt.Sprintf("curl -g %s", shellescape.Quote(url))
}

// firstErrorLine returns the first non-blank line of an error text.
func firstErrorLine(errText string) string {
	for _, line := range strings.Split(errText, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
