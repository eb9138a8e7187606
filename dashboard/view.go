package dashboard

// This file contains the view structs handed to the page templates and
// the formatting helpers that fill them.

import (
	"fmt"
	"net/url"
	"time"

	"github.com/azirolabs/resultdash/model"
)

type dashboardView struct {
	ProductName string
	BuildNumber string
	Timestamp   string
	LogFile     string
	Err         string

	Total    int
	Passed   int
	Failed   int
	Skipped  int
	PassRate string
	Duration string

	Tests       []testRow
	FailedTests []failedCard
	History     []historyRow
}

type testRow struct {
	Name     string
	Feature  string
	Status   string
	Duration string
}

type failedCard struct {
	Index    int
	Name     string
	Feature  string
	Duration string
	Summary  [2]string
	Error    string
	LogURL   string
}

type historyRow struct {
	BuildNumber string
	Timestamp   string
	Total       int
	Passed      int
	Failed      int
	Skipped     int
	PassRate    float64
	Duration    string
	Badge       string
	BadgeClass  string
}

func buildView(productName string, run *model.RunResult, entries []model.HistoryEntry) dashboardView {
	v := dashboardView{
		ProductName: productName,
		BuildNumber: "N/A",
		Timestamp:   "N/A",
		LogFile:     run.LogFile,
		Err:         run.Err,
		Total:       run.Total,
		Passed:      run.Passed,
		Failed:      run.Failed,
		Skipped:     run.Skipped,
		PassRate:    fmt.Sprintf("%.1f", run.PassRate()),
		Duration:    fmtDuration(run.Duration()),
	}
	if run.BuildNumber != "" {
		v.BuildNumber = run.BuildNumber
	}
	if !run.Timestamp.IsZero() {
		v.Timestamp = run.Timestamp.Format("2006-01-02 15:04:05")
	}

	for _, t := range run.Tests {
		v.Tests = append(v.Tests, testRow{
			Name:     t.Name,
			Feature:  t.Feature,
			Status:   string(t.Status),
			Duration: fmtSeconds(t.Duration),
		})
	}

	for i, t := range run.FailedTests() {
		card := failedCard{
			Index:    i + 1,
			Name:     t.Name,
			Feature:  t.Feature,
			Duration: fmtSeconds(t.Duration),
			Summary:  summaryLines(t.Error),
			Error:    t.Error,
		}
		if t.Log != nil {
			card.LogURL = "/log/" + url.PathEscape(t.Name)
		}
		v.FailedTests = append(v.FailedTests, card)
	}

	for _, e := range entries {
		badge, class := historyBadge(e)
		v.History = append(v.History, historyRow{
			BuildNumber: orNA(e.BuildNumber),
			Timestamp:   fmtEntryTime(e.Timestamp),
			Total:       e.Total,
			Passed:      e.Passed,
			Failed:      e.Failed,
			Skipped:     e.Skipped,
			PassRate:    e.PassRate,
			Duration:    fmtDuration(e.Duration),
			Badge:       badge,
			BadgeClass:  class,
		})
	}
	return v
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// fmtSeconds renders a single test duration, N/A when it was unparsable.
func fmtSeconds(seconds float64) string {
	if seconds == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2fs", seconds)
}

// fmtDuration renders a run duration at a precision matching its size.
func fmtDuration(seconds float64) string {
	switch {
	case seconds >= 3600:
		return fmt.Sprintf("%dh %dm", int(seconds)/3600, (int(seconds)%3600)/60)
	case seconds >= 60:
		return fmt.Sprintf("%dm %ds", int(seconds)/60, int(seconds)%60)
	default:
		return fmt.Sprintf("%.1fs", seconds)
	}
}

// fmtEntryTime renders a stored history timestamp. Entries written by
// older versions may carry arbitrary text, which is shown as is.
func fmtEntryTime(stamp string) string {
	if stamp == "" {
		return "N/A"
	}
	parsed, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return stamp
	}
	return parsed.Format("2006-01-02 15:04:05")
}

func historyBadge(e model.HistoryEntry) (label, class string) {
	switch {
	case e.Failed == 0:
		return "All Passed", "passed"
	case e.Passed == 0:
		return "All Failed", "failed"
	default:
		return "Partial", "partial"
	}
}
