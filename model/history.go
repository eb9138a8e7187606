package model

import (
	"math"
	"time"
)

// HistoryEntry is the persisted summary of one completed run. Field names
// match the on-disk JSON written by earlier dashboard versions, so old
// history files keep loading.
type HistoryEntry struct {
	// BuildNumber is the sortable token derived from the report timestamp.
	BuildNumber string `json:"build_number"`
	// Timestamp is the run time in RFC 3339, or empty when unavailable.
	Timestamp string `json:"timestamp"`
	// Counts of the run. Total == Passed + Failed + Skipped for entries
	// written by this code; entries from legacy files are taken as-is.
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	// PassRate is Passed/Total as a percentage, rounded to 2 decimals.
	PassRate float64 `json:"pass_rate"`
	// Duration is the summed test duration in seconds.
	Duration float64 `json:"duration"`
	// ProductName labels which product the run exercised.
	ProductName string `json:"product_name"`
}

// NewHistoryEntry summarizes a run result for persistence.
func NewHistoryEntry(run *RunResult, productName string) HistoryEntry {
	entry := HistoryEntry{
		BuildNumber: run.BuildNumber,
		Total:       run.Total,
		Passed:      run.Passed,
		Failed:      run.Failed,
		Skipped:     run.Skipped,
		PassRate:    math.Round(run.PassRate()*100) / 100,
		Duration:    run.Duration(),
		ProductName: productName,
	}
	if !run.Timestamp.IsZero() {
		entry.Timestamp = run.Timestamp.Format(time.RFC3339)
	}
	return entry
}
