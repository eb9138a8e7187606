package model

import (
	"testing"
	"time"
)

func TestFeatureFor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dashboard test", "tests/test_dashboard.py::test_dashboard_loads", FeatureDashboard},
		{"vm test", "tests/test_vm_management.py::test_create_vm", FeatureVMManagement},
		{"management keyword", "test_management_panel", FeatureVMManagement},
		{"logging test", "tests/test_logs.py::test_load_l1_logs", FeatureLogging},
		{"uppercase name", "TEST_DASHBOARD_STATS", FeatureDashboard},
		{"dashboard wins over log", "test_dashboard_log_widget", FeatureDashboard},
		{"no keyword", "tests/test_misc.py::test_something", FeatureGeneral},
		{"empty name", "", FeatureGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FeatureFor(tt.in); got != tt.want {
				t.Errorf("FeatureFor(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRunResult_Recount(t *testing.T) {
	run := &RunResult{
		// Stale header-style counts that must be overwritten.
		Total:  99,
		Passed: 99,
		Tests: []*TestResult{
			NewTestResult("a", StatusPassed, 1, ""),
			NewTestResult("b", StatusFailed, 2, "boom"),
			NewTestResult("c", StatusSkipped, 0, ""),
			NewTestResult("d", StatusUnknown, 0, ""),
			NewTestResult("e", StatusPassed, 3, ""),
		},
	}

	run.Recount()

	if run.Total != 5 {
		t.Errorf("Total = %d, want 5", run.Total)
	}
	if run.Passed != 2 || run.Failed != 1 || run.Skipped != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", run.Passed, run.Failed, run.Skipped)
	}
	if got := run.Passed + run.Failed + run.Skipped; got != run.Total-1 {
		// The unknown test counts toward Total only.
		t.Errorf("passed+failed+skipped = %d, want %d", got, run.Total-1)
	}
}

func TestRunResult_FailedTests(t *testing.T) {
	run := &RunResult{
		Tests: []*TestResult{
			NewTestResult("a", StatusPassed, 0, ""),
			NewTestResult("b", StatusFailed, 0, "x"),
			NewTestResult("c", StatusFailed, 0, "y"),
		},
	}

	failed := run.FailedTests()
	if len(failed) != 2 {
		t.Fatalf("len(failed) = %d, want 2", len(failed))
	}
	if failed[0].Name != "b" || failed[1].Name != "c" {
		t.Errorf("failed order = %s, %s; want b, c", failed[0].Name, failed[1].Name)
	}
}

func TestRunResult_PassRate(t *testing.T) {
	tests := []struct {
		name   string
		passed int
		total  int
		want   float64
	}{
		{"empty run", 0, 0, 0},
		{"all passed", 4, 4, 100},
		{"half passed", 1, 2, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &RunResult{Total: tt.total, Passed: tt.passed}
			if got := run.PassRate(); got != tt.want {
				t.Errorf("PassRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewHistoryEntry(t *testing.T) {
	ts := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	run := &RunResult{
		Total:       3,
		Passed:      1,
		Failed:      1,
		Skipped:     1,
		Timestamp:   ts,
		BuildNumber: "20250314-150926",
		Tests: []*TestResult{
			NewTestResult("a", StatusPassed, 1.5, ""),
			NewTestResult("b", StatusFailed, 2.25, "boom"),
			NewTestResult("c", StatusSkipped, 0, ""),
		},
	}

	entry := NewHistoryEntry(run, "Aziro Cluster Center")

	if entry.BuildNumber != "20250314-150926" {
		t.Errorf("BuildNumber = %q", entry.BuildNumber)
	}
	if entry.Timestamp != "2025-03-14T15:09:26Z" {
		t.Errorf("Timestamp = %q, want RFC 3339", entry.Timestamp)
	}
	if entry.PassRate != 33.33 {
		t.Errorf("PassRate = %v, want 33.33", entry.PassRate)
	}
	if entry.Duration != 3.75 {
		t.Errorf("Duration = %v, want 3.75", entry.Duration)
	}
	if entry.ProductName != "Aziro Cluster Center" {
		t.Errorf("ProductName = %q", entry.ProductName)
	}
}

func TestNewHistoryEntry_ZeroRun(t *testing.T) {
	entry := NewHistoryEntry(&RunResult{}, "Aziro Cluster Center")

	if entry.Timestamp != "" {
		t.Errorf("Timestamp = %q, want empty for a zero run", entry.Timestamp)
	}
	if entry.PassRate != 0 {
		t.Errorf("PassRate = %v, want 0 for an empty run", entry.PassRate)
	}
}
