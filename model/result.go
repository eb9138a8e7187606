package model

import (
	"strings"
	"time"
)

// Status is the normalized outcome of a single test.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusUnknown Status = "unknown"
)

// Feature categories derived from test names.
const (
	FeatureDashboard    = "Dashboard"
	FeatureVMManagement = "VM Management"
	FeatureLogging      = "Logging"
	FeatureGeneral      = "General"
)

// featureKeywords maps case-insensitive name substrings to a feature
// category. Order matters: the first matching keyword wins.
var featureKeywords = []struct {
	keyword string
	feature string
}{
	{"dashboard", FeatureDashboard},
	{"vm", FeatureVMManagement},
	{"management", FeatureVMManagement},
	{"log", FeatureLogging},
}

// LogSection points at the slice of an execution log that documents one
// test. Line numbers are 1-based and inclusive.
type LogSection struct {
	// File is the base name of the execution log the section was found in.
	File string `json:"file"`
	// StartLine is the first line of the section.
	StartLine int `json:"start_line"`
	// EndLine is the last line of the section. It may point past the end
	// of the file; readers clamp it.
	EndLine int `json:"end_line"`
}

// TestResult represents a single normalized test outcome. Results are
// rebuilt from the report artifact on every parse; nothing about an
// individual test survives across runs.
type TestResult struct {
	// Name is the test identifier, possibly a hierarchical node id with
	// a trailing bracketed variant (e.g. "tests/test_vm.py::test_create[chromium]").
	Name string `json:"name"`
	// Status is one of passed, failed, skipped or unknown.
	Status Status `json:"status"`
	// Duration of the test in seconds. Zero when the report carried no
	// parsable duration.
	Duration float64 `json:"duration"`
	// Error holds the captured failure text, bounded at capture time.
	Error string `json:"error,omitempty"`
	// Feature is the coarse category derived from Name.
	Feature string `json:"feature"`
	// Log is set only for failed tests whose section was found in the
	// execution log.
	Log *LogSection `json:"log,omitempty"`
}

// NewTestResult builds a TestResult and derives its feature category.
func NewTestResult(name string, status Status, duration float64, errText string) *TestResult {
	return &TestResult{
		Name:     name,
		Status:   status,
		Duration: duration,
		Error:    errText,
		Feature:  FeatureFor(name),
	}
}

// FeatureFor derives the feature category from a test name.
func FeatureFor(name string) string {
	lower := strings.ToLower(name)
	for _, fk := range featureKeywords {
		if strings.Contains(lower, fk.keyword) {
			return fk.feature
		}
	}
	return FeatureGeneral
}

// RunResult is the aggregated outcome of one test-execution run.
type RunResult struct {
	// Counts are always recomputed from Tests, never read from a report
	// header, so a disagreeing summary region cannot skew them.
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	// Tests holds the individual outcomes in report order.
	Tests []*TestResult `json:"tests"`
	// Timestamp is the report file's modification time. Zero when no
	// report artifact was found.
	Timestamp time.Time `json:"timestamp"`
	// BuildNumber is derived from Timestamp as a sortable YYYYMMDD-HHMMSS token.
	BuildNumber string `json:"build_number,omitempty"`
	// LogFile is the base name of the execution log the run correlated against.
	LogFile string `json:"log_file,omitempty"`
	// Err carries the diagnostic text when report parsing failed. The
	// run result is still well-formed in that case.
	Err string `json:"error,omitempty"`
}

// Recount recomputes the summary counters from the enumerated tests.
func (r *RunResult) Recount() {
	r.Total = len(r.Tests)
	r.Passed = 0
	r.Failed = 0
	r.Skipped = 0
	for _, t := range r.Tests {
		switch t.Status {
		case StatusPassed:
			r.Passed++
		case StatusFailed:
			r.Failed++
		case StatusSkipped:
			r.Skipped++
		}
	}
}

// FindTest returns the first test whose name matches name, exactly or as
// a substring. Nil when nothing matches.
func (r *RunResult) FindTest(name string) *TestResult {
	for _, t := range r.Tests {
		if strings.Contains(t.Name, name) {
			return t
		}
	}
	return nil
}

// FailedTests returns the failed subset of Tests in report order.
func (r *RunResult) FailedTests() []*TestResult {
	var failed []*TestResult
	for _, t := range r.Tests {
		if t.Status == StatusFailed {
			failed = append(failed, t)
		}
	}
	return failed
}

// PassRate returns the percentage of passed tests, 0 for an empty run.
func (r *RunResult) PassRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.Total) * 100
}

// Duration returns the summed duration of all tests in seconds.
func (r *RunResult) Duration() float64 {
	var sum float64
	for _, t := range r.Tests {
		sum += t.Duration
	}
	return sum
}
