package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/azirolabs/resultdash/model"
)

func TestBuildView(t *testing.T) {
	run := &model.RunResult{
		Tests: []*model.TestResult{
			model.NewTestResult("tests/test_vm.py::test_create_vm", model.StatusFailed, 2.25, "boom"),
			model.NewTestResult("tests/test_misc.py::test_ping", model.StatusPassed, 1.5, ""),
		},
		Timestamp:   time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC),
		BuildNumber: "20250314-150926",
		LogFile:     "test_execution_20250314-100000.log",
	}
	run.Recount()
	run.Tests[0].Log = &model.LogSection{File: run.LogFile, StartLine: 10, EndLine: 40}

	v := buildView("Aziro Cluster Center", run, []model.HistoryEntry{
		{BuildNumber: "20250313-120000", Timestamp: "2025-03-13T12:00:00Z", Total: 2, Passed: 2, PassRate: 100, Duration: 3.5},
	})

	require.Equal(t, "20250314-150926", v.BuildNumber)
	require.Equal(t, "2025-03-14 15:09:26", v.Timestamp)
	require.Equal(t, "50.0", v.PassRate)
	require.Len(t, v.Tests, 2)

	require.Len(t, v.FailedTests, 1)
	card := v.FailedTests[0]
	require.Equal(t, 1, card.Index)
	require.Equal(t, "/log/tests%2Ftest_vm.py::test_create_vm", card.LogURL)
	require.Equal(t, "boom", card.Error)

	require.Len(t, v.History, 1)
	require.Equal(t, "2025-03-13 12:00:00", v.History[0].Timestamp)
	require.Equal(t, "All Passed", v.History[0].Badge)
}

func TestBuildView_ZeroRun(t *testing.T) {
	v := buildView("Aziro Cluster Center", &model.RunResult{}, nil)

	require.Equal(t, "N/A", v.BuildNumber)
	require.Equal(t, "N/A", v.Timestamp)
	require.Equal(t, "0.0", v.PassRate)
	require.Empty(t, v.Tests)
	require.Empty(t, v.FailedTests)
	require.Empty(t, v.History)
}

func TestFmtSeconds(t *testing.T) {
	require.Equal(t, "N/A", fmtSeconds(0))
	require.Equal(t, "2.25s", fmtSeconds(2.25))
}

func TestFmtDuration(t *testing.T) {
	require.Equal(t, "12.3s", fmtDuration(12.34))
	require.Equal(t, "0.0s", fmtDuration(0))
	require.Equal(t, "2m 5s", fmtDuration(125))
	require.Equal(t, "1h 1m", fmtDuration(3665))
}

func TestFmtEntryTime(t *testing.T) {
	require.Equal(t, "N/A", fmtEntryTime(""))
	require.Equal(t, "2025-03-14 15:09:26", fmtEntryTime("2025-03-14T15:09:26Z"))

	// Legacy entries keep whatever text they stored.
	require.Equal(t, "yesterday-ish", fmtEntryTime("yesterday-ish"))
}

func TestHistoryBadge(t *testing.T) {
	label, class := historyBadge(model.HistoryEntry{Total: 3, Passed: 3})
	require.Equal(t, "All Passed", label)
	require.Equal(t, "passed", class)

	label, class = historyBadge(model.HistoryEntry{Total: 2, Failed: 2})
	require.Equal(t, "All Failed", label)
	require.Equal(t, "failed", class)

	label, class = historyBadge(model.HistoryEntry{Total: 3, Passed: 2, Failed: 1})
	require.Equal(t, "Partial", label)
	require.Equal(t, "partial", class)
}
