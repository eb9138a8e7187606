package execlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// makeLines builds an n-line log of routine output with marker lines
// planted at the given 1-based line numbers.
func makeLines(n int, markers map[int]string) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("2025-03-14 10:00:%02d INFO routine output", i%60)
	}
	for lineNo, text := range markers {
		lines[lineNo-1] = text
	}
	return lines
}

func writeLog(t *testing.T, dir, name string, lines []string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestLocate_NextTestHeaderEndsSection(t *testing.T) {
	lines := makeLines(45, map[int]string{
		10: "🚀 TEST: [Alpha Flow] - START test_alpha",
		40: "🚀 TEST: [Beta Flow] - START test_beta",
	})

	sec, ok := locate(lines, "test_alpha")
	require.True(t, ok)
	require.Equal(t, Section{Start: 10, End: 40}, sec)
}

func TestLocate_MinimumBodyBeforeEnd(t *testing.T) {
	// A header inside the first 10 lines of the section is too close to
	// count as an end.
	lines := makeLines(45, map[int]string{
		10: "🚀 TEST: [Alpha Flow] - START test_alpha",
		15: "🚀 TEST: [Beta Flow] - START test_beta",
		40: "🚀 TEST: [Gamma Flow] - START test_gamma",
	})

	sec, ok := locate(lines, "test_alpha")
	require.True(t, ok)
	require.Equal(t, Section{Start: 10, End: 40}, sec)
}

func TestLocate_CompletionToken(t *testing.T) {
	lines := makeLines(50, map[int]string{
		5:  "🚀 TEST: [Alpha Flow] - START test_alpha",
		18: "test_alpha FAILED in 2.31s",
	})

	sec, ok := locate(lines, "test_alpha")
	require.True(t, ok)
	// The section keeps 20 trailing lines after the completion token.
	require.Equal(t, Section{Start: 5, End: 38}, sec)
}

func TestLocate_CompletionTrailClampedToFile(t *testing.T) {
	lines := makeLines(25, map[int]string{
		5:  "🚀 TEST: [Alpha Flow] - START test_alpha",
		18: "test_alpha FAILED in 2.31s",
	})

	sec, ok := locate(lines, "test_alpha")
	require.True(t, ok)
	require.Equal(t, Section{Start: 5, End: 25}, sec)
}

func TestLocate_CompletionTokenNeedsNameNearby(t *testing.T) {
	// A completion token with no mention of the test nearby does not
	// close the section.
	lines := makeLines(60, map[int]string{
		5:  "🚀 TEST: [Alpha Flow] - START test_alpha",
		18: "test_other FAILED in 0.10s",
	})

	sec, ok := locate(lines, "test_alpha")
	require.True(t, ok)
	require.Equal(t, Section{Start: 5, End: 60}, sec)
}

func TestLocate_CompletionLookbackWindow(t *testing.T) {
	lines := makeLines(120, map[int]string{
		5:  "🚀 TEST: [Alpha Flow] - START test_alpha",
		45: "step: test_alpha clicked deploy",
		60: "1 test FAILED",
	})

	sec, ok := locate(lines, "test_alpha")
	require.True(t, ok)
	require.Equal(t, Section{Start: 5, End: 80}, sec)

	// The same mention outside the 50-line window no longer counts.
	lines = makeLines(120, map[int]string{
		5:  "🚀 TEST: [Alpha Flow] - START test_alpha",
		45: "step: test_alpha clicked deploy",
		99: "1 test FAILED",
	})
	sec, ok = locate(lines, "test_alpha")
	require.True(t, ok)
	require.Equal(t, Section{Start: 5, End: 120}, sec)
}

func TestLocate_SessionEnd(t *testing.T) {
	lines := makeLines(30, map[int]string{
		5:  "🚀 TEST: [Alpha Flow] - START test_alpha",
		20: "==== FINAL TEST SUMMARY ====",
	})

	sec, ok := locate(lines, "test_alpha")
	require.True(t, ok)
	require.Equal(t, Section{Start: 5, End: 20}, sec)
}

func TestLocate_EndOfFileFallback(t *testing.T) {
	lines := makeLines(30, map[int]string{
		10: "🚀 TEST: [Alpha Flow] - START test_alpha",
	})

	sec, ok := locate(lines, "test_alpha")
	require.True(t, ok)
	require.Equal(t, Section{Start: 10, End: 30}, sec)
}

func TestLocate_TestIDAnchorsToHeader(t *testing.T) {
	// The header shows the display name, the id line the function name.
	lines := makeLines(40, map[int]string{
		8:  "🚀 TEST: [Alpha Flow] - START",
		10: "Test ID: test_alpha",
		25: "🚀 TEST: [Beta Flow] - START test_beta",
	})

	sec, ok := locate(lines, "test_alpha")
	require.True(t, ok)
	require.Equal(t, Section{Start: 8, End: 25}, sec)
}

func TestLocate_TestIDWithoutHeader(t *testing.T) {
	lines := makeLines(40, map[int]string{
		10: "Test ID: test_alpha",
		25: "🚀 TEST: [Beta Flow] - START test_beta",
	})

	sec, ok := locate(lines, "test_alpha")
	require.True(t, ok)
	require.Equal(t, Section{Start: 10, End: 25}, sec)
}

func TestLocate_NoMatch(t *testing.T) {
	lines := makeLines(30, map[int]string{
		10: "🚀 TEST: [Beta Flow] - START test_beta",
	})

	_, ok := locate(lines, "test_alpha")
	require.False(t, ok)

	_, ok = locate(nil, "test_alpha")
	require.False(t, ok)
}

func TestLocate_NormalizesName(t *testing.T) {
	lines := makeLines(30, map[int]string{
		10: "🚀 TEST: [Alpha Flow] - START test_alpha",
	})

	sec, ok := locate(lines, "tests/test_a.py::TEST_ALPHA[chromium]")
	require.True(t, ok)
	require.Equal(t, Section{Start: 10, End: 30}, sec)
}

func TestNameVariants(t *testing.T) {
	variants := nameVariants("tests/test_a.py::test_alpha[chromium]")
	require.Equal(t, []string{
		"tests/test_a.py::test_alpha[chromium]",
		"tests/test_a.py::test_alpha",
		"test_alpha[chromium]",
	}, variants)

	require.Equal(t, []string{"simple_test"}, nameVariants("simple_test"))
}

func TestLocator_Locate(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "test_execution_20250314-100000.log", makeLines(45, map[int]string{
		10: "🚀 TEST: [Alpha Flow] - START test_alpha",
		40: "🚀 TEST: [Beta Flow] - START test_beta",
	}))

	l := New(zerolog.Nop(), dir)
	sec, ok := l.LocateAny("test_execution_20250314-100000.log", "tests/test_a.py::test_alpha[chromium]")
	require.True(t, ok)
	require.Equal(t, Section{Start: 10, End: 40}, sec)

	_, ok = l.Locate("missing.log", "test_alpha")
	require.False(t, ok)
}

func TestLocator_FindLatest(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "test_execution_20250301-100000.log", makeLines(3, nil))
	writeLog(t, dir, "test_execution_20250314-120000.log", makeLines(3, nil))
	writeLog(t, dir, "other.log", makeLines(3, nil))

	now := time.Now()
	require.NoError(t, os.Chtimes(filepath.Join(dir, "test_execution_20250301-100000.log"), now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "test_execution_20250314-120000.log"), now, now))

	name, ok := New(zerolog.Nop(), dir).FindLatest()
	require.True(t, ok)
	require.Equal(t, "test_execution_20250314-120000.log", name)
}

func TestLocator_FindLatest_None(t *testing.T) {
	_, ok := New(zerolog.Nop(), t.TempDir()).FindLatest()
	require.False(t, ok)

	_, ok = New(zerolog.Nop(), filepath.Join(t.TempDir(), "absent")).FindLatest()
	require.False(t, ok)
}

func TestLocator_ReadSection(t *testing.T) {
	dir := t.TempDir()
	lines := []string{"line 1", "line 2", "line 3", "line 4", "line 5"}
	writeLog(t, dir, "test_execution_20250314-100000.log", lines)

	l := New(zerolog.Nop(), dir)
	file := "test_execution_20250314-100000.log"

	require.Equal(t, "line 2\nline 3\nline 4\n", l.ReadSection(file, Section{Start: 2, End: 4}))

	// End past the file clamps to the last line.
	require.Equal(t, "line 4\nline 5\n", l.ReadSection(file, Section{Start: 4, End: 99}))

	require.Empty(t, l.ReadSection(file, Section{Start: 0, End: 4}))
	require.Empty(t, l.ReadSection(file, Section{Start: 9, End: 12}))
	require.Empty(t, l.ReadSection("", Section{Start: 1, End: 2}))
	require.Empty(t, l.ReadSection("missing.log", Section{Start: 1, End: 2}))
}
