// Package execlog locates per-test sections inside freeform execution logs.
//
// The logs and the report are written by independent processes with no
// shared identifier, so correlation relies on the textual conventions of
// the runner: a start header per test, an optional test id line, and
// completion or session markers. No match is a normal outcome.
package execlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// logFilePattern matches the execution logs written by the test runner.
const logFilePattern = "test_execution_*.log"

const (
	// minBody is the number of lines after a start marker before an end
	// marker is recognized.
	minBody = 10
	// anchorLookback bounds how far back a test id line searches for its
	// start header.
	anchorLookback = 5
	// nameLookback bounds how far back a completion token searches for
	// the test name.
	nameLookback = 50
	// completionTrail extends the section past a completion token to keep
	// the teardown output.
	completionTrail = 20

	maxLineBytes = 1024 * 1024
)

// Section is a 1-based inclusive line range inside a log file.
type Section struct {
	Start int
	End   int
}

// Locator finds per-test sections in the execution logs of a directory.
type Locator struct {
	logger zerolog.Logger
	dir    string
}

// New creates a locator for the given logs directory.
func New(logger zerolog.Logger, dir string) *Locator {
	return &Locator{logger: logger, dir: dir}
}

// FindLatest returns the name of the most recently modified execution log.
// The bool is false when the directory holds none.
func (l *Locator) FindLatest() (string, bool) {
	paths, err := filepath.Glob(filepath.Join(l.dir, logFilePattern))
	if err != nil || len(paths) == 0 {
		return "", false
	}

	latest := ""
	var latestMod time.Time
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = path
			latestMod = info.ModTime()
		}
	}
	if latest == "" {
		return "", false
	}
	return filepath.Base(latest), true
}

// Locate returns the line range documenting testName in the named log
// file. The bool is false when no section is found.
func (l *Locator) Locate(file, testName string) (Section, bool) {
	lines, err := l.readLines(file)
	if err != nil {
		l.logger.Debug().Err(err).Str("file", file).Msg("failed to read execution log")
		return Section{}, false
	}
	return locate(lines, testName)
}

// LocateAny retries Locate with progressively looser name variants: the
// recorded name, the name without its bracketed suffix, and the last path
// segment alone. The first variant with a match wins.
func (l *Locator) LocateAny(file, testName string) (Section, bool) {
	lines, err := l.readLines(file)
	if err != nil {
		l.logger.Debug().Err(err).Str("file", file).Msg("failed to read execution log")
		return Section{}, false
	}

	for _, variant := range nameVariants(testName) {
		if sec, ok := locate(lines, variant); ok {
			return sec, true
		}
	}
	return Section{}, false
}

// ReadSection returns the literal text of a line range, clamping the end
// to the file length. A missing file or an unset range yields an empty
// string.
func (l *Locator) ReadSection(file string, sec Section) string {
	if file == "" || sec.Start < 1 {
		return ""
	}

	lines, err := l.readLines(file)
	if err != nil {
		l.logger.Debug().Err(err).Str("file", file).Msg("failed to read log section")
		return ""
	}

	end := sec.End
	if end < 1 || end > len(lines) {
		end = len(lines)
	}
	if sec.Start > end {
		return ""
	}
	return strings.Join(lines[sec.Start-1:end], "\n") + "\n"
}

func (l *Locator) readLines(file string) ([]string, error) {
	f, err := os.Open(filepath.Join(l.dir, file))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	return lines, nil
}

// locate scans lines for the section documenting name. The start is the
// first header or id line mentioning the name; the end is the first
// next-test header, session marker, or completion token after a minimum
// body, falling back to the end of file.
func locate(lines []string, name string) (Section, bool) {
	normalized := normalizeName(name)
	descriptive := descriptiveName(normalized)

	start := 0
	for i := 1; i <= len(lines); i++ {
		line := lines[i-1]
		lower := strings.ToLower(line)

		if start == 0 {
			if isStartHeader(lower) && containsName(lower, descriptive, normalized) {
				start = i
			} else if strings.Contains(lower, "test id:") && containsName(lower, descriptive, normalized) {
				start = anchorStart(lines, i)
			}
			continue
		}

		if i <= start+minBody {
			continue
		}

		// Another test starting closes this section.
		if isStartHeader(lower) && !strings.Contains(lower, normalized) {
			return Section{Start: start, End: i}, true
		}
		if isSessionEnd(line, lower) {
			return Section{Start: start, End: i}, true
		}
		if hasCompletionToken(line) && nameNearby(lines, i, start, normalized) {
			end := i + completionTrail
			if end > len(lines) {
				end = len(lines)
			}
			return Section{Start: start, End: end}, true
		}
	}

	if start == 0 {
		return Section{}, false
	}
	return Section{Start: start, End: len(lines)}, true
}

// nameVariants returns the lookup candidates for a recorded test name, in
// decreasing specificity.
func nameVariants(name string) []string {
	variants := []string{name}
	if idx := strings.Index(name, "["); idx != -1 {
		variants = append(variants, name[:idx])
	}
	if strings.Contains(name, "::") {
		parts := strings.Split(name, "::")
		variants = append(variants, parts[len(parts)-1])
	}

	seen := make(map[string]struct{}, len(variants))
	unique := variants[:0]
	for _, v := range variants {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}

// normalizeName lowercases the name and strips a bracketed variant suffix
// such as "[chromium]".
func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if idx := strings.Index(name, "["); idx != -1 {
		name = strings.TrimSpace(name[:idx])
	}
	return name
}

// descriptiveName is the last path segment, which is what the runner
// prints in its headers.
func descriptiveName(normalized string) string {
	if !strings.Contains(normalized, "::") {
		return normalized
	}
	parts := strings.Split(normalized, "::")
	return parts[len(parts)-1]
}

func containsName(lower, descriptive, normalized string) bool {
	return strings.Contains(lower, descriptive) || strings.Contains(lower, normalized)
}

// isStartHeader matches the "🚀 TEST: [Name] - START" headers printed at
// the top of every test.
func isStartHeader(lower string) bool {
	return strings.Contains(lower, "🚀 test:") && strings.Contains(lower, "start")
}

// anchorStart finds the header line belonging to a test id line, looking
// back a few lines. The id line itself anchors the section when no header
// is nearby.
func anchorStart(lines []string, i int) int {
	for j := i - anchorLookback + 1; j <= i; j++ {
		if j < 1 {
			continue
		}
		if strings.Contains(lines[j-1], "🚀") || strings.Contains(strings.ToLower(lines[j-1]), "test:") {
			return j
		}
	}
	return i
}

// isSessionEnd matches the markers printed when the whole run completes.
func isSessionEnd(line, lower string) bool {
	return strings.Contains(line, "FINAL TEST SUMMARY") ||
		strings.Contains(line, "Test session") ||
		strings.Contains(lower, "pytest")
}

func hasCompletionToken(line string) bool {
	return strings.Contains(line, "PASSED") ||
		strings.Contains(line, "FAILED") ||
		strings.Contains(line, "SKIPPED")
}

// nameNearby reports whether the normalized name appears on the completion
// line or within the look-back window above it, bounded by the section
// start.
func nameNearby(lines []string, i, start int, normalized string) bool {
	lookback := nameLookback
	if d := i - start; d < lookback {
		lookback = d
	}
	for j := i - lookback + 1; j <= i; j++ {
		if j < 1 {
			continue
		}
		if strings.Contains(strings.ToLower(lines[j-1]), normalized) {
			return true
		}
	}
	return false
}
