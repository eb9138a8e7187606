package dashboard

// This file contains the condenser that turns raw failure text into the
// two-line summary shown on failed test cards.

import (
	"strings"
	"unicode/utf8"
)

// summaryLineLimit caps each summary line.
const summaryLineLimit = 150

// summaryKeywords mark lines that carry the actual error rather than
// traceback noise.
var summaryKeywords = []string{"error:", "exception:", "failed:", "timeout", "assertion"}

// summaryLines condenses raw failure text into two short display lines.
// Lines with an error keyword win, then any meaningful line, then the
// first lines of the text as a last resort.
func summaryLines(errText string) [2]string {
	if errText == "" || errText == "No error details available" {
		return [2]string{
			"No error details available",
			"Please check the full log for more information",
		}
	}

	var lines []string
	for _, line := range strings.Split(errText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return [2]string{
			"Error occurred during test execution",
			"Check full error details below",
		}
	}

	var first, second string
	for _, line := range lines {
		if !hasSummaryKeyword(line) {
			continue
		}
		if first == "" {
			first = clipEllipsis(line)
			continue
		}
		second = clipEllipsis(line)
		break
	}

	// No keyword hits: take the first two meaningful lines, skipping
	// traceback frames.
	if first == "" {
		for _, line := range lines {
			if utf8.RuneCountInString(line) <= 20 ||
				strings.HasPrefix(line, "File") ||
				strings.HasPrefix(line, "Traceback") {
				continue
			}
			if first == "" {
				first = clipEllipsis(line)
				continue
			}
			second = clipEllipsis(line)
			break
		}
	}

	if first == "" {
		first = clip(lines[0])
		if len(lines) > 1 {
			second = clip(lines[1])
		} else {
			second = "Check full error details below"
		}
	}
	return [2]string{first, second}
}

func hasSummaryKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range summaryKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func clip(line string) string {
	runes := []rune(line)
	if len(runes) <= summaryLineLimit {
		return line
	}
	return string(runes[:summaryLineLimit])
}

func clipEllipsis(line string) string {
	runes := []rune(line)
	if len(runes) <= summaryLineLimit {
		return line
	}
	return string(runes[:summaryLineLimit]) + "..."
}
