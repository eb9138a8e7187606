package report

// This file contains the duration parsing helpers. Reports carry durations
// in three forms: a bare cell like "1.23 s", a JSON number, or a clock
// token like "01:02:03.5". All of them degrade to 0 instead of failing.

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var decimalRe = regexp.MustCompile(`[\d.]+`)

// leadingSeconds extracts the first decimal number from free-form cell text.
func leadingSeconds(text string) float64 {
	match := decimalRe.FindString(text)
	if match == "" {
		return 0
	}

	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return v
}

// decodeDuration accepts a JSON number or a string holding either a number
// or a clock token.
func decodeDuration(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	if strings.Contains(s, ":") {
		return parseClock(s)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// parseClock parses an hours:minutes:seconds token such as "01:02:03.5".
func parseClock(s string) float64 {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}

	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return 0
	}

	total := float64(hours)*3600 + float64(minutes)*60 + seconds
	if total < 0 {
		return 0
	}
	return total
}
