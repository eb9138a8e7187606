package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLeadingSeconds(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"1.50 s", 1.5},
		{"0.003", 0.003},
		{"took 12 seconds", 12},
		{"N/A", 0},
		{"", 0},
		// Matches a run of digits and dots that is not a number.
		{"1.2.3", 0},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, leadingSeconds(tt.text), "text %q", tt.text)
	}
}

func TestDecodeDuration(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`1.5`, 1.5},
		{`0`, 0},
		{`"2.25"`, 2.25},
		{`"01:02:03.5"`, 3723.5},
		{`"00:01:30.5"`, 90.5},
		{`"1:30"`, 0},
		{`"abc"`, 0},
		{`-4`, 0},
		{`true`, 0},
		{`null`, 0},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, decodeDuration(json.RawMessage(tt.raw)), "raw %s", tt.raw)
	}
	require.Equal(t, float64(0), decodeDuration(nil))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		token string
		want  float64
	}{
		{"01:02:03.5", 3723.5},
		{"00:00:00", 0},
		{"10:00:00", 36000},
		{"1:2:3", 3723},
		{"90:00", 0},
		{"a:b:c", 0},
		{"1:2:3:4", 0},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, parseClock(tt.token), "token %q", tt.token)
	}
}
