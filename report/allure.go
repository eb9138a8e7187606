package report

// This file contains the reader for allure result files, which carry
// richer failure details than the HTML report.

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// AllureResult holds the fields read from one allure *-result.json file.
type AllureResult struct {
	Name          string        `json:"name"`
	Status        string        `json:"status"`
	StatusDetails StatusDetails `json:"statusDetails"`
}

// StatusDetails carries the failure message and stack trace allure records
// for a test.
type StatusDetails struct {
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

// ErrorText joins the failure message and trace for display. Empty when the
// result carries neither.
func (r AllureResult) ErrorText() string {
	message := strings.TrimSpace(r.StatusDetails.Message)
	trace := strings.TrimSpace(r.StatusDetails.Trace)

	switch {
	case message != "" && trace != "":
		return message + "\n" + trace
	case message != "":
		return message
	default:
		return trace
	}
}

// ParseAllureResults reads every *-result.json file under dir and returns
// the records keyed by test name. A missing directory yields an empty map,
// and unreadable or unnamed records are skipped.
func (p *Parser) ParseAllureResults(dir string) map[string]AllureResult {
	results := make(map[string]AllureResult)

	paths, err := filepath.Glob(filepath.Join(dir, "*-result.json"))
	if err != nil {
		p.logger.Warn().Err(err).Str("dir", dir).Msg("failed to list allure results")
		return results
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			p.logger.Debug().Err(err).Str("path", path).Msg("skipping unreadable allure result")
			continue
		}

		var result AllureResult
		if err := json.Unmarshal(data, &result); err != nil {
			p.logger.Debug().Err(err).Str("path", path).Msg("skipping malformed allure result")
			continue
		}
		if result.Name == "" {
			continue
		}
		results[result.Name] = result
	}
	return results
}
