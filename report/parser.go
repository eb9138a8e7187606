// Package report parses test run report artifacts into normalized results.
package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/azirolabs/resultdash/model"
)

const (
	// tableErrorLimit caps error text captured from table rows.
	tableErrorLimit = 1000
	// blobErrorLimit caps error text captured from the embedded payload.
	blobErrorLimit = 2000
	// buildNumberFormat renders the report mtime as a sortable build label.
	buildNumberFormat = "20060102-150405"
)

// Parser turns a report artifact into a normalized run result.
type Parser struct {
	logger zerolog.Logger
}

// New creates a new parser instance.
func New(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseFile parses the report artifact at path. A missing artifact yields an
// empty result, and any parse failure yields an empty result with Err set.
// It never returns a Go error, so callers always get a renderable result.
func (p *Parser) ParseFile(path string) *model.RunResult {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return &model.RunResult{}
	}
	if err != nil {
		p.logger.Warn().Err(err).Str("path", path).Msg("failed to stat report")
		return &model.RunResult{Err: err.Error()}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warn().Err(err).Str("path", path).Msg("failed to read report")
		return &model.RunResult{Err: err.Error()}
	}

	tests, err := p.parseTable(content)
	if err != nil {
		p.logger.Warn().Err(err).Str("path", path).Msg("failed to parse report table")
		return &model.RunResult{Err: err.Error()}
	}

	// Some report generators keep the results out of the table and ship
	// them in an embedded JSON attribute instead.
	if len(tests) == 0 {
		tests, err = p.parseBlob(content)
		if err != nil {
			p.logger.Warn().Err(err).Str("path", path).Msg("failed to parse embedded report data")
			return &model.RunResult{Err: err.Error()}
		}
	}

	result := &model.RunResult{
		Tests:       tests,
		Timestamp:   info.ModTime(),
		BuildNumber: info.ModTime().Format(buildNumberFormat),
	}
	result.Recount()

	p.logger.Debug().
		Str("path", path).
		Int("total", result.Total).
		Int("failed", result.Failed).
		Msg("parsed report")
	return result
}

// parseTable extracts rows from the results table. A report without the
// table yields no rows and no error so the caller can fall back to the
// embedded payload.
func (p *Parser) parseTable(content []byte) ([]*model.TestResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse report markup: %w", err)
	}

	var tests []*model.TestResult
	doc.Find("table#results-table tbody.results-table-row").Each(func(_ int, tbody *goquery.Selection) {
		tbody.Find("tr").Each(func(_ int, row *goquery.Selection) {
			// Skip header rows
			if row.Find("th").Length() > 0 {
				return
			}

			cols := row.Find("td")
			if cols.Length() < 3 {
				return
			}

			name := strings.TrimSpace(cols.Eq(0).Text())
			if name == "" {
				return
			}

			status := classifyStatus(cols.Eq(1).Text())
			duration := leadingSeconds(cols.Eq(2).Text())

			errText := ""
			if status == model.StatusFailed {
				errText = tableError(tbody, row)
			}

			tests = append(tests, model.NewTestResult(name, status, duration, errText))
		})
	})
	return tests, nil
}

// tableError captures the free-text error block attached to a failed row.
// pytest-html puts it in a collapsible extra row inside the same tbody, so
// look there first and fall back to a log block inside the row itself.
func tableError(tbody, row *goquery.Selection) string {
	if block := tbody.Find("div.logwrapper div.log").First(); block.Length() > 0 {
		if text := strings.TrimSpace(block.Text()); text != "" {
			return truncate(text, tableErrorLimit)
		}
	}
	if block := row.Find("div.log").First(); block.Length() > 0 {
		return truncate(strings.TrimSpace(block.Text()), tableErrorLimit)
	}
	return ""
}

// classifyStatus maps free-form status cell text onto one of the four
// statuses by substring match.
func classifyStatus(text string) model.Status {
	text = strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.Contains(text, "passed"):
		return model.StatusPassed
	case strings.Contains(text, "failed"), strings.Contains(text, "error"):
		return model.StatusFailed
	case strings.Contains(text, "skipped"):
		return model.StatusSkipped
	default:
		return model.StatusUnknown
	}
}

// truncate limits s to at most limit runes.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
