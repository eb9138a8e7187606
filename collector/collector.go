// Package collector assembles the full picture of the latest test run:
// parsed report, per-test log sections and the persisted run history.
package collector

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/azirolabs/resultdash/config"
	"github.com/azirolabs/resultdash/execlog"
	"github.com/azirolabs/resultdash/history"
	"github.com/azirolabs/resultdash/model"
	"github.com/azirolabs/resultdash/report"
)

// allureErrorLimit caps failure details taken from allure results.
const allureErrorLimit = 2000

// Collector orchestrates report parsing, log correlation and history
// persistence.
type Collector struct {
	logger  zerolog.Logger
	cfg     config.Config
	parser  *report.Parser
	locator *execlog.Locator
	store   *history.Store
}

// New wires a collector from the configuration.
func New(logger zerolog.Logger, cfg config.Config) *Collector {
	return &Collector{
		logger:  logger,
		cfg:     cfg,
		parser:  report.New(logger),
		locator: execlog.New(logger, cfg.LogsDir),
		store:   history.New(logger, cfg.HistoryPath()),
	}
}

// Collect parses the report, correlates failed tests with the newest
// execution log and persists a history entry. It always returns a
// renderable result, even when the artifacts are missing or broken.
func (c *Collector) Collect() *model.RunResult {
	run := c.parser.ParseFile(c.cfg.ReportPath())

	c.backfillErrors(run)
	c.correlate(run)

	// Persist only runs backed by a real report. Parse failures and a
	// missing artifact both leave the timestamp unset.
	if run.Err == "" && !run.Timestamp.IsZero() {
		c.store.Save(model.NewHistoryEntry(run, c.cfg.ProductName))
	}
	return run
}

// History returns the persisted run summaries, newest first.
func (c *Collector) History() []model.HistoryEntry {
	return c.store.Load()
}

// ReadLog returns the raw text of a recorded log section, empty when the
// section is unset or its file has gone away.
func (c *Collector) ReadLog(section *model.LogSection) string {
	if section == nil {
		return ""
	}
	return c.locator.ReadSection(section.File, execlog.Section{
		Start: section.StartLine,
		End:   section.EndLine,
	})
}

// correlate attaches a log section to every failed test that has one in
// the newest execution log.
func (c *Collector) correlate(run *model.RunResult) {
	file, ok := c.locator.FindLatest()
	if !ok {
		return
	}
	run.LogFile = file

	for _, test := range run.Tests {
		if test.Status != model.StatusFailed {
			continue
		}
		if sec, ok := c.locator.LocateAny(file, test.Name); ok {
			test.Log = &model.LogSection{File: file, StartLine: sec.Start, EndLine: sec.End}
		}
	}
}

// backfillErrors fills missing failure details from allure results, which
// keep the assertion message and trace the HTML report sometimes drops.
func (c *Collector) backfillErrors(run *model.RunResult) {
	var missing []*model.TestResult
	for _, test := range run.Tests {
		if test.Status == model.StatusFailed && test.Error == "" {
			missing = append(missing, test)
		}
	}
	if len(missing) == 0 {
		return
	}

	allure := c.parser.ParseAllureResults(c.cfg.AllureResultsDir())
	if len(allure) == 0 {
		return
	}

	for _, test := range missing {
		result, ok := allure[test.Name]
		if !ok {
			// Allure records the bare function name, the report the
			// full path.
			result, ok = allure[shortName(test.Name)]
		}
		if !ok {
			continue
		}
		if text := result.ErrorText(); text != "" {
			test.Error = truncate(text, allureErrorLimit)
		}
	}
}

func shortName(name string) string {
	if idx := strings.Index(name, "["); idx != -1 {
		name = name[:idx]
	}
	if idx := strings.LastIndex(name, "::"); idx != -1 {
		name = name[idx+2:]
	}
	return name
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
