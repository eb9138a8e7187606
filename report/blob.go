package report

// This file contains the fallback decoder for reports that embed their
// results as an HTML-escaped JSON attribute instead of table rows.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/azirolabs/resultdash/model"
)

var jsonBlobRe = regexp.MustCompile(`data-jsonblob="([^"]+)"`)

// blobPayload is the envelope of the embedded payload. Tests holds either a
// name-keyed mapping or a flat list, decided by peeking at the raw JSON.
type blobPayload struct {
	Tests json.RawMessage `json:"tests"`
}

// blobCell is the record pytest-html stores as element 0 of each mapping
// value.
type blobCell struct {
	TestID   string          `json:"testId"`
	Result   string          `json:"result"`
	Duration json.RawMessage `json:"duration"`
	Log      json.RawMessage `json:"log"`
	Extras   []blobExtra     `json:"extras"`
}

type blobExtra struct {
	Content json.RawMessage `json:"content"`
}

// blobRecord is the plain record shape, used both for mapping values that
// are a single object and for elements of the list shape.
type blobRecord struct {
	Name     string          `json:"name"`
	NodeID   string          `json:"nodeid"`
	Outcome  string          `json:"outcome"`
	Duration json.RawMessage `json:"duration"`
	Longrepr json.RawMessage `json:"longrepr"`
	Call     *blobPhase      `json:"call"`
	Setup    *blobPhase      `json:"setup"`
}

type blobPhase struct {
	Longrepr json.RawMessage `json:"longrepr"`
}

// parseBlob decodes the data-jsonblob attribute some generators emit in
// place of table rows. A report without the attribute yields no tests and
// no error.
func (p *Parser) parseBlob(content []byte) ([]*model.TestResult, error) {
	match := jsonBlobRe.FindSubmatch(content)
	if match == nil {
		return nil, nil
	}

	var payload blobPayload
	if err := json.Unmarshal([]byte(html.UnescapeString(string(match[1]))), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode embedded report data: %w", err)
	}
	return decodeBlobTests(payload.Tests)
}

// decodeBlobTests interprets the tests value in whichever shape the payload
// uses, peeking at the first byte rather than decoding twice.
func decodeBlobTests(raw json.RawMessage) ([]*model.TestResult, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '{':
		return decodeBlobMapping(raw)
	case '[':
		return decodeBlobList(raw)
	default:
		return nil, errors.New("unsupported tests payload shape")
	}
}

// decodeBlobMapping walks the mapping with a token decoder so results keep
// the document order.
func decodeBlobMapping(raw json.RawMessage) ([]*model.TestResult, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to decode tests mapping: %w", err)
	}

	var tests []*model.TestResult
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to decode tests mapping: %w", err)
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to decode entry %q: %w", key, err)
		}

		test, err := decodeBlobEntry(key, value)
		if err != nil {
			return nil, err
		}
		tests = append(tests, test)
	}
	return tests, nil
}

func decodeBlobList(raw json.RawMessage) ([]*model.TestResult, error) {
	var records []blobRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode tests list: %w", err)
	}

	tests := make([]*model.TestResult, 0, len(records))
	for _, rec := range records {
		tests = append(tests, rec.result(""))
	}
	return tests, nil
}

// decodeBlobEntry interprets one mapping value. pytest-html wraps each
// record in a one-element list; other generators store the record directly.
// Anything unrecognized still yields an unknown result for the key so the
// test is not silently dropped.
func decodeBlobEntry(key string, raw json.RawMessage) (*model.TestResult, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 {
		switch raw[0] {
		case '[':
			var cells []blobCell
			if err := json.Unmarshal(raw, &cells); err != nil {
				return nil, fmt.Errorf("failed to decode entry %q: %w", key, err)
			}
			if len(cells) > 0 {
				return cells[0].result(key), nil
			}
		case '{':
			var rec blobRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("failed to decode entry %q: %w", key, err)
			}
			return rec.result(key), nil
		}
	}
	return model.NewTestResult(key, model.StatusUnknown, 0, ""), nil
}

// result normalizes a pytest-html cell. The display id wins over the
// mapping key when present.
func (c blobCell) result(key string) *model.TestResult {
	name := c.TestID
	if name == "" {
		name = key
	}

	status := classifyStatus(c.Result)
	errText := ""
	if status == model.StatusFailed {
		errText = truncate(c.errorText(), blobErrorLimit)
	}
	return model.NewTestResult(name, status, decodeDuration(c.Duration), errText)
}

// errorText prefers the captured log and falls back to the first extra
// attachment with content.
func (c blobCell) errorText() string {
	if text := rawString(c.Log); text != "" {
		return text
	}
	for _, extra := range c.Extras {
		if text := rawString(extra.Content); text != "" {
			return text
		}
	}
	return ""
}

func (r blobRecord) result(key string) *model.TestResult {
	name := firstNonEmpty(r.Name, r.NodeID, key, "unknown")

	status := statusFromOutcome(r.Outcome)
	errText := ""
	if status == model.StatusFailed {
		errText = truncate(r.errorText(), blobErrorLimit)
	}
	return model.NewTestResult(name, status, decodeDuration(r.Duration), errText)
}

// errorText walks the longrepr candidates in order: the record's own, then
// the call phase, then the setup phase.
func (r blobRecord) errorText() string {
	if text := rawString(r.Longrepr); text != "" {
		return text
	}
	if r.Call != nil {
		if text := rawString(r.Call.Longrepr); text != "" {
			return text
		}
	}
	if r.Setup != nil {
		if text := rawString(r.Setup.Longrepr); text != "" {
			return text
		}
	}
	return ""
}

// statusFromOutcome maps a structured outcome value onto a status. Unlike
// table cells the outcome field is a bare token, so match it exactly.
func statusFromOutcome(outcome string) model.Status {
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case "passed":
		return model.StatusPassed
	case "failed", "error":
		return model.StatusFailed
	case "skipped":
		return model.StatusSkipped
	default:
		return model.StatusUnknown
	}
}

// rawString renders a JSON value as display text. Strings decode to their
// value, anything else keeps its raw JSON text.
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
