// Package history persists a bounded window of past run summaries.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/azirolabs/resultdash/model"
)

// MaxEntries caps the persisted window. Older runs fall off the end.
const MaxEntries = 5

// Store persists run summaries to a single JSON file, newest first. Writes
// take a file lock and go through a temp file rename, so concurrent saves
// cannot corrupt the file or lose entries.
type Store struct {
	logger zerolog.Logger
	path   string
}

// New creates a store backed by the given file path.
func New(logger zerolog.Logger, path string) *Store {
	return &Store{logger: logger, path: path}
}

// Load returns the persisted entries. A missing or corrupt file yields an
// empty list, never an error.
func (s *Store) Load() []model.HistoryEntry {
	var entries []model.HistoryEntry
	if err := readJSON(s.path, &entries); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to load run history")
		return nil
	}
	return entries
}

// Save prepends entry and rewrites the file, keeping at most MaxEntries.
// Failures are logged, not returned: losing a history write must not take
// down the current run's results.
func (s *Store) Save(entry model.HistoryEntry) {
	err := s.withLock(func() error {
		entries := append([]model.HistoryEntry{entry}, s.Load()...)
		if len(entries) > MaxEntries {
			entries = entries[:MaxEntries]
		}
		return writeJSON(s.path, entries)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to save run history")
	}
}

func (s *Store) withLock(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}

	fileLock := flock.New(s.path + ".lock")
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire history lock: %w", err)
	}
	defer func() { _ = fileLock.Unlock() }()

	return fn()
}

func readJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}

func writeJSON(path string, value any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".history-*.json")
	if err != nil {
		return err
	}

	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp.Name())
		}
	}()

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	renamed = true
	return nil
}
