package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/ports"
)

// FileStore is the resumability cache: a JSON file mapping sample id to its
// evaluation result. It is flushed after every sample so a crash mid-run
// loses at most the in-flight sample. Single-writer by design contract; no
// file locking.
type FileStore struct {
	path    string
	entries map[string]*domain.SampleResult
	logger  zerolog.Logger
}

var _ ports.ResultStore = (*FileStore)(nil)

// NewFileStore creates a store backed by the given file. Call Load before
// first use.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:    path,
		entries: make(map[string]*domain.SampleResult),
		logger:  logger.With().Str("component", "cache").Logger(),
	}
}

// Load reads the cache file into memory. A missing file is an empty cache,
// not an error; a corrupt file is an error so stale results are never
// silently discarded.
func (s *FileStore) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cache %s: %w", s.path, err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return fmt.Errorf("parse cache %s: %w", s.path, err)
	}
	s.logger.Info().Int("entries", len(s.entries)).Str("path", s.path).Msg("cache loaded")
	return nil
}

// Get returns the cached result for a sample id, if present.
func (s *FileStore) Get(sampleID string) (*domain.SampleResult, bool) {
	result, ok := s.entries[sampleID]
	return result, ok
}

// Put records a sample's result, replacing any prior entry.
func (s *FileStore) Put(result *domain.SampleResult) {
	s.entries[result.SampleID] = result
}

// Flush writes the cache atomically: a temp file in the same directory is
// renamed over the target so a crash mid-write never corrupts the cache.
func (s *FileStore) Flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cache-*.json")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache %s: %w", s.path, err)
	}
	return nil
}

// Len reports the number of cached samples.
func (s *FileStore) Len() int { return len(s.entries) }
