package application

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/notelens/notelens/internal/domain"
)

// LoadDataset reads a dataset JSON file. Samples missing an identifier or a
// video path are rejected up front; a dataset defect should fail loudly
// before any expensive model call is made.
func LoadDataset(path string) (*domain.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	var ds domain.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if len(ds.Samples) == 0 {
		return nil, fmt.Errorf("dataset %s contains no samples", path)
	}

	seen := make(map[string]bool, len(ds.Samples))
	for i := range ds.Samples {
		s := &ds.Samples[i]
		if s.ID == "" {
			return nil, fmt.Errorf("dataset %s: sample %d: %w", path, i, domain.ErrEmptySampleID)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("dataset %s: duplicate sample id %q", path, s.ID)
		}
		seen[s.ID] = true
		if s.VideoPath == "" {
			return nil, fmt.Errorf("dataset %s: sample %q has no video path", path, s.ID)
		}
	}
	return &ds, nil
}

// Truncate limits the dataset to its first n samples. Non-positive n leaves
// it untouched.
func Truncate(ds *domain.Dataset, n int) {
	if n > 0 && n < len(ds.Samples) {
		ds.Samples = ds.Samples[:n]
	}
}
