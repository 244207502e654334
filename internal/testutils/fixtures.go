package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notelens/notelens/internal/domain"
)

// FixtureSample builds a scoreable sample with one reference note.
func FixtureSample(id string) domain.Sample {
	return domain.Sample{
		ID:        id,
		VideoPath: "/videos/" + id + ".mp4",
		Post: domain.Post{
			Text:           "Breaking: president spotted at rally",
			AuthorName:     "News Account",
			AuthorUsername: "newsacct",
		},
		References: []domain.ReferenceNote{
			{
				IsMisleading:   true,
				Summary:        "The person in the video is not the president.",
				MisleadingTags: []string{"factual_error"},
			},
		},
	}
}

// FixtureDataset builds the three-sample scenario used by orchestrator
// tests: sample A with two reference notes, sample B with none, sample C
// with one.
func FixtureDataset() domain.Dataset {
	a := FixtureSample("sample_a")
	a.References = append(a.References, domain.ReferenceNote{
		IsMisleading: false,
		Summary:      "Second opinion that must never be scored.",
	})

	b := FixtureSample("sample_b")
	b.References = nil

	return domain.Dataset{
		Name:    "fixture",
		Samples: []domain.Sample{a, b, FixtureSample("sample_c")},
	}
}

// WriteDatasetFile writes a dataset to a JSON file under dir and returns its
// path.
func WriteDatasetFile(t *testing.T, dir string, ds domain.Dataset) string {
	t.Helper()

	data, err := json.MarshalIndent(ds, "", "  ")
	require.NoError(t, err)

	path := filepath.Join(dir, "dataset.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
