package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/testutils"
)

func TestLoadDataset(t *testing.T) {
	ds := testutils.FixtureDataset()
	path := testutils.WriteDatasetFile(t, t.TempDir(), ds)

	loaded, err := LoadDataset(path)
	require.NoError(t, err)

	assert.Equal(t, "fixture", loaded.Name)
	require.Len(t, loaded.Samples, 3)
	assert.Equal(t, "sample_a", loaded.Samples[0].ID)
	assert.Len(t, loaded.Samples[0].References, 2)
	assert.Empty(t, loaded.Samples[1].References)
}

func TestLoadDataset_Defects(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		mutate  func(*domain.Dataset)
		wantErr string
	}{
		{
			name:    "missing sample id",
			mutate:  func(ds *domain.Dataset) { ds.Samples[0].ID = "" },
			wantErr: "sample",
		},
		{
			name:    "duplicate sample id",
			mutate:  func(ds *domain.Dataset) { ds.Samples[1].ID = ds.Samples[0].ID },
			wantErr: "duplicate",
		},
		{
			name:    "missing video path",
			mutate:  func(ds *domain.Dataset) { ds.Samples[2].VideoPath = "" },
			wantErr: "video path",
		},
		{
			name:    "empty dataset",
			mutate:  func(ds *domain.Dataset) { ds.Samples = nil },
			wantErr: "no samples",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := testutils.FixtureDataset()
			tt.mutate(&ds)
			path := testutils.WriteDatasetFile(t, t.TempDir(), ds)

			_, err := LoadDataset(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadDataset(filepath.Join(dir, "absent.json"))
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("["), 0o644))
		_, err := LoadDataset(path)
		assert.Error(t, err)
	})
}

func TestTruncate(t *testing.T) {
	ds := testutils.FixtureDataset()

	Truncate(&ds, 0)
	assert.Len(t, ds.Samples, 3)

	Truncate(&ds, 5)
	assert.Len(t, ds.Samples, 3)

	Truncate(&ds, 2)
	assert.Len(t, ds.Samples, 2)
}

func TestRunConfig_Validate(t *testing.T) {
	cfg := DefaultRunConfig()
	require.NoError(t, cfg.Validate())

	tests := []struct {
		name   string
		mutate func(*RunConfig)
	}{
		{name: "no dataset", mutate: func(c *RunConfig) { c.DatasetPath = "" }},
		{name: "no output dir", mutate: func(c *RunConfig) { c.OutputDir = "" }},
		{name: "no models", mutate: func(c *RunConfig) { c.Models = nil }},
		{name: "negative limit", mutate: func(c *RunConfig) { c.Limit = -1 }},
		{name: "bad qwen mode", mutate: func(c *RunConfig) { c.QwenMode = "remote" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := DefaultRunConfig()
			tt.mutate(&bad)
			assert.Error(t, bad.Validate())
		})
	}
}

func TestRunConfig_EffectiveNames(t *testing.T) {
	cfg := DefaultRunConfig()

	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, "run_20260314_092653", cfg.EffectiveRunName(now))

	cfg.RunName = "baseline"
	assert.Equal(t, "baseline", cfg.EffectiveRunName(now))

	assert.Equal(t, filepath.Join("eval_output", "eval_cache.json"), cfg.EffectiveCachePath())
	cfg.CachePath = "/tmp/c.json"
	assert.Equal(t, "/tmp/c.json", cfg.EffectiveCachePath())
}

func TestLoadRunConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"dataset: ds.json\noutput_dir: out\nmodels: [gemini]\nlimit: 10\n"), 0o644))

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ds.json", cfg.DatasetPath)
	assert.Equal(t, []string{"gemini"}, cfg.Models)
	assert.Equal(t, 10, cfg.Limit)
	// Defaults survive partial files.
	assert.True(t, cfg.CacheEnabled)

	_, err = LoadRunConfig(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}
