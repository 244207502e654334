package application

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewRunDir_CreatesLayout(t *testing.T) {
	out := t.TempDir()

	dir, err := NewRunDir(out, "run_1")
	require.NoError(t, err)

	assert.DirExists(t, dir.Path)
	assert.DirExists(t, dir.ModelsDir())
	assert.DirExists(t, dir.MetricsDir())
	assert.Equal(t, filepath.Join(out, "runs", "run_1"), dir.Path)
}

func TestRunDir_WriteConfig(t *testing.T) {
	dir, err := NewRunDir(t.TempDir(), "run_1")
	require.NoError(t, err)

	cfg := DefaultRunConfig()
	cfg.RunName = "run_1"
	require.NoError(t, dir.WriteConfig(cfg))

	data, err := os.ReadFile(filepath.Join(dir.Path, "config.yaml"))
	require.NoError(t, err)

	var reread RunConfig
	require.NoError(t, yaml.Unmarshal(data, &reread))
	assert.Equal(t, cfg, reread)
}

func TestRunDir_PointLatest(t *testing.T) {
	out := t.TempDir()

	first, err := NewRunDir(out, "run_1")
	require.NoError(t, err)
	require.NoError(t, first.PointLatest())

	marker := filepath.Join(out, "runs", "latest")
	target, err := os.Readlink(marker)
	require.NoError(t, err)
	assert.Equal(t, "run_1", target)

	// A newer run repoints the marker.
	second, err := NewRunDir(out, "run_2")
	require.NoError(t, err)
	require.NoError(t, second.PointLatest())

	target, err = os.Readlink(marker)
	require.NoError(t, err)
	assert.Equal(t, "run_2", target)
}

func TestRunDir_PointLatest_RemovesStaleMarkers(t *testing.T) {
	t.Run("stale plain file", func(t *testing.T) {
		out := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(out, "runs"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(out, "runs", "latest"), []byte("old"), 0o644))

		dir, err := NewRunDir(out, "run_1")
		require.NoError(t, err)
		require.NoError(t, dir.PointLatest())

		target, err := os.Readlink(filepath.Join(out, "runs", "latest"))
		require.NoError(t, err)
		assert.Equal(t, "run_1", target)
	})

	t.Run("stale directory", func(t *testing.T) {
		out := t.TempDir()
		stale := filepath.Join(out, "runs", "latest")
		require.NoError(t, os.MkdirAll(filepath.Join(stale, "models"), 0o755))

		dir, err := NewRunDir(out, "run_1")
		require.NoError(t, err)
		require.NoError(t, dir.PointLatest())

		target, err := os.Readlink(stale)
		require.NoError(t, err)
		assert.Equal(t, "run_1", target)
	})
}
