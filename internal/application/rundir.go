package application

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RunDir is the per-invocation output container: one directory under
// <output>/runs/ holding the effective config, per-model result files, and
// metric artifacts for a single evaluation run.
type RunDir struct {
	// Path is the run directory itself.
	Path string

	runsRoot string
}

// NewRunDir creates <outputDir>/runs/<name> with its models/ and metrics/
// subdirectories.
func NewRunDir(outputDir, name string) (*RunDir, error) {
	runsRoot := filepath.Join(outputDir, "runs")
	path := filepath.Join(runsRoot, name)
	for _, dir := range []string{path, filepath.Join(path, "models"), filepath.Join(path, "metrics")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create run directory: %w", err)
		}
	}
	return &RunDir{Path: path, runsRoot: runsRoot}, nil
}

// ModelsDir returns the per-model artifact directory.
func (d *RunDir) ModelsDir() string { return filepath.Join(d.Path, "models") }

// MetricsDir returns the metric artifact directory.
func (d *RunDir) MetricsDir() string { return filepath.Join(d.Path, "metrics") }

// WriteConfig records the effective run configuration as config.yaml.
func (d *RunDir) WriteConfig(cfg RunConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode run config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.Path, "config.yaml"), data, 0o644); err != nil {
		return fmt.Errorf("write run config: %w", err)
	}
	return nil
}

// PointLatest repoints <output>/runs/latest at this run. Whatever currently
// occupies the marker, a previous symlink, a plain file, or a directory, is
// removed first so the marker always resolves to the most recent run.
func (d *RunDir) PointLatest() error {
	marker := filepath.Join(d.runsRoot, "latest")

	info, err := os.Lstat(marker)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("inspect latest marker: %w", err)
	case info.IsDir():
		if err := os.RemoveAll(marker); err != nil {
			return fmt.Errorf("remove stale latest directory: %w", err)
		}
	default:
		if err := os.Remove(marker); err != nil {
			return fmt.Errorf("remove stale latest marker: %w", err)
		}
	}

	if err := os.Symlink(filepath.Base(d.Path), marker); err != nil {
		return fmt.Errorf("create latest marker: %w", err)
	}
	return nil
}
