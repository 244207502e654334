package application

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RunConfig is the effective configuration of one evaluation run. It is
// validated before the run starts and dumped verbatim into the run directory
// so every run records exactly what produced it.
type RunConfig struct {
	// DatasetPath locates the dataset JSON file to evaluate.
	DatasetPath string `yaml:"dataset" validate:"required"`

	// OutputDir is the root under which runs/ and the cache file live.
	OutputDir string `yaml:"output_dir" validate:"required"`

	// RunName names the run directory. Empty derives a timestamp name.
	RunName string `yaml:"run_name,omitempty"`

	// Models lists the model families to evaluate, optionally with an
	// explicit model as "family:model".
	Models []string `yaml:"models" validate:"required,min=1,dive,min=1"`

	// Limit caps the number of dataset samples evaluated. Zero means all.
	Limit int `yaml:"limit" validate:"min=0"`

	// CacheEnabled controls whether previously evaluated samples are
	// skipped. Results are written to the cache either way.
	CacheEnabled bool `yaml:"cache_enabled"`

	// CachePath overrides the cache file location. Empty places it under
	// OutputDir, outside any run directory, so it survives across runs.
	CachePath string `yaml:"cache_path,omitempty"`

	// RequestsPerSecond throttles backend calls. Zero disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`

	// QwenMode selects local or api inference for the open-weight family.
	QwenMode string `yaml:"qwen_mode,omitempty" validate:"omitempty,oneof=local api"`

	// OllamaHost is the local inference server address for the open-weight
	// family. Empty uses the default.
	OllamaHost string `yaml:"ollama_host,omitempty"`
}

// DefaultRunConfig returns the configuration used when no overrides are
// given: evaluate every family, cache enabled, unthrottled.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		DatasetPath:  "dataset.json",
		OutputDir:    "eval_output",
		Models:       []string{"gemini", "gpt4o", "claude", "qwen"},
		CacheEnabled: true,
		QwenMode:     "local",
	}
}

// Validate checks the configuration's structural constraints.
func (c *RunConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid run config: %w", err)
	}
	return nil
}

// EffectiveRunName returns the run directory name: the explicit name when
// set, otherwise a timestamp derived from now.
func (c *RunConfig) EffectiveRunName(now time.Time) string {
	if c.RunName != "" {
		return c.RunName
	}
	return "run_" + now.Format("20060102_150405")
}

// EffectiveCachePath returns the cache file location. The default sits
// directly under OutputDir so the cache spans runs.
func (c *RunConfig) EffectiveCachePath() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	return filepath.Join(c.OutputDir, "eval_cache.json")
}

// LoadRunConfig reads and validates a YAML run configuration file.
func LoadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultRunConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}
