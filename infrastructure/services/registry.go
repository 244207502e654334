package services

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/notelens/notelens/internal/ports"
)

// FamilyFactory builds an analyzer for a model family. The model argument
// may be empty to request the family default.
type FamilyFactory func(deps FactoryDeps, model string) ports.VideoAnalyzer

// FactoryDeps carries the shared infrastructure factories need.
type FactoryDeps struct {
	Frames *FrameExtractor
	Logger zerolog.Logger

	// GeminiAPIKey etc. carry per-provider credentials resolved from the
	// environment at registry construction.
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	QwenAPIKey      string
	QwenBaseURL     string
	QwenMode        QwenMode
	OllamaHost      string

	// RequestsPerSecond throttles every built analyzer when positive.
	RequestsPerSecond float64
}

// familyConfig describes one registered model family.
type familyConfig struct {
	envVar  string
	factory FamilyFactory
}

// Registry maps model family names onto analyzer factories. Families whose
// credentials are absent from the environment are registered but gated:
// requesting them fails with a clear error rather than a mid-run surprise.
type Registry struct {
	mu       sync.RWMutex
	deps     FactoryDeps
	families map[string]familyConfig
}

// NewRegistry creates a registry with the built-in families: gemini (native
// video), gpt4o and claude (frame-based), and qwen (open-weight, local or
// hosted).
func NewRegistry(deps FactoryDeps) *Registry {
	r := &Registry{
		deps:     deps,
		families: make(map[string]familyConfig),
	}

	r.Register("gemini", "GEMINI_API_KEY", func(deps FactoryDeps, model string) ports.VideoAnalyzer {
		return NewGeminiAnalyzer(deps.GeminiAPIKey, model, deps.Logger)
	})
	r.Register("gpt4o", "OPENAI_API_KEY", func(deps FactoryDeps, model string) ports.VideoAnalyzer {
		return NewOpenAIAnalyzer(deps.OpenAIAPIKey, model, deps.Frames, deps.Logger)
	})
	r.Register("claude", "ANTHROPIC_API_KEY", func(deps FactoryDeps, model string) ports.VideoAnalyzer {
		return NewAnthropicAnalyzer(deps.AnthropicAPIKey, model, deps.Frames, deps.Logger)
	})
	// Local qwen needs no key, so it carries no env gate.
	r.Register("qwen", "", func(deps FactoryDeps, model string) ports.VideoAnalyzer {
		return NewQwenAnalyzer(QwenConfig{
			Model:   model,
			Mode:    deps.QwenMode,
			Host:    deps.OllamaHost,
			APIKey:  deps.QwenAPIKey,
			BaseURL: deps.QwenBaseURL,
		}, deps.Frames, deps.Logger)
	})

	return r
}

// Register adds or replaces a family. An empty envVar means the family has
// no credential gate.
func (r *Registry) Register(family, envVar string, factory FamilyFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.families[family] = familyConfig{envVar: envVar, factory: factory}
}

// Families returns the registered family names, sorted.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.families))
	for name := range r.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get builds an analyzer for the family, applying the configured throttle.
// It fails when the family is unknown or its credential gate is unmet.
func (r *Registry) Get(family, model string) (ports.VideoAnalyzer, error) {
	r.mu.RLock()
	cfg, ok := r.families[family]
	deps := r.deps
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown model family %q (registered: %v)", family, r.Families())
	}
	if cfg.envVar != "" && os.Getenv(cfg.envVar) == "" {
		return nil, fmt.Errorf("model family %q requires %s to be set", family, cfg.envVar)
	}

	return Throttle(cfg.factory(deps, model), deps.RequestsPerSecond), nil
}

// Probe checks the availability of each analyzer concurrently and returns
// the subset that answered ready. Unavailable analyzers are logged and
// skipped rather than failing the run.
func (r *Registry) Probe(ctx context.Context, analyzers []ports.VideoAnalyzer) []ports.VideoAnalyzer {
	ready := make([]bool, len(analyzers))

	g, probeCtx := errgroup.WithContext(ctx)
	for i, analyzer := range analyzers {
		g.Go(func() error {
			ready[i] = analyzer.IsAvailable(probeCtx)
			return nil
		})
	}
	_ = g.Wait()

	available := make([]ports.VideoAnalyzer, 0, len(analyzers))
	for i, analyzer := range analyzers {
		if !ready[i] {
			r.deps.Logger.Warn().Str("model", analyzer.Name()).
				Msg("model unavailable, skipping")
			continue
		}
		available = append(available, analyzer)
	}
	return available
}
