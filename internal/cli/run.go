package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notelens/notelens/infrastructure/observe"
	"github.com/notelens/notelens/infrastructure/services"
	"github.com/notelens/notelens/internal/application"
	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/metrics"
	"github.com/notelens/notelens/internal/ports"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the configured models over a dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveRunConfig()
		if err != nil {
			return err
		}
		return executeRun(cmd, cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("dataset", "", "dataset JSON file")
	runCmd.Flags().String("output", "", "output root directory")
	runCmd.Flags().String("run-name", "", "name of the run directory (default: timestamp)")
	runCmd.Flags().StringSlice("models", nil, "model families to evaluate (family or family:model)")
	runCmd.Flags().Int("limit", 0, "evaluate at most N samples (0 = all)")
	runCmd.Flags().Bool("no-cache", false, "ignore cached results and re-evaluate every sample")
	runCmd.Flags().Float64("rps", 0, "max backend requests per second (0 = unthrottled)")
	runCmd.Flags().String("qwen-mode", "", "open-weight inference mode: local or api")
	runCmd.Flags().String("ollama-host", "", "Ollama server address for local inference")

	for _, flag := range []string{"dataset", "output", "run-name", "models", "limit", "no-cache", "rps", "qwen-mode", "ollama-host"} {
		_ = viper.BindPFlag(flag, runCmd.Flags().Lookup(flag))
	}
}

// resolveRunConfig merges defaults, config file, environment, and flags into
// the effective run configuration (flags win).
func resolveRunConfig() (application.RunConfig, error) {
	cfg := application.DefaultRunConfig()
	if cfgFile != "" {
		loaded, err := application.LoadRunConfig(cfgFile)
		if err != nil {
			return application.RunConfig{}, err
		}
		cfg = loaded
	}

	if v := viper.GetString("dataset"); v != "" {
		cfg.DatasetPath = v
	}
	if v := viper.GetString("output"); v != "" {
		cfg.OutputDir = v
	}
	if v := viper.GetString("run-name"); v != "" {
		cfg.RunName = v
	}
	if v := viper.GetStringSlice("models"); len(v) > 0 {
		cfg.Models = v
	}
	if v := viper.GetInt("limit"); v > 0 {
		cfg.Limit = v
	}
	if viper.GetBool("no-cache") {
		cfg.CacheEnabled = false
	}
	if v := viper.GetFloat64("rps"); v > 0 {
		cfg.RequestsPerSecond = v
	}
	if v := viper.GetString("qwen-mode"); v != "" {
		cfg.QwenMode = v
	}
	if v := viper.GetString("ollama-host"); v != "" {
		cfg.OllamaHost = v
	}

	if err := cfg.Validate(); err != nil {
		return application.RunConfig{}, err
	}
	return cfg, nil
}

func executeRun(cmd *cobra.Command, cfg application.RunConfig) error {
	ctx := cmd.Context()
	logger := newLogger()
	startedAt := time.Now()

	ds, err := application.LoadDataset(cfg.DatasetPath)
	if err != nil {
		return err
	}
	application.Truncate(ds, cfg.Limit)
	logger.Info().Int("samples", len(ds.Samples)).Str("dataset", cfg.DatasetPath).Msg("dataset loaded")

	registry := services.NewRegistry(services.FactoryDeps{
		Frames:            services.NewFrameExtractor(logger),
		Logger:            logger,
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		QwenAPIKey:        os.Getenv("DASHSCOPE_API_KEY"),
		QwenBaseURL:       os.Getenv("DASHSCOPE_BASE_URL"),
		QwenMode:          services.QwenMode(cfg.QwenMode),
		OllamaHost:        cfg.OllamaHost,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	analyzers := make([]ports.VideoAnalyzer, 0, len(cfg.Models))
	for _, spec := range cfg.Models {
		family, model := splitModelSpec(spec)
		analyzer, err := registry.Get(family, model)
		if err != nil {
			logger.Warn().Err(err).Str("family", family).Msg("model not usable, skipping")
			continue
		}
		analyzers = append(analyzers, analyzer)
	}

	analyzers = registry.Probe(ctx, analyzers)
	if len(analyzers) == 0 {
		return fmt.Errorf("no requested model is available; check credentials and local runtimes")
	}

	store := application.NewFileStore(cfg.EffectiveCachePath(), logger)
	if err := store.Load(); err != nil {
		return err
	}

	var embedder ports.Embedder
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		embedder = services.NewOpenAIEmbedder(key)
	} else {
		logger.Warn().Msg("OPENAI_API_KEY unset; semantic similarity will be 0")
	}
	engine := metrics.NewEngine(embedder, logger)

	runDir, err := application.NewRunDir(cfg.OutputDir, cfg.EffectiveRunName(startedAt))
	if err != nil {
		return err
	}
	if err := runDir.WriteConfig(cfg); err != nil {
		return err
	}

	observer := observe.NewEvalMetrics(prometheus.DefaultRegisterer)
	evaluator := application.NewEvaluator(analyzers, engine, store, cfg.CacheEnabled, observer, logger)

	results, err := evaluator.Run(ctx, ds)
	if err != nil {
		return err
	}
	aggregates := metrics.AggregateAll(results)

	info := domain.RunInfo{
		RunID:      uuid.NewString(),
		Name:       cfg.EffectiveRunName(startedAt),
		Dataset:    cfg.DatasetPath,
		Models:     evaluator.ModelNames(),
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}

	writer := application.NewReportWriter(logger)
	if err := writer.WriteAll(runDir, info, results, aggregates); err != nil {
		return err
	}
	if err := runDir.PointLatest(); err != nil {
		logger.Error().Err(err).Msg("failed to repoint latest marker")
	}

	printSummary(info, results, aggregates, runDir.Path)
	return nil
}

// splitModelSpec separates "family:model" into its parts; a bare family
// requests the family default.
func splitModelSpec(spec string) (family, model string) {
	for i := 0; i < len(spec); i++ {
		if spec[i] == ':' {
			return spec[:i], spec[i+1:]
		}
	}
	return spec, ""
}

// printSummary renders the end-of-run terminal summary.
func printSummary(info domain.RunInfo, results []*domain.SampleResult, aggregates map[string]*domain.AggregateStats, runPath string) {
	header := color.New(color.Bold, color.FgCyan)
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	header.Printf("\nRun %s complete: %d samples in %s\n",
		info.Name, len(results), info.FinishedAt.Sub(info.StartedAt).Round(time.Second))

	for _, model := range info.Models {
		agg, ok := aggregates[model]
		if !ok {
			continue
		}
		fmt.Printf("  %-24s", model)
		if agg.TotalEvaluated == 0 {
			bad.Print("no successful evaluations")
			fmt.Println()
			continue
		}
		good.Printf("acc=%.2f", agg.ClassificationAccuracy)
		fmt.Printf("  rougeL=%.3f bleu=%.3f sem=%.3f f1=%.3f  (%d scored, avg %.1fs)\n",
			agg.RougeL, agg.Bleu, agg.SemanticSimilarity, agg.ReasonF1,
			agg.TotalEvaluated, agg.ResponseTime.AvgSeconds)
	}
	fmt.Printf("\nArtifacts: %s\n", runPath)
}
