package application

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/notelens/notelens/infrastructure/observe"
	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/metrics"
	"github.com/notelens/notelens/internal/ports"
)

// Evaluator drives the per-sample evaluation loop: for each dataset sample
// it invokes every requested backend, scores structural successes against
// the sample's primary reference note, and flushes the result store after
// each sample. Execution is sequential; each backend call can take seconds
// to minutes and parallelism would blow through provider rate limits.
type Evaluator struct {
	analyzers    []ports.VideoAnalyzer
	engine       *metrics.Engine
	store        ports.ResultStore
	cacheEnabled bool
	observer     *observe.EvalMetrics
	logger       zerolog.Logger
}

// NewEvaluator wires the evaluation loop. observer may be nil to run
// without instrumentation.
func NewEvaluator(
	analyzers []ports.VideoAnalyzer,
	engine *metrics.Engine,
	store ports.ResultStore,
	cacheEnabled bool,
	observer *observe.EvalMetrics,
	logger zerolog.Logger,
) *Evaluator {
	return &Evaluator{
		analyzers:    analyzers,
		engine:       engine,
		store:        store,
		cacheEnabled: cacheEnabled,
		observer:     observer,
		logger:       logger.With().Str("component", "evaluator").Logger(),
	}
}

// Run evaluates every dataset sample in order and returns the results for
// this run, cached and fresh alike, in dataset order. Samples without a
// reference note are skipped and absent from the returned slice. A defective
// sample never aborts the run.
func (e *Evaluator) Run(ctx context.Context, ds *domain.Dataset) ([]*domain.SampleResult, error) {
	results := make([]*domain.SampleResult, 0, len(ds.Samples))

	for i := range ds.Samples {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("evaluation interrupted: %w", err)
		}

		sample := &ds.Samples[i]
		result := e.evaluateSample(ctx, sample)
		if result == nil {
			continue
		}
		results = append(results, result)

		e.store.Put(result)
		if err := e.store.Flush(); err != nil {
			// Losing the cache costs resumability, not results.
			e.logger.Error().Err(err).Str("sample", sample.ID).Msg("cache flush failed")
		}
		if e.observer != nil {
			e.observer.RecordSample()
		}
		e.logger.Info().Str("sample", sample.ID).
			Int("done", i+1).Int("total", len(ds.Samples)).Msg("sample evaluated")
	}
	return results, nil
}

// evaluateSample runs one sample through every analyzer. It returns nil for
// samples that cannot be scored (no reference note).
func (e *Evaluator) evaluateSample(ctx context.Context, sample *domain.Sample) *domain.SampleResult {
	ref, err := sample.PrimaryReference()
	if err != nil {
		e.logger.Warn().Str("sample", sample.ID).Msg("no reference note, skipping")
		if e.observer != nil {
			e.observer.RecordSkip()
		}
		return nil
	}

	if e.cacheEnabled {
		if cached, ok := e.store.Get(sample.ID); ok {
			e.logger.Debug().Str("sample", sample.ID).Msg("cache hit")
			if e.observer != nil {
				for model := range cached.Outcomes {
					e.observer.RecordAnalysis(model, observe.OutcomeCached, 0)
				}
			}
			return cached
		}
	}

	result := domain.NewSampleResult(sample, ref)
	req := ports.AnalysisRequest{
		VideoPath:      sample.VideoPath,
		PostText:       sample.Post.Text,
		AuthorName:     sample.Post.AuthorName,
		AuthorUsername: sample.Post.AuthorUsername,
		PostCreatedAt:  sample.Post.CreatedAt,
	}

	for _, analyzer := range e.analyzers {
		if !analyzer.IsAvailable(ctx) {
			// Absent credentials are configuration facts, not failures.
			e.logger.Warn().Str("model", analyzer.Name()).Str("sample", sample.ID).
				Msg("model unavailable, skipping")
			continue
		}

		start := time.Now()
		analysis := e.invoke(ctx, analyzer, req)
		elapsed := time.Since(start)

		outcome := &domain.ModelOutcome{
			Result:          analysis,
			ResponseSeconds: elapsed.Seconds(),
		}
		if analysis.Success {
			record := e.engine.Compare(ctx, analysis.Assessment, ref)
			outcome.Metrics = &record
		} else {
			e.logger.Warn().Str("model", analyzer.Name()).Str("sample", sample.ID).
				Str("error", analysis.Error).Msg("analysis failed")
		}
		result.Outcomes[analyzer.Name()] = outcome

		if e.observer != nil {
			outcomeLabel := observe.OutcomeSuccess
			if !analysis.Success {
				outcomeLabel = observe.OutcomeFailure
			}
			e.observer.RecordAnalysis(analyzer.Name(), outcomeLabel, elapsed)
		}
	}
	return result
}

// invoke calls the backend, converting a panic into a failure result so one
// misbehaving backend never aborts the run.
func (e *Evaluator) invoke(ctx context.Context, analyzer ports.VideoAnalyzer, req ports.AnalysisRequest) (result domain.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Str("model", analyzer.Name()).
				Interface("panic", r).Bytes("stack", debug.Stack()).
				Msg("backend panicked")
			result = domain.NewAnalysisFailure(analyzer.Name(), fmt.Errorf("backend panic: %v", r))
		}
	}()
	return analyzer.AnalyzeVideo(ctx, req)
}

// ModelNames returns the analyzer names in stable sorted order.
func (e *Evaluator) ModelNames() []string {
	names := make([]string, 0, len(e.analyzers))
	for _, analyzer := range e.analyzers {
		names = append(names, analyzer.Name())
	}
	sort.Strings(names)
	return names
}
