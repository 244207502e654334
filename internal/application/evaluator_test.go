package application

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/metrics"
	"github.com/notelens/notelens/internal/ports"
	"github.com/notelens/notelens/internal/testutils"
)

func newTestEvaluator(t *testing.T, analyzers []ports.VideoAnalyzer, cacheEnabled bool) (*Evaluator, *FileStore) {
	t.Helper()

	store := NewFileStore(filepath.Join(t.TempDir(), "cache.json"), zerolog.Nop())
	require.NoError(t, store.Load())

	engine := metrics.NewEngine(testutils.NewMockEmbedder(), zerolog.Nop())
	return NewEvaluator(analyzers, engine, store, cacheEnabled, nil, zerolog.Nop()), store
}

func TestEvaluator_ThreeSampleScenario(t *testing.T) {
	// Sample A has two reference notes (only the first is scored), sample B
	// has none (skipped), sample C has one.
	ds := testutils.FixtureDataset()
	analyzer := testutils.NewMockAnalyzer("mock-model")
	eval, _ := newTestEvaluator(t, []ports.VideoAnalyzer{analyzer}, true)

	results, err := eval.Run(context.Background(), &ds)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "sample_a", results[0].SampleID)
	assert.Equal(t, "sample_c", results[1].SampleID)

	// Only the first reference is the scoring target.
	assert.Equal(t, "The person in the video is not the president.", results[0].Reference.Summary)

	aggregates := metrics.AggregateAll(results)
	require.Contains(t, aggregates, "mock-model")
	assert.Equal(t, 2, aggregates["mock-model"].TotalEvaluated)
}

func TestEvaluator_CacheRerunInvokesNothing(t *testing.T) {
	ds := testutils.FixtureDataset()
	analyzer := testutils.NewMockAnalyzer("mock-model")
	eval, store := newTestEvaluator(t, []ports.VideoAnalyzer{analyzer}, true)

	first, err := eval.Run(context.Background(), &ds)
	require.NoError(t, err)
	callsAfterFirst := analyzer.Calls()
	assert.Equal(t, 2, callsAfterFirst)

	// Second run over the same dataset and store replays entirely from
	// cache.
	ds2 := testutils.FixtureDataset()
	second, err := eval.Run(context.Background(), &ds2)
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, analyzer.Calls(), "cache hits must not invoke the backend")

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))

	assert.Equal(t, 2, store.Len())
}

func TestEvaluator_CacheDisabledReinvokes(t *testing.T) {
	ds := testutils.FixtureDataset()
	analyzer := testutils.NewMockAnalyzer("mock-model")
	eval, _ := newTestEvaluator(t, []ports.VideoAnalyzer{analyzer}, false)

	_, err := eval.Run(context.Background(), &ds)
	require.NoError(t, err)

	ds2 := testutils.FixtureDataset()
	_, err = eval.Run(context.Background(), &ds2)
	require.NoError(t, err)

	assert.Equal(t, 4, analyzer.Calls())
}

func TestEvaluator_UnavailableModelAbsentFromResults(t *testing.T) {
	ds := testutils.FixtureDataset()
	up := testutils.NewMockAnalyzer("model-up")
	down := testutils.NewMockAnalyzer("model-down")
	down.Available = false

	eval, _ := newTestEvaluator(t, []ports.VideoAnalyzer{up, down}, true)

	results, err := eval.Run(context.Background(), &ds)
	require.NoError(t, err)

	for _, result := range results {
		assert.Contains(t, result.Outcomes, "model-up")
		assert.NotContains(t, result.Outcomes, "model-down")
	}
	assert.Equal(t, 0, down.Calls())

	aggregates := metrics.AggregateAll(results)
	assert.NotContains(t, aggregates, "model-down")
}

func TestEvaluator_BackendPanicBecomesFailure(t *testing.T) {
	ds := testutils.FixtureDataset()
	analyzer := testutils.NewMockAnalyzer("panicky")
	analyzer.PanicWith = "model exploded"

	eval, _ := newTestEvaluator(t, []ports.VideoAnalyzer{analyzer}, true)

	results, err := eval.Run(context.Background(), &ds)
	require.NoError(t, err)
	require.Len(t, results, 2)

	outcome := results[0].Outcomes["panicky"]
	require.NotNil(t, outcome)
	assert.False(t, outcome.Result.Success)
	assert.Contains(t, outcome.Result.Error, "model exploded")
	assert.Nil(t, outcome.Metrics)
}

func TestEvaluator_FailedAnalysisIsRecordedUnscored(t *testing.T) {
	ds := testutils.FixtureDataset()
	analyzer := testutils.NewMockAnalyzer("flaky")
	analyzer.ResultFn = func(ports.AnalysisRequest) domain.AnalysisResult {
		return domain.NewAnalysisFailure("flaky", errors.New("upstream 503"))
	}

	eval, _ := newTestEvaluator(t, []ports.VideoAnalyzer{analyzer}, true)

	results, err := eval.Run(context.Background(), &ds)
	require.NoError(t, err)
	require.Len(t, results, 2)

	outcome := results[0].Outcomes["flaky"]
	require.NotNil(t, outcome)
	assert.False(t, outcome.Result.Success)
	assert.Contains(t, outcome.Result.Error, "upstream 503")
	assert.Nil(t, outcome.Metrics)

	// Failed invocations still count as results; only scoring is skipped.
	aggregates := metrics.AggregateAll(results)
	require.Contains(t, aggregates, "flaky")
	assert.Equal(t, 0, aggregates["flaky"].TotalEvaluated)
}
