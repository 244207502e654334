package application

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/metrics"
	"github.com/notelens/notelens/internal/ports"
	"github.com/notelens/notelens/internal/testutils"
)

func runFixtureEvaluation(t *testing.T) ([]*domain.SampleResult, map[string]*domain.AggregateStats) {
	t.Helper()

	ds := testutils.FixtureDataset()
	analyzer := testutils.NewMockAnalyzer("gemini-2.0-flash")
	eval, _ := newTestEvaluator(t, []ports.VideoAnalyzer{analyzer}, true)

	results, err := eval.Run(context.Background(), &ds)
	require.NoError(t, err)
	return results, metrics.AggregateAll(results)
}

func fixtureRunInfo() domain.RunInfo {
	return domain.RunInfo{
		RunID:     "11111111-2222-3333-4444-555555555555",
		Name:      "run_test",
		Dataset:   "dataset.json",
		Models:    []string{"gemini-2.0-flash"},
		StartedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestReportWriter_WriteAll(t *testing.T) {
	results, aggregates := runFixtureEvaluation(t)
	dir, err := NewRunDir(t.TempDir(), "run_test")
	require.NoError(t, err)

	writer := NewReportWriter(zerolog.Nop())
	require.NoError(t, writer.WriteAll(dir, fixtureRunInfo(), results, aggregates))

	assert.FileExists(t, filepath.Join(dir.Path, "results.json"))
	assert.FileExists(t, filepath.Join(dir.ModelsDir(), "gemini-2.0-flash.json"))
	assert.FileExists(t, filepath.Join(dir.MetricsDir(), "aggregate_stats.json"))
	assert.FileExists(t, filepath.Join(dir.MetricsDir(), "comparison.csv"))
	assert.FileExists(t, filepath.Join(dir.Path, "summary.txt"))
}

func TestReportWriter_UnifiedResultsShape(t *testing.T) {
	results, aggregates := runFixtureEvaluation(t)
	dir, err := NewRunDir(t.TempDir(), "run_test")
	require.NoError(t, err)

	writer := NewReportWriter(zerolog.Nop())
	require.NoError(t, writer.WriteAll(dir, fixtureRunInfo(), results, aggregates))

	data, err := os.ReadFile(filepath.Join(dir.Path, "results.json"))
	require.NoError(t, err)

	var unified unifiedResults
	require.NoError(t, json.Unmarshal(data, &unified))

	assert.Equal(t, "run_test", unified.Run.Name)
	require.Len(t, unified.Results, 2)
	assert.Equal(t, "sample_a", unified.Results[0].SampleID)
	require.Contains(t, unified.Aggregates, "gemini-2.0-flash")
	assert.Equal(t, 2, unified.Aggregates["gemini-2.0-flash"].TotalEvaluated)
}

func TestReportWriter_ComparisonCSVColumns(t *testing.T) {
	results, aggregates := runFixtureEvaluation(t)
	dir, err := NewRunDir(t.TempDir(), "run_test")
	require.NoError(t, err)

	writer := NewReportWriter(zerolog.Nop())
	require.NoError(t, writer.WriteAll(dir, fixtureRunInfo(), results, aggregates))

	f, err := os.Open(filepath.Join(dir.MetricsDir(), "comparison.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, comparisonColumns, rows[0])
	assert.Equal(t, "gemini-2.0-flash", rows[1][0])
	assert.Equal(t, "2", rows[1][9])
}

func TestReportWriter_PerModelReport(t *testing.T) {
	results, aggregates := runFixtureEvaluation(t)
	dir, err := NewRunDir(t.TempDir(), "run_test")
	require.NoError(t, err)

	writer := NewReportWriter(zerolog.Nop())
	require.NoError(t, writer.WriteAll(dir, fixtureRunInfo(), results, aggregates))

	data, err := os.ReadFile(filepath.Join(dir.ModelsDir(), "gemini-2.0-flash.json"))
	require.NoError(t, err)

	var report modelReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "gemini-2.0-flash", report.Model)
	require.NotNil(t, report.Aggregate)
	assert.Len(t, report.Results, 2)
}

func TestReportWriter_AllFailuresStillReports(t *testing.T) {
	// A run where every call failed still emits the unified file and
	// summary; zero evaluated is diagnostic output, not an error.
	ds := testutils.FixtureDataset()
	analyzer := testutils.NewMockAnalyzer("broken")
	analyzer.Result = domain.NewAnalysisFailure("broken", assert.AnError)

	eval, _ := newTestEvaluator(t, []ports.VideoAnalyzer{analyzer}, true)
	results, err := eval.Run(context.Background(), &ds)
	require.NoError(t, err)

	aggregates := metrics.AggregateAll(results)
	dir, err := NewRunDir(t.TempDir(), "run_test")
	require.NoError(t, err)

	writer := NewReportWriter(zerolog.Nop())
	require.NoError(t, writer.WriteAll(dir, fixtureRunInfo(), results, aggregates))

	assert.FileExists(t, filepath.Join(dir.Path, "results.json"))
	assert.FileExists(t, filepath.Join(dir.Path, "summary.txt"))
	assert.Equal(t, 0, aggregates["broken"].TotalEvaluated)
}

func TestFileSafe(t *testing.T) {
	assert.Equal(t, "qwen2.5vl_7b", fileSafe("qwen2.5vl:7b"))
	assert.Equal(t, "org_model_name", fileSafe("org/model name"))
}
