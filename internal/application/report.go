package application

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/notelens/notelens/internal/domain"
)

// comparisonColumns is the fixed column order of the comparison CSV.
var comparisonColumns = []string{
	"model", "accuracy", "rouge1", "rouge2", "rougeL", "bleu",
	"semantic_similarity", "reason_f1", "avg_response_time", "samples",
}

// unifiedResults is the shape of the top-level results.json artifact.
type unifiedResults struct {
	Run        domain.RunInfo                    `json:"run"`
	Results    []*domain.SampleResult            `json:"results"`
	Aggregates map[string]*domain.AggregateStats `json:"aggregate_stats"`
}

// modelReport is the shape of a per-model JSON artifact.
type modelReport struct {
	Model     string                 `json:"model"`
	Aggregate *domain.AggregateStats `json:"aggregate"`
	Results   []modelSampleResult    `json:"results"`
}

// modelSampleResult is one sample's outcome restricted to a single model.
type modelSampleResult struct {
	SampleID  string               `json:"sample_id"`
	VideoPath string               `json:"video_path"`
	Reference domain.ReferenceNote `json:"reference"`
	Outcome   *domain.ModelOutcome `json:"outcome"`
}

// ReportWriter renders the run's output artifacts. It does no scoring of its
// own. Only the unified results file is load-bearing; failure of any other
// artifact is logged and skipped so a rendering problem never loses the
// evaluation itself.
type ReportWriter struct {
	logger zerolog.Logger
}

// NewReportWriter creates a writer logging through the given logger.
func NewReportWriter(logger zerolog.Logger) *ReportWriter {
	return &ReportWriter{logger: logger.With().Str("component", "report").Logger()}
}

// WriteAll renders every artifact into the run directory. It returns an
// error only when the unified results file cannot be written.
func (w *ReportWriter) WriteAll(
	dir *RunDir,
	info domain.RunInfo,
	results []*domain.SampleResult,
	aggregates map[string]*domain.AggregateStats,
) error {
	if err := w.writeUnified(dir, info, results, aggregates); err != nil {
		return err
	}

	for _, model := range sortedModels(aggregates) {
		if err := w.writeModelReport(dir, model, results, aggregates[model]); err != nil {
			w.logger.Error().Err(err).Str("model", model).Msg("per-model report failed, continuing")
		}
	}
	if err := w.writeAggregates(dir, aggregates); err != nil {
		w.logger.Error().Err(err).Msg("aggregate stats file failed, continuing")
	}
	if err := w.writeComparisonCSV(dir, aggregates); err != nil {
		w.logger.Error().Err(err).Msg("comparison CSV failed, continuing")
	}
	if err := w.writeSummary(dir, info, results, aggregates); err != nil {
		w.logger.Error().Err(err).Msg("text summary failed, continuing")
	}
	return nil
}

func (w *ReportWriter) writeUnified(
	dir *RunDir,
	info domain.RunInfo,
	results []*domain.SampleResult,
	aggregates map[string]*domain.AggregateStats,
) error {
	payload := unifiedResults{Run: info, Results: results, Aggregates: aggregates}
	return writeJSON(filepath.Join(dir.Path, "results.json"), payload)
}

func (w *ReportWriter) writeModelReport(
	dir *RunDir,
	model string,
	results []*domain.SampleResult,
	aggregate *domain.AggregateStats,
) error {
	report := modelReport{Model: model, Aggregate: aggregate}
	for _, result := range results {
		outcome, ok := result.Outcomes[model]
		if !ok {
			continue
		}
		report.Results = append(report.Results, modelSampleResult{
			SampleID:  result.SampleID,
			VideoPath: result.VideoPath,
			Reference: result.Reference,
			Outcome:   outcome,
		})
	}
	return writeJSON(filepath.Join(dir.ModelsDir(), fileSafe(model)+".json"), report)
}

func (w *ReportWriter) writeAggregates(dir *RunDir, aggregates map[string]*domain.AggregateStats) error {
	return writeJSON(filepath.Join(dir.MetricsDir(), "aggregate_stats.json"), aggregates)
}

func (w *ReportWriter) writeComparisonCSV(dir *RunDir, aggregates map[string]*domain.AggregateStats) error {
	f, err := os.Create(filepath.Join(dir.MetricsDir(), "comparison.csv"))
	if err != nil {
		return fmt.Errorf("create comparison csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(comparisonColumns); err != nil {
		return err
	}
	for _, model := range sortedModels(aggregates) {
		agg := aggregates[model]
		row := []string{
			model,
			formatScore(agg.ClassificationAccuracy),
			formatScore(agg.Rouge1),
			formatScore(agg.Rouge2),
			formatScore(agg.RougeL),
			formatScore(agg.Bleu),
			formatScore(agg.SemanticSimilarity),
			formatScore(agg.ReasonF1),
			fmt.Sprintf("%.2f", agg.ResponseTime.AvgSeconds),
			strconv.Itoa(agg.TotalEvaluated),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *ReportWriter) writeSummary(
	dir *RunDir,
	info domain.RunInfo,
	results []*domain.SampleResult,
	aggregates map[string]*domain.AggregateStats,
) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluation run %s (%s)\n", info.Name, info.RunID)
	fmt.Fprintf(&b, "Dataset: %s\n", info.Dataset)
	fmt.Fprintf(&b, "Samples evaluated: %d\n\n", len(results))

	for _, model := range sortedModels(aggregates) {
		agg := aggregates[model]
		fmt.Fprintf(&b, "== %s ==\n", model)
		fmt.Fprintf(&b, "  evaluated:           %d\n", agg.TotalEvaluated)
		fmt.Fprintf(&b, "  accuracy:            %s\n", formatScore(agg.ClassificationAccuracy))
		fmt.Fprintf(&b, "  rouge1/2/L:          %s / %s / %s\n",
			formatScore(agg.Rouge1), formatScore(agg.Rouge2), formatScore(agg.RougeL))
		fmt.Fprintf(&b, "  bleu:                %s\n", formatScore(agg.Bleu))
		fmt.Fprintf(&b, "  semantic similarity: %s\n", formatScore(agg.SemanticSimilarity))
		fmt.Fprintf(&b, "  reason F1:           %s\n", formatScore(agg.ReasonF1))
		fmt.Fprintf(&b, "  avg response:        %.2fs (min %.2fs, max %.2fs, total %.2fs)\n\n",
			agg.ResponseTime.AvgSeconds, agg.ResponseTime.MinSeconds,
			agg.ResponseTime.MaxSeconds, agg.ResponseTime.TotalSeconds)
	}

	b.WriteString("Per-sample outcomes:\n")
	for _, result := range results {
		for _, model := range sortedModels(aggregates) {
			outcome, ok := result.Outcomes[model]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "  %s  %-20s  %s\n", result.SampleID, model, summarizeOutcome(outcome))
		}
	}

	return os.WriteFile(filepath.Join(dir.Path, "summary.txt"), []byte(b.String()), 0o644)
}

// summarizeOutcome renders one sample/model pair on a single line.
func summarizeOutcome(outcome *domain.ModelOutcome) string {
	if !outcome.Result.Success {
		return "FAILED: " + outcome.Result.Error
	}
	if outcome.Metrics == nil {
		return "ok (unscored)"
	}
	verdict := "correct"
	if !outcome.Metrics.ClassificationCorrect {
		verdict = "wrong"
	}
	return fmt.Sprintf("%s  rougeL=%s bleu=%s sem=%s f1=%s  %.1fs",
		verdict,
		formatScore(outcome.Metrics.RougeL),
		formatScore(outcome.Metrics.Bleu),
		formatScore(outcome.Metrics.SemanticSimilarity),
		formatScore(outcome.Metrics.ReasonF1),
		outcome.ResponseSeconds)
}

func writeJSON(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// fileSafe converts a model name into a filename fragment.
func fileSafe(model string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', ':', ' ':
			return '_'
		}
		return r
	}, model)
}

func sortedModels(aggregates map[string]*domain.AggregateStats) []string {
	models := make([]string, 0, len(aggregates))
	for model := range aggregates {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}
