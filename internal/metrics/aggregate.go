package metrics

import (
	"math"
	"sort"

	"github.com/notelens/notelens/internal/domain"
)

// AggregateAll reduces sample results to per-model aggregate statistics:
// the arithmetic mean of every metrics field over the model's scored
// outcomes, with booleans averaged as 0/1, plus response-time min/max/avg/
// total. Deliberately a dumb reducer: no weighting, no outlier handling.
//
// Models that produced outcomes but no scored ones still appear, with
// TotalEvaluated 0, which is itself diagnostic information.
func AggregateAll(results []*domain.SampleResult) map[string]*domain.AggregateStats {
	stats := make(map[string]*domain.AggregateStats)

	for _, model := range modelNames(results) {
		agg := &domain.AggregateStats{
			Model:        model,
			ResponseTime: domain.ResponseTimeStats{MinSeconds: math.Inf(1)},
		}

		for _, r := range results {
			outcome, ok := r.Outcomes[model]
			if !ok || outcome.Metrics == nil {
				continue
			}
			m := outcome.Metrics

			agg.TotalEvaluated++
			agg.Rouge1 += m.Rouge1
			agg.Rouge2 += m.Rouge2
			agg.RougeL += m.RougeL
			agg.Bleu += m.Bleu
			agg.SemanticSimilarity += m.SemanticSimilarity
			agg.ReasonPrecision += m.ReasonPrecision
			agg.ReasonRecall += m.ReasonRecall
			agg.ReasonF1 += m.ReasonF1
			if m.ClassificationCorrect {
				agg.ClassificationAccuracy++
			}

			secs := outcome.ResponseSeconds
			agg.ResponseTime.TotalSeconds += secs
			agg.ResponseTime.MinSeconds = math.Min(agg.ResponseTime.MinSeconds, secs)
			agg.ResponseTime.MaxSeconds = math.Max(agg.ResponseTime.MaxSeconds, secs)
		}

		if n := float64(agg.TotalEvaluated); n > 0 {
			agg.Rouge1 /= n
			agg.Rouge2 /= n
			agg.RougeL /= n
			agg.Bleu /= n
			agg.SemanticSimilarity /= n
			agg.ReasonPrecision /= n
			agg.ReasonRecall /= n
			agg.ReasonF1 /= n
			agg.ClassificationAccuracy /= n
			agg.ResponseTime.AvgSeconds = agg.ResponseTime.TotalSeconds / n
		} else {
			agg.ResponseTime.MinSeconds = 0
		}

		stats[model] = agg
	}

	return stats
}

// modelNames collects every model that produced an outcome, sorted for
// deterministic iteration.
func modelNames(results []*domain.SampleResult) []string {
	seen := make(map[string]struct{})
	for _, r := range results {
		for model := range r.Outcomes {
			seen[model] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for model := range seen {
		names = append(names, model)
	}
	sort.Strings(names)
	return names
}
