package domain

import "time"

// MetricsRecord is the closed set of agreement scores computed for one
// (sample, model) pair. Float fields are in [0,1]; ClassificationCorrect is
// averaged as 0/1 during aggregation.
type MetricsRecord struct {
	Rouge1                float64 `json:"rouge1"`
	Rouge2                float64 `json:"rouge2"`
	RougeL                float64 `json:"rougeL"`
	Bleu                  float64 `json:"bleu"`
	SemanticSimilarity    float64 `json:"semantic_similarity"`
	ClassificationCorrect bool    `json:"classification_correct"`
	ReasonPrecision       float64 `json:"reason_precision"`
	ReasonRecall          float64 `json:"reason_recall"`
	ReasonF1              float64 `json:"reason_f1"`
}

// ModelOutcome is the per-model slice of a sample's evaluation: the raw
// backend result, how long the call took, and the metrics record once scoring
// succeeded. Metrics stays nil for failed invocations.
type ModelOutcome struct {
	// Result is the backend's tagged success/failure output.
	Result AnalysisResult `json:"result"`

	// ResponseSeconds is the wall-clock duration of the backend call.
	ResponseSeconds float64 `json:"response_seconds"`

	// Metrics holds the agreement scores against the reference note.
	// Nil when the backend failed or scoring was skipped.
	Metrics *MetricsRecord `json:"metrics,omitempty"`
}

// SampleResult accumulates everything the harness recorded for one sample:
// the reference actually used for scoring plus one outcome per invoked model.
// This is also the cache entry shape, so a cached sample replays without any
// backend call.
type SampleResult struct {
	// SampleID identifies the sample this result belongs to.
	SampleID string `json:"sample_id"`

	// VideoPath is carried for report readability.
	VideoPath string `json:"video_path"`

	// PostText is carried for report readability.
	PostText string `json:"post_text"`

	// Reference is the human note the outcomes were scored against.
	Reference ReferenceNote `json:"reference"`

	// Outcomes maps model name to that model's outcome.
	Outcomes map[string]*ModelOutcome `json:"outcomes"`
}

// NewSampleResult builds an empty result shell for a sample.
func NewSampleResult(s *Sample, ref ReferenceNote) *SampleResult {
	return &SampleResult{
		SampleID:  s.ID,
		VideoPath: s.VideoPath,
		PostText:  s.Post.Text,
		Reference: ref,
		Outcomes:  make(map[string]*ModelOutcome),
	}
}

// ResponseTimeStats summarizes backend call durations for one model.
type ResponseTimeStats struct {
	MinSeconds   float64 `json:"min_seconds"`
	MaxSeconds   float64 `json:"max_seconds"`
	AvgSeconds   float64 `json:"avg_seconds"`
	TotalSeconds float64 `json:"total_seconds"`
}

// AggregateStats is the per-model arithmetic mean of every metrics field
// across all scored samples, plus response-time statistics. It is recomputed
// fully on each save, never updated incrementally.
type AggregateStats struct {
	Model                  string            `json:"model"`
	TotalEvaluated         int               `json:"total_evaluated"`
	ClassificationAccuracy float64           `json:"classification_accuracy"`
	Rouge1                 float64           `json:"rouge1"`
	Rouge2                 float64           `json:"rouge2"`
	RougeL                 float64           `json:"rougeL"`
	Bleu                   float64           `json:"bleu"`
	SemanticSimilarity     float64           `json:"semantic_similarity"`
	ReasonPrecision        float64           `json:"reason_precision"`
	ReasonRecall           float64           `json:"reason_recall"`
	ReasonF1               float64           `json:"reason_f1"`
	ResponseTime           ResponseTimeStats `json:"response_time"`
}

// RunInfo records the identity and provenance of one evaluation run.
type RunInfo struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Name is the run directory name (explicit or timestamp-derived).
	Name string `json:"name"`

	// Dataset is the path of the dataset file that was evaluated.
	Dataset string `json:"dataset"`

	// Models lists the model names requested for the run.
	Models []string `json:"models"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}
