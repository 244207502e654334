package metrics_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/metrics"
	"github.com/notelens/notelens/internal/testutils"
)

func testAssessment() domain.StructuredAssessment {
	return domain.StructuredAssessment{
		PredictedLabel: "misleading",
		IsMisleading:   true,
		Summary:        "The video shows an old event presented as current.",
		MisleadingTags: []string{"outdated_information"},
		Confidence:     domain.ConfidenceHigh,
	}
}

func testReference() domain.ReferenceNote {
	return domain.ReferenceNote{
		IsMisleading:   true,
		Summary:        "This video shows an old event presented as current news.",
		MisleadingTags: []string{"outdated_information", "missing_important_context"},
	}
}

func TestEngine_Compare(t *testing.T) {
	engine := metrics.NewEngine(testutils.NewMockEmbedder(), zerolog.Nop())

	rec := engine.Compare(context.Background(), testAssessment(), testReference())

	assert.Greater(t, rec.Rouge1, 0.5)
	assert.Greater(t, rec.Bleu, 0.0)
	assert.True(t, rec.ClassificationCorrect)
	assert.InDelta(t, 1.0, rec.ReasonPrecision, 1e-9)
	assert.InDelta(t, 0.5, rec.ReasonRecall, 1e-9)

	// Near-identical summaries embed to near-identical char vectors.
	assert.Greater(t, rec.SemanticSimilarity, 0.9)
	assert.LessOrEqual(t, rec.SemanticSimilarity, 1.0)
}

func TestEngine_Compare_EmptySummary(t *testing.T) {
	embedder := testutils.NewMockEmbedder()
	engine := metrics.NewEngine(embedder, zerolog.Nop())

	a := testAssessment()
	a.Summary = ""

	rec := engine.Compare(context.Background(), a, testReference())

	assert.Zero(t, rec.Rouge1)
	assert.Zero(t, rec.Rouge2)
	assert.Zero(t, rec.RougeL)
	assert.Zero(t, rec.Bleu)
	assert.Zero(t, rec.SemanticSimilarity)
	assert.Zero(t, embedder.Calls(), "empty summaries must not reach the embedder")
}

func TestEngine_Compare_EmbedderFailureScoresZero(t *testing.T) {
	engine := metrics.NewEngine(testutils.FailingEmbedder(), zerolog.Nop())

	rec := engine.Compare(context.Background(), testAssessment(), testReference())

	assert.Zero(t, rec.SemanticSimilarity)
	assert.Greater(t, rec.Rouge1, 0.0, "lexical metrics survive an embedding failure")
}

func TestEngine_Compare_NilEmbedder(t *testing.T) {
	engine := metrics.NewEngine(nil, zerolog.Nop())

	rec := engine.Compare(context.Background(), testAssessment(), testReference())
	assert.Zero(t, rec.SemanticSimilarity)
}

func TestEngine_Compare_SimilarityClamped(t *testing.T) {
	embedder := testutils.NewMockEmbedder()
	// Opposed vectors produce a raw cosine of -1; the record must clamp.
	embedder.Vectors["generated"] = []float32{1, 0}
	embedder.Vectors["reference"] = []float32{-1, 0}
	engine := metrics.NewEngine(embedder, zerolog.Nop())

	a := testAssessment()
	a.Summary = "generated"
	ref := testReference()
	ref.Summary = "reference"

	rec := engine.Compare(context.Background(), a, ref)
	require.GreaterOrEqual(t, rec.SemanticSimilarity, 0.0)
	assert.Zero(t, rec.SemanticSimilarity)
}

func TestEngine_Compare_NormalizesTagsBeforeOverlap(t *testing.T) {
	engine := metrics.NewEngine(nil, zerolog.Nop())

	a := testAssessment()
	a.MisleadingTags = []string{"Outdated Info"}
	ref := testReference()
	ref.MisleadingTags = []string{"outdated_information"}

	rec := engine.Compare(context.Background(), a, ref)
	assert.InDelta(t, 1.0, rec.ReasonF1, 1e-9)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposed", []float32{1, 0}, []float32{-1, 0}, -1},
		{"empty", nil, nil, 0},
		{"length mismatch", []float32{1}, []float32{1, 2}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, metrics.CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, metrics.Clamp01(-0.2))
	assert.Equal(t, 1.0, metrics.Clamp01(1.0000001))
	assert.Equal(t, 0.5, metrics.Clamp01(0.5))
}
