package metrics

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/ports"
)

// Engine computes the full metrics record for one (assessment, reference)
// pair. The lexical scorers are pure; only semantic similarity reaches out to
// the embedding provider, and an embedding failure degrades that one field to
// 0 rather than failing the comparison.
//
// Engine is stateless apart from its injected dependencies and is safe for
// concurrent use.
type Engine struct {
	embedder ports.Embedder
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewEngine creates a metrics engine. A nil embedder disables semantic
// similarity; every record then carries 0 for that field.
func NewEngine(embedder ports.Embedder, logger zerolog.Logger) *Engine {
	return &Engine{
		embedder: embedder,
		logger:   logger.With().Str("component", "metrics").Logger(),
		tracer:   otel.Tracer("metrics-engine"),
	}
}

// Compare scores a validated assessment against the human reference note and
// returns the closed metrics record.
func (e *Engine) Compare(ctx context.Context, a domain.StructuredAssessment, ref domain.ReferenceNote) domain.MetricsRecord {
	ctx, span := e.tracer.Start(ctx, "Engine.Compare",
		trace.WithAttributes(attribute.Int("summary.len", len(a.Summary))))
	defer span.End()

	rec := domain.MetricsRecord{
		Rouge1:                RougeN(a.Summary, ref.Summary, 1).F1,
		Rouge2:                RougeN(a.Summary, ref.Summary, 2).F1,
		RougeL:                RougeL(a.Summary, ref.Summary).F1,
		Bleu:                  Bleu(a.Summary, ref.Summary),
		SemanticSimilarity:    e.semanticSimilarity(ctx, a.Summary, ref.Summary),
		ClassificationCorrect: ClassificationAgreement(a.IsMisleading, ref.IsMisleading),
	}

	tagScore := TagOverlap(domain.NormalizeTags(a.MisleadingTags), domain.NormalizeTags(ref.MisleadingTags))
	rec.ReasonPrecision = tagScore.Precision
	rec.ReasonRecall = tagScore.Recall
	rec.ReasonF1 = tagScore.F1

	return rec
}

// semanticSimilarity embeds both summaries and returns their clamped cosine
// similarity. Empty input or an embedding failure scores 0.
func (e *Engine) semanticSimilarity(ctx context.Context, generated, reference string) float64 {
	if generated == "" || reference == "" {
		return 0
	}
	if e.embedder == nil {
		return 0
	}

	vectors, err := e.embedder.Embed(ctx, []string{generated, reference})
	if err != nil || len(vectors) != 2 {
		e.logger.Warn().Err(err).Msg("embedding failed, semantic similarity scored 0")
		return 0
	}
	return Clamp01(CosineSimilarity(vectors[0], vectors[1]))
}
