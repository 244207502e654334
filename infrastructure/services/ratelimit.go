package services

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/ports"
)

// Throttled wraps an analyzer with a request rate limit so evaluation runs
// stay inside provider quotas.
type Throttled struct {
	inner   ports.VideoAnalyzer
	limiter *rate.Limiter
}

var _ ports.VideoAnalyzer = (*Throttled)(nil)

// Throttle limits the analyzer to rps requests per second with a burst of
// one. A non-positive rps returns the analyzer unwrapped.
func Throttle(inner ports.VideoAnalyzer, rps float64) ports.VideoAnalyzer {
	if rps <= 0 {
		return inner
	}
	return &Throttled{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Name returns the wrapped analyzer's model identifier.
func (t *Throttled) Name() string { return t.inner.Name() }

// IsAvailable delegates to the wrapped analyzer without consuming a token.
func (t *Throttled) IsAvailable(ctx context.Context) bool {
	return t.inner.IsAvailable(ctx)
}

// AnalyzeVideo waits for rate limit clearance before delegating.
func (t *Throttled) AnalyzeVideo(ctx context.Context, req ports.AnalysisRequest) domain.AnalysisResult {
	if err := t.limiter.Wait(ctx); err != nil {
		return domain.NewAnalysisFailure(t.inner.Name(), err)
	}
	return t.inner.AnalyzeVideo(ctx, req)
}
