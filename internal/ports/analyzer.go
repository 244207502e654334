// Package ports defines the interfaces the evaluation orchestrator depends
// on: model service backends, the resumable result store, and the embedding
// provider used for semantic scoring. Implementations live under
// infrastructure; tests substitute doubles from internal/testutils.
package ports

import (
	"context"
	"time"

	"github.com/notelens/notelens/internal/domain"
)

// AnalysisRequest carries one video and its post context to a backend.
type AnalysisRequest struct {
	// VideoPath is the local path of the video file to analyze.
	VideoPath string

	// PostText is the text of the originating post.
	PostText string

	// AuthorName is the display name of the post author.
	AuthorName string

	// AuthorUsername is the author handle, when known.
	AuthorUsername string

	// PostCreatedAt is the post timestamp, when known.
	PostCreatedAt *time.Time
}

// VideoAnalyzer is the uniform contract every model backend implements.
// Implementations convert transport failures, processing timeouts, and
// malformed output into failure-tagged AnalysisResults; AnalyzeVideo never
// reports errors by any other channel.
type VideoAnalyzer interface {
	// Name returns the model identifier this backend evaluates with.
	Name() string

	// IsAvailable cheaply reports whether the backend can run: credentials
	// present, local runtime reachable. It performs no expensive work and
	// never errors; absence of configuration is a fact, not a failure.
	IsAvailable(ctx context.Context) bool

	// AnalyzeVideo runs one analysis. The returned result is always
	// well-formed: success with a validated assessment, or failure with a
	// descriptive error string.
	AnalyzeVideo(ctx context.Context, req AnalysisRequest) domain.AnalysisResult
}
