package ports

import "context"

// Embedder produces sentence embeddings for semantic-similarity scoring.
// The metrics engine treats embedding failures as a neutral score, so
// implementations should return errors rather than degrade silently.
type Embedder interface {
	// Embed returns one embedding vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
