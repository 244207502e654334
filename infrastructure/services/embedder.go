package services

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/notelens/notelens/internal/ports"
)

// OpenAIEmbedder produces text embeddings through the OpenAI embeddings API
// for the semantic similarity metric.
type OpenAIEmbedder struct {
	model  openai.EmbeddingModel
	client *lazy[*openai.Client]
}

var _ ports.Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder creates an embedder using text-embedding-3-small.
func NewOpenAIEmbedder(apiKey string) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		model: openai.SmallEmbedding3,
		client: newLazy(func() (*openai.Client, error) {
			return openai.NewClient(apiKey), nil
		}),
	}
}

// Embed returns one vector per input text, in input order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	client, err := e.client.get()
	if err != nil {
		return nil, err
	}

	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings: index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
