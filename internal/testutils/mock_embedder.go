package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/notelens/notelens/internal/ports"
)

// MockEmbedder implements ports.Embedder with fixed vectors per text,
// falling back to a deterministic bag-of-characters vector so distinct texts
// get distinct but stable embeddings.
type MockEmbedder struct {
	mu sync.Mutex

	// Vectors maps exact text to a fixed embedding.
	Vectors map[string][]float32

	// Err, when set, is returned by every Embed call.
	Err error

	calls int
}

var _ ports.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates an embedder with no fixed vectors; every text gets
// the deterministic fallback embedding.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{Vectors: make(map[string][]float32)}
}

// FailingEmbedder returns an embedder whose calls always error.
func FailingEmbedder() *MockEmbedder {
	return &MockEmbedder{Err: errors.New("embedding backend unavailable")}
}

// Embed implements ports.Embedder.
func (m *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := m.Vectors[text]; ok {
			out[i] = v
			continue
		}
		out[i] = charVector(text)
	}
	return out, nil
}

// Calls reports how many Embed invocations were made.
func (m *MockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// charVector maps text to a small deterministic vector: identical texts are
// identical vectors, so cosine similarity of a text with itself is 1.
func charVector(text string) []float32 {
	v := make([]float32, 26)
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
		if r >= 'A' && r <= 'Z' {
			v[r-'A']++
		}
	}
	// Avoid the zero vector for texts without letters.
	v[0] += 0.001
	return v
}
