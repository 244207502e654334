// Package services implements the model backends of the evaluation harness
// behind the ports.VideoAnalyzer contract: the Gemini native-video backend,
// the OpenAI and Anthropic frame-sampling backends, and the open-weight Qwen
// backend (Ollama local mode or an OpenAI-compatible remote API). A registry
// constructs backends by model family name, gated on environment credentials.
//
// Every backend converts transport failures, processing timeouts, and
// malformed output into failure-tagged results at this boundary; exceptions
// do not escape to the orchestrator.
package services

import "sync"

// lazy builds an expensive resource on first access and caches both the
// value and the construction error. Backends hold their network clients in a
// lazy so availability checks stay cheap and service objects can be
// instantiated speculatively.
type lazy[T any] struct {
	once  sync.Once
	build func() (T, error)
	value T
	err   error
}

// newLazy wraps a constructor. The constructor runs at most once.
func newLazy[T any](build func() (T, error)) *lazy[T] {
	return &lazy[T]{build: build}
}

// get returns the constructed value, building it on the first call.
func (l *lazy[T]) get() (T, error) {
	l.once.Do(func() {
		l.value, l.err = l.build()
	})
	return l.value, l.err
}
