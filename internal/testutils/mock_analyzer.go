// Package testutils provides deterministic doubles for the harness's ports:
// a scriptable video-analyzer backend, a fixed-vector embedder, and dataset
// fixtures. They keep orchestrator and metrics tests independent of any real
// model service.
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/ports"
)

// MockAnalyzer implements ports.VideoAnalyzer with scripted results.
// Calls are counted so tests can assert the cache-hit path never invokes a
// backend, and a cleanup counter supports cleanup-obligation tests.
type MockAnalyzer struct {
	mu sync.Mutex

	// ModelName is returned by Name.
	ModelName string

	// Available is returned by IsAvailable.
	Available bool

	// Result is returned by AnalyzeVideo unless ResultFn is set.
	Result domain.AnalysisResult

	// ResultFn, when set, computes the result per request.
	ResultFn func(req ports.AnalysisRequest) domain.AnalysisResult

	// Delay, when nonzero, is slept before answering to exercise
	// response-time measurement.
	Delay time.Duration

	// PanicWith, when set, makes AnalyzeVideo panic to exercise the
	// orchestrator's failure-synthesis path.
	PanicWith any

	calls    int
	cleanups int
}

var _ ports.VideoAnalyzer = (*MockAnalyzer)(nil)

// NewMockAnalyzer creates an available analyzer that reports the given model
// name and answers with a plausible successful assessment.
func NewMockAnalyzer(model string) *MockAnalyzer {
	result, err := domain.NewAnalysisSuccess(model, domain.StructuredAssessment{
		PredictedLabel: "misleading",
		IsMisleading:   true,
		Summary:        "The footage is from an earlier event presented as current.",
		MisleadingTags: []string{"outdated_information"},
		Confidence:     domain.ConfidenceHigh,
	}, `{"mock":true}`)
	if err != nil {
		panic(err)
	}
	return &MockAnalyzer{ModelName: model, Available: true, Result: result}
}

// Name implements ports.VideoAnalyzer.
func (m *MockAnalyzer) Name() string { return m.ModelName }

// IsAvailable implements ports.VideoAnalyzer.
func (m *MockAnalyzer) IsAvailable(context.Context) bool { return m.Available }

// AnalyzeVideo implements ports.VideoAnalyzer with the scripted behavior.
func (m *MockAnalyzer) AnalyzeVideo(_ context.Context, req ports.AnalysisRequest) domain.AnalysisResult {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if m.PanicWith != nil {
		panic(m.PanicWith)
	}
	if m.ResultFn != nil {
		return m.ResultFn(req)
	}
	return m.Result
}

// Calls reports how many times AnalyzeVideo ran.
func (m *MockAnalyzer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// RecordCleanup increments the cleanup side-effect counter. Backends under
// test call this from their cleanup hooks.
func (m *MockAnalyzer) RecordCleanup() {
	m.mu.Lock()
	m.cleanups++
	m.mu.Unlock()
}

// Cleanups reports how many cleanup calls were observed.
func (m *MockAnalyzer) Cleanups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanups
}
