package ports

import "github.com/notelens/notelens/internal/domain"

// ResultStore is the resumability mechanism: a persistent map from sample ID
// to that sample's accumulated result. The orchestrator loads it at startup,
// consults it before dispatching a sample, and flushes after every completed
// sample so a crash loses at most the in-flight one.
//
// A single writer is assumed; the store does not lock its backing file.
type ResultStore interface {
	// Load reads the persisted entries. A missing backing file is not an
	// error; it yields an empty store.
	Load() error

	// Get returns the stored result for a sample ID, if present.
	Get(sampleID string) (*domain.SampleResult, bool)

	// Put records a sample result in memory. Call Flush to persist.
	Put(result *domain.SampleResult)

	// Flush persists all entries.
	Flush() error

	// Len reports the number of stored entries.
	Len() int
}
