package application

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/testutils"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	store := NewFileStore(path, zerolog.Nop())
	require.NoError(t, store.Load())
	assert.Equal(t, 0, store.Len())

	sample := testutils.FixtureSample("sample_1")
	ref, err := sample.PrimaryReference()
	require.NoError(t, err)

	result := domain.NewSampleResult(&sample, ref)
	result.Outcomes["m"] = &domain.ModelOutcome{ResponseSeconds: 1.5}
	store.Put(result)
	require.NoError(t, store.Flush())

	// A fresh store over the same file sees the entry.
	reloaded := NewFileStore(path, zerolog.Nop())
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 1, reloaded.Len())

	got, ok := reloaded.Get("sample_1")
	require.True(t, ok)
	assert.Equal(t, "sample_1", got.SampleID)
	assert.Equal(t, 1.5, got.Outcomes["m"].ResponseSeconds)

	_, ok = reloaded.Get("absent")
	assert.False(t, ok)
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope", "cache.json"), zerolog.Nop())
	require.NoError(t, store.Load())
	assert.Equal(t, 0, store.Len())
}

func TestFileStore_CorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewFileStore(path, zerolog.Nop())
	assert.Error(t, store.Load())
}

func TestFileStore_PutOverwrites(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "cache.json"), zerolog.Nop())
	require.NoError(t, store.Load())

	sample := testutils.FixtureSample("sample_1")
	ref, err := sample.PrimaryReference()
	require.NoError(t, err)

	first := domain.NewSampleResult(&sample, ref)
	store.Put(first)

	second := domain.NewSampleResult(&sample, ref)
	second.PostText = "updated"
	store.Put(second)

	assert.Equal(t, 1, store.Len())
	got, _ := store.Get("sample_1")
	assert.Equal(t, "updated", got.PostText)
}
