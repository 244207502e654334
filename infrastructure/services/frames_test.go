package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameIndices(t *testing.T) {
	tests := []struct {
		name  string
		total int
		want  int
		out   []int
	}{
		{name: "even spread", total: 100, want: 5, out: []int{0, 24, 49, 74, 99}},
		{name: "single frame request", total: 100, want: 1, out: []int{0}},
		{name: "fewer frames than requested", total: 3, want: 8, out: []int{0, 1, 2}},
		{name: "exact match", total: 4, want: 4, out: []int{0, 1, 2, 3}},
		{name: "two of many", total: 10, want: 2, out: []int{0, 9}},
		{name: "zero frames", total: 0, want: 5, out: nil},
		{name: "zero requested", total: 10, want: 0, out: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, frameIndices(tt.total, tt.want))
		})
	}
}

func TestFrameIndices_NoDuplicates(t *testing.T) {
	// Requesting nearly as many frames as exist must not repeat indices
	// after rounding.
	indices := frameIndices(10, 9)
	seen := make(map[int]bool)
	for _, idx := range indices {
		assert.False(t, seen[idx], "duplicate index %d", idx)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 10)
		seen[idx] = true
	}
}
