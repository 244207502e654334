package domain

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// CanonicalTags is the known misinformation category vocabulary. The
// vocabulary is open: tags outside this list are kept verbatim, but
// near-misses are snapped onto it so set-overlap scoring is not defeated by
// spacing or spelling drift between backends.
var CanonicalTags = []string{
	"factual_error",
	"manipulated_media",
	"outdated_information",
	"missing_important_context",
	"disputed_claim_as_fact",
	"misinterpreted_satire",
	"other",
}

// foldCaser is a package-level Unicode case folder, shared to avoid building
// one per call.
var foldCaser = cases.Fold()

// tagAliases maps older short-form category names, still emitted by some
// backends, onto the canonical vocabulary.
var tagAliases = map[string]string{
	"missing_context": "missing_important_context",
	"outdated_info":   "outdated_information",
}

// tagEditBudget is the maximum edit distance at which a tag is considered a
// near-miss of a canonical category.
const tagEditBudget = 3

// NormalizeTag maps a backend-emitted category tag onto the canonical
// vocabulary. Whitespace and hyphens become underscores and case is folded;
// if the cleaned tag sits within a small edit distance of a canonical
// category it snaps to it, otherwise it is returned cleaned but unmapped.
func NormalizeTag(tag string) string {
	cleaned := foldCaser.String(strings.TrimSpace(tag))
	cleaned = strings.NewReplacer(" ", "_", "-", "_").Replace(cleaned)
	if cleaned == "" {
		return ""
	}
	if canon, ok := tagAliases[cleaned]; ok {
		return canon
	}

	best := ""
	bestDist := tagEditBudget + 1
	for _, canon := range CanonicalTags {
		if cleaned == canon {
			return canon
		}
		if d := levenshtein.ComputeDistance(cleaned, canon); d < bestDist {
			best, bestDist = canon, d
		}
	}
	if bestDist <= tagEditBudget {
		return best
	}
	return cleaned
}

// NormalizeTags applies NormalizeTag to every entry, dropping empties and
// duplicates while preserving first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
