package metrics

// Score holds a precision/recall/F1 triple. All values are in [0, 1].
type Score struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// f1 returns the harmonic mean of precision and recall, or 0 when both are 0.
func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// RougeN computes the stemmed n-gram ROUGE score between a generated summary
// (hypothesis) and the reference summary. Either input being empty yields a
// zero score.
func RougeN(hypothesis, reference string, n int) Score {
	hypGrams := ngrams(stemTokens(hypothesis), n)
	refGrams := ngrams(stemTokens(reference), n)
	if len(hypGrams) == 0 || len(refGrams) == 0 {
		return Score{}
	}

	overlap := countOverlap(hypGrams, refGrams)
	precision := float64(overlap) / float64(size(hypGrams))
	recall := float64(overlap) / float64(size(refGrams))
	return Score{Precision: precision, Recall: recall, F1: f1(precision, recall)}
}

// RougeL computes the longest-common-subsequence ROUGE score over stemmed
// tokens. Either input being empty yields a zero score.
func RougeL(hypothesis, reference string) Score {
	hyp := stemTokens(hypothesis)
	ref := stemTokens(reference)
	if len(hyp) == 0 || len(ref) == 0 {
		return Score{}
	}

	lcs := lcsLength(hyp, ref)
	precision := float64(lcs) / float64(len(hyp))
	recall := float64(lcs) / float64(len(ref))
	return Score{Precision: precision, Recall: recall, F1: f1(precision, recall)}
}

// size sums multiset counts.
func size(grams map[string]int) int {
	total := 0
	for _, c := range grams {
		total += c
	}
	return total
}

// lcsLength computes the longest common subsequence length with a rolling
// single-row table.
func lcsLength(a, b []string) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
