package metrics

import "math"

// bleuMaxOrder is the highest n-gram order used by sentence BLEU.
const bleuMaxOrder = 4

// bleuEpsilon replaces zero n-gram match counts so short texts do not
// trivially score 0 whenever a single order is unmatched. The smoothing is
// mandatory, not cosmetic: without it one missing bigram zeroes the whole
// geometric mean.
const bleuEpsilon = 0.1

// Bleu computes a smoothed sentence-level BLEU score of the hypothesis
// against a single reference, using whitespace tokenization and uniform
// weights over n-gram orders up to 4 (fewer when the hypothesis is shorter).
// Either input being empty yields 0.
func Bleu(hypothesis, reference string) float64 {
	hyp := whitespaceTokens(hypothesis)
	ref := whitespaceTokens(reference)
	if len(hyp) == 0 || len(ref) == 0 {
		return 0
	}

	maxOrder := min(bleuMaxOrder, len(hyp))
	logSum := 0.0
	for n := 1; n <= maxOrder; n++ {
		hypGrams := ngrams(hyp, n)
		refGrams := ngrams(ref, n)

		matches := float64(countOverlap(hypGrams, refGrams))
		if matches == 0 {
			matches = bleuEpsilon
		}
		logSum += math.Log(matches / float64(size(hypGrams)))
	}
	geoMean := math.Exp(logSum / float64(maxOrder))

	return brevityPenalty(len(hyp), len(ref)) * geoMean
}

// brevityPenalty discounts hypotheses shorter than the reference, the
// standard BLEU counterweight to its precision focus.
func brevityPenalty(hypLen, refLen int) float64 {
	if hypLen >= refLen {
		return 1
	}
	return math.Exp(1 - float64(refLen)/float64(hypLen))
}
