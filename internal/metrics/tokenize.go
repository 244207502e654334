// Package metrics implements the pure scoring functions of the harness:
// lexical overlap (ROUGE-1/2/L), smoothed sentence BLEU, embedding-based
// semantic similarity, strict classification agreement, and category-set
// overlap, plus arithmetic-mean aggregation across samples.
//
// Every scorer defends against empty input by returning a zero or neutral
// score; none of them panic or return errors for degenerate text.
package metrics

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/cases"
)

// foldCaser is a package-level Unicode case folder shared by the tokenizers.
var foldCaser = cases.Fold()

// tokenize splits text into case-folded word tokens, dropping punctuation.
func tokenize(text string) []string {
	folded := foldCaser.String(text)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// stemTokens tokenizes and Porter-stems, the preprocessing ROUGE scoring
// uses so inflection differences do not mask overlap.
func stemTokens(text string) []string {
	tokens := tokenize(text)
	for i, tok := range tokens {
		tokens[i] = english.Stem(tok, false)
	}
	return tokens
}

// whitespaceTokens lower-cases and splits on whitespace only. BLEU scoring
// uses this coarser tokenization, matching translation-metric convention.
func whitespaceTokens(text string) []string {
	return strings.Fields(foldCaser.String(text))
}

// ngrams returns the order-preserving n-gram multiset of tokens, each n-gram
// joined into a single key.
func ngrams(tokens []string, n int) map[string]int {
	if n <= 0 || len(tokens) < n {
		return nil
	}
	grams := make(map[string]int, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams[strings.Join(tokens[i:i+n], "\x00")]++
	}
	return grams
}

// countOverlap returns the clipped overlap between two n-gram multisets.
func countOverlap(a, b map[string]int) int {
	total := 0
	for gram, count := range a {
		if other, ok := b[gram]; ok {
			total += min(count, other)
		}
	}
	return total
}
