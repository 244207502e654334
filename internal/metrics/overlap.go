package metrics

// ClassificationAgreement reports strict boolean equality between the
// model's misleading verdict and the reference's. No truthiness coercion:
// both sides are already concrete booleans by the time they reach scoring.
func ClassificationAgreement(predicted, actual bool) bool {
	return predicted == actual
}

// TagOverlap scores the predicted category-tag set against the reference set.
//
// Edge cases follow a deliberate, asymmetric policy that aggregate statistics
// depend on:
//   - both sets empty: perfect (1, 1, 1) — nothing was required, nothing
//     was claimed;
//   - reference empty, prediction not: (0, 1, 0) — recall is trivially
//     satisfied over an empty requirement, but every emitted tag is an
//     extraneous positive;
//   - prediction empty, reference not: (1, 0, 0) — precision is vacuously
//     perfect over an empty prediction, recall is zero.
func TagOverlap(predicted, actual []string) Score {
	if len(actual) == 0 {
		if len(predicted) == 0 {
			return Score{Precision: 1, Recall: 1, F1: 1}
		}
		return Score{Precision: 0, Recall: 1, F1: 0}
	}
	if len(predicted) == 0 {
		return Score{Precision: 1, Recall: 0, F1: 0}
	}

	predSet := toSet(predicted)
	actualSet := toSet(actual)

	overlap := 0
	for tag := range predSet {
		if _, ok := actualSet[tag]; ok {
			overlap++
		}
	}

	precision := float64(overlap) / float64(len(predSet))
	recall := float64(overlap) / float64(len(actualSet))
	return Score{Precision: precision, Recall: recall, F1: f1(precision, recall)}
}

func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
