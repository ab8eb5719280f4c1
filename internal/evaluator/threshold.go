package evaluator

import "github.com/custodia-labs/contextpacket/internal/core/domain"

// MetricsAt computes precision, recall and F1 when predicting relevant for
// every score >= threshold.
//
// With a single label class the usual binary metric is undefined, so a
// closed form is used: all relevant gives precision = fraction predicted
// relevant and recall = 1; all non-relevant gives precision = 1 and
// recall = fraction predicted non-relevant.
func MetricsAt(labels []int, scores []float64, threshold float64) domain.ThresholdResult {
	n := len(labels)
	result := domain.ThresholdResult{Threshold: threshold}
	if n == 0 {
		return result
	}

	var tp, fp, fn, predicted int
	for i, label := range labels {
		positive := scores[i] >= threshold
		if positive {
			predicted++
		}
		switch {
		case positive && label == 1:
			tp++
		case positive && label != 1:
			fp++
		case !positive && label == 1:
			fn++
		}
	}

	if single, class := singleClass(labels); single {
		if class == 1 {
			if predicted > 0 {
				result.Precision = float64(predicted) / float64(n)
			}
			result.Recall = 1
		} else {
			result.Precision = 1
			if n > predicted {
				result.Recall = float64(n-predicted) / float64(n)
			}
		}
		result.F1 = harmonic(result.Precision, result.Recall)
		return result
	}

	if tp+fp > 0 {
		result.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		result.Recall = float64(tp) / float64(tp+fn)
	}
	if denom := 2*tp + fp + fn; denom > 0 {
		result.F1 = float64(2*tp) / float64(denom)
	}
	return result
}

// FindOptimalThreshold searches the candidate thresholds for the highest F1.
// A later candidate replaces the best only if its F1 is strictly greater,
// so ties keep the lowest threshold. Empty input yields all zeros.
func FindOptimalThreshold(labels []int, scores []float64) domain.ThresholdResult {
	if len(labels) == 0 || len(scores) == 0 {
		return domain.ThresholdResult{}
	}

	best := domain.ThresholdResult{F1: -1}
	for _, t := range CandidateThresholds(scores) {
		if r := MetricsAt(labels, scores, t); r.F1 > best.F1 {
			best = r
		}
	}
	return best
}

// singleClass reports whether every label is the same and which it is.
func singleClass(labels []int) (bool, int) {
	for _, l := range labels[1:] {
		if l != labels[0] {
			return false, 0
		}
	}
	return true, labels[0]
}

func harmonic(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}
