package evaluator

import (
	"math"
	"slices"
)

// PercentileStep is the spacing of candidate percentiles.
const PercentileStep = 5

// Percentile returns the p-th percentile (0-100) of sorted values using
// linear interpolation between closest ranks.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	virtual := float64(n-1) * p / 100
	if virtual <= 0 {
		return sorted[0]
	}
	if virtual >= float64(n-1) {
		return sorted[n-1]
	}

	lo := int(math.Floor(virtual))
	return lerp(sorted[lo], sorted[lo+1], virtual-float64(lo))
}

// lerp interpolates from a towards b, anchoring on b past the midpoint
// so the result never overshoots either end.
func lerp(a, b, t float64) float64 {
	diff := b - a
	if t >= 0.5 {
		return b - diff*(1-t)
	}
	return a + diff*t
}

// CandidateThresholds returns the distinct percentile values of scores at
// 0, 5, ..., 100 in ascending order.
func CandidateThresholds(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	sorted := slices.Clone(scores)
	slices.Sort(sorted)

	candidates := make([]float64, 0, 100/PercentileStep+1)
	for p := 0; p <= 100; p += PercentileStep {
		candidates = append(candidates, Percentile(sorted, float64(p)))
	}

	slices.Sort(candidates)
	return slices.Compact(candidates)
}
