package evaluator

import (
	"cmp"
	"slices"
)

// AUC returns the area under the ROC curve via the rank-sum statistic,
// giving tied scores their average rank. ok is false unless both label
// classes are present.
func AUC(labels []int, scores []float64) (auc float64, ok bool) {
	var pos, neg int
	for _, l := range labels {
		if l == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0, false
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(scores[a], scores[b])
	})

	var posRankSum float64
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && scores[idx[end]] == scores[idx[start]] {
			end++
		}
		// Ranks are 1-based; a tie group shares the mean of its ranks.
		avgRank := float64(start+1+end) / 2
		for _, i := range idx[start:end] {
			if labels[i] == 1 {
				posRankSum += avgRank
			}
		}
		start = end
	}

	u := posRankSum - float64(pos*(pos+1))/2
	return u / float64(pos*neg), true
}
