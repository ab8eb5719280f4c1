package evaluator

import (
	"math"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// Stats returns min, max, mean and population standard deviation.
// Empty input yields zero stats.
func Stats(scores []float64) domain.ScoreStats {
	if len(scores) == 0 {
		return domain.ScoreStats{}
	}

	s := domain.ScoreStats{Min: scores[0], Max: scores[0]}
	var sum float64
	for _, v := range scores {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
	}
	s.Mean = sum / float64(len(scores))

	var sq float64
	for _, v := range scores {
		d := v - s.Mean
		sq += d * d
	}
	s.Std = math.Sqrt(sq / float64(len(scores)))
	return s
}
