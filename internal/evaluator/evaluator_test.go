package evaluator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

const eps = 1e-9

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{10, 1.4},
		{25, 2},
		{50, 3},
		{90, 4.6},
		{100, 5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Percentile(sorted, tt.p), eps, "p=%v", tt.p)
	}

	assert.Equal(t, 7.0, Percentile([]float64{7}, 35))
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestCandidateThresholds(t *testing.T) {
	t.Run("ascending and distinct", func(t *testing.T) {
		got := CandidateThresholds([]float64{0.9, 0.8, 0.7})

		require.NotEmpty(t, got)
		assert.LessOrEqual(t, len(got), 21)
		assert.InDelta(t, 0.7, got[0], eps)
		assert.InDelta(t, 0.9, got[len(got)-1], eps)
		for i := 1; i < len(got); i++ {
			assert.Less(t, got[i-1], got[i])
		}
	})

	t.Run("constant scores collapse to one candidate", func(t *testing.T) {
		assert.Equal(t, []float64{0.5}, CandidateThresholds([]float64{0.5, 0.5, 0.5}))
	})

	t.Run("does not reorder input", func(t *testing.T) {
		scores := []float64{0.3, 0.1, 0.2}
		_ = CandidateThresholds(scores)
		assert.Equal(t, []float64{0.3, 0.1, 0.2}, scores)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, CandidateThresholds(nil))
	})
}

func TestMetricsAt_SingleClass(t *testing.T) {
	scores := []float64{0.9, 0.8, 0.7}

	t.Run("all relevant, threshold at or below minimum", func(t *testing.T) {
		for _, thr := range []float64{0.7, 0.5, 0} {
			r := MetricsAt([]int{1, 1, 1}, scores, thr)
			assert.Equal(t, 1.0, r.Precision)
			assert.Equal(t, 1.0, r.Recall)
			assert.Equal(t, 1.0, r.F1)
		}
	})

	t.Run("all relevant, partial prediction", func(t *testing.T) {
		r := MetricsAt([]int{1, 1, 1}, scores, 0.85)
		assert.InDelta(t, 1.0/3, r.Precision, eps)
		assert.Equal(t, 1.0, r.Recall)
		assert.InDelta(t, 0.5, r.F1, eps)
	})

	t.Run("all relevant, nothing predicted", func(t *testing.T) {
		r := MetricsAt([]int{1, 1, 1}, scores, 0.95)
		assert.Equal(t, 0.0, r.Precision)
		assert.Equal(t, 1.0, r.Recall)
		assert.Equal(t, 0.0, r.F1)
	})

	t.Run("all non-relevant, everything predicted", func(t *testing.T) {
		r := MetricsAt([]int{0, 0, 0}, scores, 0.7)
		assert.Equal(t, 1.0, r.Precision)
		assert.Equal(t, 0.0, r.Recall)
		assert.Equal(t, 0.0, r.F1)
	})

	t.Run("all non-relevant, one predicted", func(t *testing.T) {
		r := MetricsAt([]int{0, 0, 0}, scores, 0.9)
		assert.Equal(t, 1.0, r.Precision)
		assert.InDelta(t, 2.0/3, r.Recall, eps)
		assert.InDelta(t, 0.8, r.F1, eps)
	})
}

func TestMetricsAt_Binary(t *testing.T) {
	labels := []int{1, 0, 1, 0}
	scores := []float64{0.9, 0.8, 0.3, 0.1}

	tests := []struct {
		name      string
		threshold float64
		precision float64
		recall    float64
		f1        float64
	}{
		{"everything positive", 0.1, 0.5, 1, 2.0 / 3},
		{"drops lowest", 0.2, 2.0 / 3, 1, 0.8},
		{"top two", 0.5, 0.5, 0.5, 0.5},
		{"top one", 0.85, 1, 0.5, 2.0 / 3},
		{"nothing positive", 0.95, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := MetricsAt(labels, scores, tt.threshold)
			assert.Equal(t, tt.threshold, r.Threshold)
			assert.InDelta(t, tt.precision, r.Precision, eps)
			assert.InDelta(t, tt.recall, r.Recall, eps)
			assert.InDelta(t, tt.f1, r.F1, eps)
		})
	}
}

func TestFindOptimalThreshold(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, domain.ThresholdResult{}, FindOptimalThreshold(nil, nil))
	})

	t.Run("all relevant keeps the first perfect candidate", func(t *testing.T) {
		r := FindOptimalThreshold([]int{1, 1, 1}, []float64{0.9, 0.8, 0.7})
		assert.InDelta(t, 0.7, r.Threshold, eps)
		assert.Equal(t, 1.0, r.Precision)
		assert.Equal(t, 1.0, r.Recall)
		assert.Equal(t, 1.0, r.F1)
	})

	t.Run("all non-relevant prefers the first threshold predicting one", func(t *testing.T) {
		r := FindOptimalThreshold([]int{0, 0, 0}, []float64{0.9, 0.8, 0.7})
		assert.InDelta(t, 0.81, r.Threshold, eps)
		assert.InDelta(t, 0.8, r.F1, eps)
	})

	t.Run("binary ties keep the lowest threshold", func(t *testing.T) {
		r := FindOptimalThreshold([]int{1, 0, 1, 0}, []float64{0.9, 0.8, 0.3, 0.1})
		assert.InDelta(t, 0.13, r.Threshold, eps)
		assert.InDelta(t, 0.8, r.F1, eps)
		assert.InDelta(t, 2.0/3, r.Precision, eps)
		assert.Equal(t, 1.0, r.Recall)
	})

	t.Run("perfect separation", func(t *testing.T) {
		r := FindOptimalThreshold([]int{1, 1, 0, 0}, []float64{0.9, 0.8, 0.2, 0.1})
		assert.InDelta(t, 0.23, r.Threshold, eps)
		assert.Equal(t, 1.0, r.F1)
	})
}

func TestAUC(t *testing.T) {
	tests := []struct {
		name   string
		labels []int
		scores []float64
		want   float64
		ok     bool
	}{
		{"perfect", []int{1, 1, 0, 0}, []float64{0.9, 0.8, 0.2, 0.1}, 1, true},
		{"inverted", []int{0, 1}, []float64{0.9, 0.1}, 0, true},
		{"ties get half credit", []int{1, 0, 1, 0}, []float64{0.5, 0.5, 0.8, 0.2}, 0.875, true},
		{"all tied", []int{1, 0, 1}, []float64{0.4, 0.4, 0.4}, 0.5, true},
		{"only relevant", []int{1, 1}, []float64{0.3, 0.4}, 0, false},
		{"only non-relevant", []int{0, 0}, []float64{0.3, 0.4}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AUC(tt.labels, tt.scores)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, eps)
		})
	}
}

func TestStats(t *testing.T) {
	s := Stats([]float64{1, 2, 3, 4})
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 2.5, s.Mean)
	assert.InDelta(t, math.Sqrt(1.25), s.Std, eps)

	assert.Equal(t, domain.ScoreStats{}, Stats(nil))
	assert.Equal(t, domain.ScoreStats{Min: 3, Max: 3, Mean: 3}, Stats([]float64{3}))
}

func annotate(rel domain.Relevance) domain.Annotation {
	return domain.Annotation{Relevance: rel, Timestamp: time.Unix(0, 0)}
}

func TestEvaluateQuery(t *testing.T) {
	chunks := []domain.Chunk{{ID: "c0"}, {ID: "c1"}, {ID: "c2"}, {ID: "c3"}, {ID: "c4"}}
	annotations := domain.AnnotationSet{
		"q1": {
			"c0": annotate(domain.RelevanceRelevant),
			"c1": annotate(domain.RelevanceNotRelevant),
			"c2": annotate(domain.RelevanceSkipped),
			"c3": annotate(domain.RelevanceRelevant),
		},
		"q2": {
			"c2": annotate(domain.RelevanceSkipped),
		},
	}
	scores := map[string]float64{"c0": 0.9, "c1": 0.2, "c2": 0.5, "c4": 0.7}

	t.Run("uses only annotated, scored, non-skipped chunks", func(t *testing.T) {
		r := EvaluateQuery("q1", chunks, annotations, scores)

		require.True(t, r.HasData())
		assert.Equal(t, "q1", r.QueryID)
		assert.Equal(t, 5, r.TotalChunks)
		assert.Equal(t, 2, r.AnnotatedChunks)
		assert.Equal(t, 1, r.RelevantChunks)
		assert.Equal(t, 0.5, r.RelevanceRate)
		assert.InDelta(t, 0.235, r.OptimalThreshold, eps)
		assert.Equal(t, 1.0, r.OptimalF1)
		assert.Equal(t, 1.0, r.OptimalPrecision)
		assert.Equal(t, 1.0, r.OptimalRecall)
		require.NotNil(t, r.AUC)
		assert.Equal(t, 1.0, *r.AUC)
		require.NotNil(t, r.ScoreStats)
		assert.Equal(t, 0.2, r.ScoreStats.Min)
		assert.Equal(t, 0.9, r.ScoreStats.Max)
	})

	t.Run("skipped labels never reach the metrics", func(t *testing.T) {
		withSkip := EvaluateQuery("q1", chunks, annotations, scores)

		without := domain.AnnotationSet{"q1": {
			"c0": annotate(domain.RelevanceRelevant),
			"c1": annotate(domain.RelevanceNotRelevant),
		}}
		plain := EvaluateQuery("q1", chunks, without, scores)

		assert.Equal(t, plain, withSkip)
	})

	t.Run("unknown query", func(t *testing.T) {
		r := EvaluateQuery("q9", chunks, annotations, scores)
		assert.Equal(t, domain.EvalErrNoAnnotations, r.Error)
		assert.False(t, r.HasData())
	})

	t.Run("only skipped annotations", func(t *testing.T) {
		r := EvaluateQuery("q2", chunks, annotations, scores)
		assert.Equal(t, domain.EvalErrNoValidAnnotations, r.Error)
	})

	t.Run("query with no judged chunks", func(t *testing.T) {
		r := EvaluateQuery("q3", chunks, domain.AnnotationSet{"q3": {}}, scores)
		assert.Equal(t, domain.EvalErrNoValidAnnotations, r.Error)
	})

	t.Run("single class has no AUC", func(t *testing.T) {
		set := domain.AnnotationSet{"q": {"c0": annotate(domain.RelevanceRelevant), "c4": annotate(domain.RelevanceRelevant)}}
		r := EvaluateQuery("q", chunks, set, scores)
		require.True(t, r.HasData())
		assert.Nil(t, r.AUC)
		assert.Equal(t, 1.0, r.RelevanceRate)
	})
}

func TestAggregate(t *testing.T) {
	auc := 0.9
	results := []domain.EvaluationResult{
		{QueryID: "q1", OptimalF1: 0.8, AUC: &auc},
		{QueryID: "q2", OptimalF1: 0.6},
		{QueryID: "q3", Error: domain.EvalErrNoAnnotations, OptimalF1: 0.99},
	}

	stats := Aggregate(results)

	assert.Equal(t, 3, stats.TotalQueries)
	assert.Equal(t, 2, stats.QueriesWithData)
	assert.InDelta(t, 0.7, stats.AverageF1, eps)
	require.NotNil(t, stats.AverageAUC)
	assert.InDelta(t, 0.9, *stats.AverageAUC, eps)

	t.Run("no AUC anywhere", func(t *testing.T) {
		s := Aggregate([]domain.EvaluationResult{{QueryID: "q", OptimalF1: 0.5}})
		assert.Nil(t, s.AverageAUC)
		assert.Equal(t, 0.5, s.AverageF1)
	})

	t.Run("no data", func(t *testing.T) {
		s := Aggregate(nil)
		assert.Equal(t, domain.OverallStats{}, s)
	})
}
