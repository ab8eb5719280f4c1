package evaluator

import "github.com/custodia-labs/contextpacket/internal/core/domain"

// EvaluateQuery evaluates one query. Chunks are visited in the given order
// and a chunk is used only if it is annotated for the query, has a score,
// and was not skipped. TotalChunks counts every chunk supplied.
func EvaluateQuery(
	queryID string,
	chunks []domain.Chunk,
	annotations domain.AnnotationSet,
	scores map[string]float64,
) domain.EvaluationResult {
	result := domain.EvaluationResult{QueryID: queryID}

	judged, ok := annotations[queryID]
	if !ok {
		result.Error = domain.EvalErrNoAnnotations
		return result
	}

	var labels []int
	var values []float64
	for _, c := range chunks {
		a, annotated := judged[c.ID]
		score, scored := scores[c.ID]
		if !annotated || !scored || a.Relevance == domain.RelevanceSkipped {
			continue
		}
		labels = append(labels, int(a.Relevance))
		values = append(values, score)
	}

	if len(labels) == 0 {
		result.Error = domain.EvalErrNoValidAnnotations
		return result
	}

	relevant := 0
	for _, l := range labels {
		relevant += l
	}

	best := FindOptimalThreshold(labels, values)
	stats := Stats(values)

	result.TotalChunks = len(chunks)
	result.AnnotatedChunks = len(labels)
	result.RelevantChunks = relevant
	result.RelevanceRate = float64(relevant) / float64(len(labels))
	result.OptimalThreshold = best.Threshold
	result.OptimalF1 = best.F1
	result.OptimalPrecision = best.Precision
	result.OptimalRecall = best.Recall
	result.ScoreStats = &stats
	if auc, ok := AUC(labels, values); ok {
		result.AUC = &auc
	}
	return result
}

// Aggregate averages optimal F1 over queries with data, and AUC over the
// queries that have one. Queries without data are counted but not averaged.
func Aggregate(results []domain.EvaluationResult) domain.OverallStats {
	stats := domain.OverallStats{TotalQueries: len(results)}

	var f1Sum, aucSum float64
	var aucCount int
	for i := range results {
		r := &results[i]
		if !r.HasData() {
			continue
		}
		stats.QueriesWithData++
		f1Sum += r.OptimalF1
		if r.AUC != nil {
			aucSum += *r.AUC
			aucCount++
		}
	}

	if stats.QueriesWithData > 0 {
		stats.AverageF1 = f1Sum / float64(stats.QueriesWithData)
	}
	if aucCount > 0 {
		avg := aucSum / float64(aucCount)
		stats.AverageAUC = &avg
	}
	return stats
}
