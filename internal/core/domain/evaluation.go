package domain

import "time"

// Evaluation error messages reported per query.
const (
	EvalErrNoAnnotations      = "No annotations found for this query"
	EvalErrNoValidAnnotations = "No valid annotations found for evaluation"
)

// ThresholdResult holds classification metrics at one score threshold.
type ThresholdResult struct {
	Threshold float64 `json:"threshold"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// ScoreStats summarises the scores of the evaluated chunks.
// Std is the population standard deviation.
type ScoreStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// EvaluationResult is the per-query outcome.
// It is derived on demand and never used as a source of truth.
// When Error is set only QueryID, QueryText and QueryType are meaningful.
type EvaluationResult struct {
	QueryID          string      `json:"query_id"`
	QueryText        string      `json:"query_text,omitempty"`
	QueryType        string      `json:"query_type,omitempty"`
	Error            string      `json:"error,omitempty"`
	TotalChunks      int         `json:"total_chunks"`
	AnnotatedChunks  int         `json:"annotated_chunks"`
	RelevantChunks   int         `json:"relevant_chunks"`
	RelevanceRate    float64     `json:"relevance_rate"`
	OptimalThreshold float64     `json:"optimal_threshold"`
	OptimalF1        float64     `json:"optimal_f1"`
	OptimalPrecision float64     `json:"optimal_precision"`
	OptimalRecall    float64     `json:"optimal_recall"`
	AUC              *float64    `json:"auc_score"`
	ScoreStats       *ScoreStats `json:"score_stats,omitempty"`
}

// HasData returns true if the query had at least one eligible chunk.
func (r *EvaluationResult) HasData() bool {
	return r.Error == ""
}

// OverallStats aggregates results across queries.
// Averages cover only queries with data; AverageAUC is nil when no query had an AUC.
type OverallStats struct {
	TotalQueries    int      `json:"total_queries"`
	QueriesWithData int      `json:"queries_with_data"`
	AverageF1       float64  `json:"average_f1"`
	AverageAUC      *float64 `json:"average_auc"`
}

// EvaluationReport is the complete output of an evaluation run.
type EvaluationReport struct {
	Overall     OverallStats       `json:"overall_stats"`
	Results     []EvaluationResult `json:"query_results"`
	GeneratedAt time.Time          `json:"evaluation_timestamp"`
}
