// Package evaluator scores a scorer's ranking against human relevance labels.
//
// Labels are 0 or 1; skipped chunks (-1) are filtered out before any
// function here sees them. The threshold search tries the distinct
// 0th, 5th, ..., 100th percentiles of the scores, predicts relevant for
// score >= threshold, and keeps the first threshold with the highest F1.
package evaluator
