package domain

import (
	"maps"
	"slices"
	"time"
)

// Relevance is a human judgement of a chunk for a query.
type Relevance int

// Relevance labels.
const (
	// RelevanceSkipped marks a chunk the annotator chose not to judge.
	// Skipped chunks are excluded from every metric.
	RelevanceSkipped Relevance = -1

	// RelevanceNotRelevant marks a chunk as not relevant.
	RelevanceNotRelevant Relevance = 0

	// RelevanceRelevant marks a chunk as relevant.
	RelevanceRelevant Relevance = 1
)

// IsValid returns true if the label is one of -1, 0 or 1.
func (r Relevance) IsValid() bool {
	return r >= RelevanceSkipped && r <= RelevanceRelevant
}

// String returns a short label for display.
func (r Relevance) String() string {
	switch r {
	case RelevanceSkipped:
		return "skipped"
	case RelevanceNotRelevant:
		return "not_relevant"
	case RelevanceRelevant:
		return "relevant"
	default:
		return "unknown"
	}
}

// Annotation is one judgement with the time it was recorded.
type Annotation struct {
	Relevance Relevance
	Timestamp time.Time
}

// AnnotationSet maps query ID to chunk ID to annotation.
// It is the source of truth for evaluation.
type AnnotationSet map[string]map[string]Annotation

// Set records an annotation, creating the query entry if needed.
func (s AnnotationSet) Set(queryID, chunkID string, a Annotation) {
	byChunk, ok := s[queryID]
	if !ok {
		byChunk = make(map[string]Annotation)
		s[queryID] = byChunk
	}
	byChunk[chunkID] = a
}

// Get returns the annotation for a (query, chunk) pair.
func (s AnnotationSet) Get(queryID, chunkID string) (Annotation, bool) {
	a, ok := s[queryID][chunkID]
	return a, ok
}

// QueryIDs returns the annotated query IDs in sorted order.
func (s AnnotationSet) QueryIDs() []string {
	return slices.Sorted(maps.Keys(s))
}

// Count returns the total number of annotations across queries.
func (s AnnotationSet) Count() int {
	n := 0
	for _, byChunk := range s {
		n += len(byChunk)
	}
	return n
}

// Clone returns a deep copy of the set.
func (s AnnotationSet) Clone() AnnotationSet {
	out := make(AnnotationSet, len(s))
	for queryID, byChunk := range s {
		out[queryID] = maps.Clone(byChunk)
	}
	return out
}

// Query is an evaluation query.
type Query struct {
	ID   string
	Text string
	Type string
}

// AnnotationExport is a self-describing snapshot of queries and judgements.
type AnnotationExport struct {
	Queries         []Query
	Annotations     AnnotationSet
	ExportTimestamp time.Time
}
