// Package domain defines the core business entities for contextpacket.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - FileDescriptor: A hashed corpus file found by ingest
//   - ParsedDocument: Normalised text produced by a parser
//   - Chunk: A token-addressed span of a document with its citation
//   - ScoredChunk: A chunk paired with a relevance score for one query
//   - Annotation: A human relevance judgement for a (query, chunk) pair
//   - EvaluationResult: Threshold and ranking metrics for one query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
