// Package driving defines the operations the CLI and the MCP server call on
// the core:
//
//   - PipelineService: ingest, chunk, order, score and write packets for a corpus
//   - ScoringService: score an existing chunk set against one query
//   - PacketService: select chunks into token-limited context packets
//   - CitationService: resolve a citation to its chunk
//   - EvaluationService: threshold and AUC metrics against human labels
//   - AnnotationService: record and list relevance labels
//   - SettingsService: effective configuration
//
// Implementations live in internal/core/services.
package driving
