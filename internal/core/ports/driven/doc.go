// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - Corpus: Walks and hashes the corpus directory
//   - Parser: Converts one file into normalised text
//   - ParserRegistry: Selects the first parser able to handle a file
//   - Tokenizer: Maps text to token ids and back
//   - ChunkWriter / ChunkReader: Persisted chunk file
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Scorer: Relevance scoring. Without it, the pipeline stops after chunking.
//   - Embedder: Vectors for the embedding scorer (ollama and openai providers).
//   - ScoreWriter / ScoreReader: Persisted score file. Required only when scoring.
//   - AnnotationStore: Human judgements. Required only for evaluation.
//   - PacketWriter: Context packet output.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
