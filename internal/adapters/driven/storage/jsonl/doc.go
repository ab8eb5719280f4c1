// Package jsonl provides line-delimited JSON files for chunks and scores,
// and the JSON writer for context packets.
//
// Paths ending in ".zst" are zstd-compressed and paths ending in ".lz4" are
// lz4-compressed. Appending to a compressed file adds a new frame, which
// readers decode in sequence.
//
// Chunk file records: {id, doc_id, order, text, tokens, citation}.
// Score file records: {id, order, tokens, score, citation}.
// Token offsets are not stored, so chunks read back have zero offsets.
package jsonl
