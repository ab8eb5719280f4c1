package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// A missing corpus root fails the whole run with this error.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration indicates settings that cannot be used,
	// such as an overlap that is not smaller than the chunk size.
	// It is raised before any document is processed.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// Per-file Errors.

	// ErrIOFailure indicates a file could not be read.
	// Ingest and parsing skip the file and continue.
	ErrIOFailure = errors.New("i/o failure")

	// ErrUnsupportedFormat indicates no parser accepts the file.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrParseFailure indicates a parser accepted the file but could not extract text.
	ErrParseFailure = errors.New("parse failure")

	// ErrEncoding indicates tokenization or decoding failed.
	// Chunking of that document is aborted; other documents continue.
	ErrEncoding = errors.New("encoding error")

	// Scoring Errors.

	// ErrModelUnavailable indicates the scoring model cannot be reached or loaded.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrScoringFailure indicates a scoring call failed or returned a malformed result.
	ErrScoringFailure = errors.New("scoring failure")

	// Evaluation Errors.

	// ErrNoAnnotations indicates a query has no human judgements to evaluate against.
	ErrNoAnnotations = errors.New("no annotations found")
)
