// Package mcp provides an MCP (Model Context Protocol) server adapter for contextpacket.
// It lets AI assistants evaluate scored chunks and resolve citations back to source text.
package mcp

import "errors"

var (
	// ErrMissingEvaluationService is returned when the evaluation service is not provided.
	ErrMissingEvaluationService = errors.New("mcp: evaluation service is required")

	// ErrMissingCitationService is returned when the citation service is not provided.
	ErrMissingCitationService = errors.New("mcp: citation service is required")
)
