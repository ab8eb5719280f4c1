package mcp

import (
	"github.com/custodia-labs/contextpacket/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Evaluation computes threshold metrics over scored chunks.
	Evaluation driving.EvaluationService

	// Citation resolves citation strings to chunks.
	Citation driving.CitationService

	// Annotation records relevance labels. Optional.
	Annotation driving.AnnotationService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Evaluation == nil {
		return ErrMissingEvaluationService
	}
	if p.Citation == nil {
		return ErrMissingCitationService
	}
	return nil
}
