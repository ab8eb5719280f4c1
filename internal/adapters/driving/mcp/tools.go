package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// EvaluateInput is the input schema for the evaluate tool.
type EvaluateInput struct {
	QueryID string `json:"query_id,omitempty" jsonschema:"evaluate only this query (default: every query)"`
}

// EvaluateOutput is the output schema for the evaluate tool.
type EvaluateOutput struct {
	Overall     *OverallOutput `json:"overall,omitempty"`
	Results     []ResultOutput `json:"results"`
	GeneratedAt string         `json:"generated_at,omitempty"`
}

// OverallOutput summarises an evaluation across queries.
type OverallOutput struct {
	TotalQueries    int      `json:"total_queries"`
	QueriesWithData int      `json:"queries_with_data"`
	AverageF1       float64  `json:"average_f1"`
	AverageAUC      *float64 `json:"average_auc,omitempty"`
}

// ResultOutput is the evaluation of a single query.
type ResultOutput struct {
	QueryID          string   `json:"query_id"`
	QueryText        string   `json:"query_text,omitempty"`
	Error            string   `json:"error,omitempty"`
	TotalChunks      int      `json:"total_chunks"`
	AnnotatedChunks  int      `json:"annotated_chunks"`
	RelevantChunks   int      `json:"relevant_chunks"`
	RelevanceRate    float64  `json:"relevance_rate"`
	OptimalThreshold float64  `json:"optimal_threshold"`
	OptimalF1        float64  `json:"optimal_f1"`
	OptimalPrecision float64  `json:"optimal_precision"`
	OptimalRecall    float64  `json:"optimal_recall"`
	AUC              *float64 `json:"auc,omitempty"`
}

// CitationInput is the input schema for the resolve_citation tool.
type CitationInput struct {
	Citation string `json:"citation" jsonschema:"citation string such as §<docId>:T:0:512"`
}

// CitationOutput is the chunk a citation addresses.
type CitationOutput struct {
	ChunkID     string `json:"chunk_id"`
	DocumentID  string `json:"document_id"`
	Citation    string `json:"citation"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	Tokens      int    `json:"tokens"`
	Text        string `json:"text"`
}

// AnnotateInput is the input schema for the annotate tool.
type AnnotateInput struct {
	QueryID   string `json:"query_id" jsonschema:"query the label applies to"`
	ChunkID   string `json:"chunk_id" jsonschema:"chunk being labelled"`
	Relevance int    `json:"relevance" jsonschema:"1 relevant, 0 not relevant, -1 skipped"`
}

// AnnotateOutput echoes the stored label.
type AnnotateOutput struct {
	QueryID   string `json:"query_id"`
	ChunkID   string `json:"chunk_id"`
	Relevance string `json:"relevance"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate",
		Description: "Evaluate reranker scores against relevance annotations",
	}, s.handleEvaluate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve_citation",
		Description: "Return the chunk text addressed by a citation",
	}, s.handleResolveCitation)

	if s.ports.Annotation != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "annotate",
			Description: "Record whether a chunk is relevant to a query",
		}, s.handleAnnotate)
	}
}

// handleEvaluate handles the evaluate tool invocation.
func (s *Server) handleEvaluate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EvaluateInput,
) (*mcp.CallToolResult, EvaluateOutput, error) {
	if input.QueryID != "" {
		result, err := s.ports.Evaluation.EvaluateQuery(ctx, input.QueryID)
		if err != nil {
			return nil, EvaluateOutput{}, err
		}
		return nil, EvaluateOutput{Results: []ResultOutput{toResultOutput(result)}}, nil
	}

	report, err := s.ports.Evaluation.Evaluate(ctx)
	if err != nil {
		return nil, EvaluateOutput{}, err
	}

	output := EvaluateOutput{
		Overall: &OverallOutput{
			TotalQueries:    report.Overall.TotalQueries,
			QueriesWithData: report.Overall.QueriesWithData,
			AverageF1:       report.Overall.AverageF1,
			AverageAUC:      report.Overall.AverageAUC,
		},
		Results: make([]ResultOutput, len(report.Results)),
	}
	if !report.GeneratedAt.IsZero() {
		output.GeneratedAt = report.GeneratedAt.Format(time.RFC3339)
	}
	for i := range report.Results {
		output.Results[i] = toResultOutput(&report.Results[i])
	}

	return nil, output, nil
}

// handleResolveCitation handles the resolve_citation tool invocation.
func (s *Server) handleResolveCitation(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CitationInput,
) (*mcp.CallToolResult, CitationOutput, error) {
	chunk, err := s.ports.Citation.Resolve(ctx, input.Citation)
	if err != nil {
		return nil, CitationOutput{}, err
	}

	return nil, CitationOutput{
		ChunkID:     chunk.ID,
		DocumentID:  chunk.DocID,
		Citation:    chunk.Citation,
		StartOffset: chunk.StartOffset,
		EndOffset:   chunk.EndOffset,
		Tokens:      chunk.Tokens,
		Text:        chunk.Text,
	}, nil
}

// handleAnnotate handles the annotate tool invocation.
func (s *Server) handleAnnotate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnnotateInput,
) (*mcp.CallToolResult, AnnotateOutput, error) {
	relevance := domain.Relevance(input.Relevance)
	if !relevance.IsValid() {
		return nil, AnnotateOutput{}, fmt.Errorf("relevance %d: %w", input.Relevance, domain.ErrInvalidInput)
	}

	if err := s.ports.Annotation.Annotate(ctx, input.QueryID, input.ChunkID, relevance); err != nil {
		return nil, AnnotateOutput{}, err
	}

	return nil, AnnotateOutput{
		QueryID:   input.QueryID,
		ChunkID:   input.ChunkID,
		Relevance: relevance.String(),
	}, nil
}

func toResultOutput(r *domain.EvaluationResult) ResultOutput {
	return ResultOutput{
		QueryID:          r.QueryID,
		QueryText:        r.QueryText,
		Error:            r.Error,
		TotalChunks:      r.TotalChunks,
		AnnotatedChunks:  r.AnnotatedChunks,
		RelevantChunks:   r.RelevantChunks,
		RelevanceRate:    r.RelevanceRate,
		OptimalThreshold: r.OptimalThreshold,
		OptimalF1:        r.OptimalF1,
		OptimalPrecision: r.OptimalPrecision,
		OptimalRecall:    r.OptimalRecall,
		AUC:              r.AUC,
	}
}
