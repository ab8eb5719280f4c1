package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for contextpacket resources.
	uriScheme = "contextpacket://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "report",
		Name:        "report",
		Description: "Evaluation report across all queries",
		MIMEType:    "text/markdown",
	}, s.handleReportResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "queries",
		Name:        "queries",
		Description: "Stored evaluation queries",
		MIMEType:    "application/json",
	}, s.handleQueriesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "queries/{queryId}/annotations",
		Name:        "query-annotations",
		Description: "Relevance labels recorded for a query",
		MIMEType:    "application/json",
	}, s.handleAnnotationsResource)
}

// handleReportResource renders the evaluation report as markdown.
func (s *Server) handleReportResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	report, err := s.ports.Evaluation.Evaluate(ctx)
	if err != nil {
		return nil, fmt.Errorf("evaluating: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     s.ports.Evaluation.Markdown(report),
		}},
	}, nil
}

// handleQueriesResource returns the stored queries.
func (s *Server) handleQueriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type queryInfo struct {
		ID   string `json:"id"`
		Text string `json:"query"`
		Type string `json:"type,omitempty"`
	}

	infos := []queryInfo{}
	if s.ports.Annotation != nil {
		queries, err := s.ports.Annotation.Queries(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing queries: %w", err)
		}
		for _, q := range queries {
			infos = append(infos, queryInfo{ID: q.ID, Text: q.Text, Type: q.Type})
		}
	}

	return jsonResource(req.Params.URI, infos, "queries")
}

// handleAnnotationsResource returns the labels recorded for one query.
func (s *Server) handleAnnotationsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Annotation == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	queryID := extractQueryID(req.Params.URI)
	if queryID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	set, err := s.ports.Annotation.List(ctx, queryID)
	if err != nil {
		return nil, fmt.Errorf("listing annotations: %w", err)
	}

	labels := make(map[string]int, len(set[queryID]))
	for chunkID, a := range set[queryID] {
		labels[chunkID] = int(a.Relevance)
	}

	return jsonResource(req.Params.URI, labels, "annotations")
}

func jsonResource(uri string, v any, what string) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", what, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractQueryID extracts the query ID from a URI like contextpacket://queries/{queryId}/annotations.
func extractQueryID(uri string) string {
	const prefix = uriScheme + "queries/"
	const suffix = "/annotations"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
