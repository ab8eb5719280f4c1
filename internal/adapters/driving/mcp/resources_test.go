package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

func TestExtractQueryID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid annotations URI",
			uri:      "contextpacket://queries/q-123/annotations",
			expected: "q-123",
		},
		{
			name:     "invalid prefix",
			uri:      "file://queries/q-123/annotations",
			expected: "",
		},
		{
			name:     "missing annotations suffix",
			uri:      "contextpacket://queries/q-123",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractQueryID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleReportResource(t *testing.T) {
	ctx := context.Background()

	t.Run("renders markdown", func(t *testing.T) {
		ports := basePorts()
		ports.Evaluation = &mockEvaluationService{
			report:   &domain.EvaluationReport{},
			markdown: "# Reranker Evaluation Report\n",
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleReportResource(ctx, makeReadResourceRequest("contextpacket://report"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/markdown", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "Reranker Evaluation Report")
	})

	t.Run("returns error on evaluation failure", func(t *testing.T) {
		ports := basePorts()
		ports.Evaluation = &mockEvaluationService{err: errors.New("no chunks")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, err = server.handleReportResource(ctx, makeReadResourceRequest("contextpacket://report"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "evaluating")
	})
}

func TestServer_handleQueriesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil annotation service returns empty list", func(t *testing.T) {
		server, err := NewServer(basePorts())
		require.NoError(t, err)

		result, err := server.handleQueriesResource(ctx, makeReadResourceRequest("contextpacket://queries"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns queries", func(t *testing.T) {
		annotations := newMockAnnotationService()
		annotations.queries = []domain.Query{{ID: "q1", Text: "how are chunks ordered", Type: "factual"}}
		ports := basePorts()
		ports.Annotation = annotations
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleQueriesResource(ctx, makeReadResourceRequest("contextpacket://queries"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"id": "q1"`)
		assert.Contains(t, result.Contents[0].Text, "how are chunks ordered")
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		annotations := newMockAnnotationService()
		annotations.err = errors.New("database error")
		ports := basePorts()
		ports.Annotation = annotations
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, err = server.handleQueriesResource(ctx, makeReadResourceRequest("contextpacket://queries"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing queries")
	})
}

func TestServer_handleAnnotationsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil annotation service returns not found", func(t *testing.T) {
		server, err := NewServer(basePorts())
		require.NoError(t, err)

		_, err = server.handleAnnotationsResource(ctx, makeReadResourceRequest("contextpacket://queries/q1/annotations"))
		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		ports := basePorts()
		ports.Annotation = newMockAnnotationService()
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, err = server.handleAnnotationsResource(ctx, makeReadResourceRequest("contextpacket://invalid"))
		require.Error(t, err)
	})

	t.Run("returns labels for query", func(t *testing.T) {
		annotations := newMockAnnotationService()
		annotations.set.Set("q1", "c1", domain.Annotation{Relevance: domain.RelevanceRelevant})
		annotations.set.Set("q2", "c2", domain.Annotation{Relevance: domain.RelevanceNotRelevant})
		ports := basePorts()
		ports.Annotation = annotations
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleAnnotationsResource(ctx, makeReadResourceRequest("contextpacket://queries/q1/annotations"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"c1": 1`)
		assert.NotContains(t, result.Contents[0].Text, "c2")
	})
}
