package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/jsonl"
	"github.com/custodia-labs/contextpacket/internal/adapters/driving/mcp"
	"github.com/custodia-labs/contextpacket/internal/core/services"
)

var (
	mcpChunks      string
	mcpScores      string
	mcpAnnotations string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can evaluate
scores, resolve citations and record annotations.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  contextpacket mcp serve --chunks out/chunks.jsonl --scores out/scores.jsonl

  # HTTP mode (for MCP Inspector, remote access)
  contextpacket mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "contextpacket": {
        "command": "/path/to/contextpacket",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpChunks, "chunks", jsonl.DefaultChunksFile, "chunk file")
	mcpServeCmd.Flags().StringVar(&mcpScores, "scores", jsonl.DefaultScoresFile, "score file")
	mcpServeCmd.Flags().StringVarP(&mcpAnnotations, "annotations", "a", jsonfile.DefaultFileName,
		"annotation store (.json file or .db database)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// newMCPPorts wires the services the MCP server exposes.
func newMCPPorts(backend *annotationBackend) (*mcp.Ports, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	chunks := jsonl.NewChunkFile(mcpChunks)
	opts := []services.EvaluationOption{services.WithQueries(settings.Queries)}
	if backend.Queries != nil {
		opts = append(opts, services.WithQueryStore(backend.Queries))
	}

	return &mcp.Ports{
		Evaluation: services.NewEvaluationService(chunks, jsonl.NewScoreFile(mcpScores), backend.Store, opts...),
		Citation:   services.NewCitationService(chunks),
		Annotation: services.NewAnnotationService(backend.Store, backend.Queries, jsonfile.Archive{}),
	}, nil
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	backend, err := openAnnotations(mcpAnnotations)
	if err != nil {
		return err
	}
	defer backend.Close()

	ports, err := newMCPPorts(backend)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
