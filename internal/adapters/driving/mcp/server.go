package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/contextpacket/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// shutdownTimeout bounds how long RunHTTP waits for open sessions to finish.
const shutdownTimeout = 5 * time.Second

// Server exposes evaluation, citation lookup and annotation over MCP.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "contextpacket",
		Version: Version,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions(ports)}),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// instructions tells clients which tools are available for this chunk set.
func instructions(ports *Ports) string {
	var b strings.Builder
	b.WriteString("Chunks are addressed by citations of the form §<docId>:<T|H|P>:<start>:<end>, ")
	b.WriteString("where start and end are token offsets. ")
	b.WriteString("Use resolve_citation to read a chunk and evaluate to measure scorer quality against human labels.")
	if ports.Annotation != nil {
		b.WriteString(" Use annotate to record relevance labels (1 relevant, 0 not relevant, -1 skipped).")
	}
	return b.String()
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves streamable HTTP on addr until the context is cancelled.
// A bare port such as "8080" listens on all interfaces.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	logger.Info("mcp: listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
