// Package mcp provides an MCP (Model Context Protocol) server for the cosmo system.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cosmohq/cosmo/pkg/api"
	"github.com/cosmohq/cosmo/pkg/stream"
	"github.com/cosmohq/cosmo/pkg/utils"
)

// Asker streams chat answers. *stream.Client satisfies this.
type Asker interface {
	Ask(question, mode string, nResults int, cb stream.Callbacks) *stream.Session
}

// StatsClient reads the knowledge base summary. *api.Client satisfies this.
type StatsClient interface {
	Stats(ctx context.Context) (*api.Stats, error)
}

type Config struct {
	// Asker streams answers from the cosmo server (ask_docs tool).
	Asker Asker

	// API queries the cosmo server's knowledge base (knowledge_stats tool).
	API StatsClient

	// Mode is the answer mode used for ask_docs requests.
	Mode string

	// NResults is the retrieval depth used for ask_docs requests.
	NResults int

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the ask_docs and knowledge_stats tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	// Create the MCP server
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "cosmo",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if c.Noop {
		// return the empty MCP server with no tools configured
		// if the noop flag is set (i.e., MCP capabilities are disabled)
		s.mcpServer = mcpServer
		return s, nil
	}

	if c.Asker == nil {
		return nil, errors.New("asker is required")
	}
	if c.API == nil {
		return nil, errors.New("api client is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if s.config.Mode == "" {
		s.config.Mode = "quick"
	}
	if s.config.NResults <= 0 {
		s.config.NResults = 4
	}

	// Add tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        askToolName,
		Description: askDescription,
	}, s.handleAsk)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        statsToolName,
		Description: statsDescription,
	}, s.handleStats)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
