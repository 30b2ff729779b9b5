// Package mcp exposes the live scoring surface to LLM agents over the
// Model Context Protocol.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"dqs-sentinel/src/contracts"
)

// Backend is the slice of the HTTP client the tools use. *api.Client
// satisfies it.
type Backend interface {
	LiveStats(ctx context.Context) (contracts.StatsSnapshot, error)
	LiveLogs(ctx context.Context, start, end string) (contracts.LogsResponse, error)
}

// Server is the MCP server for dqs-sentinel.
type Server struct {
	mcpServer *server.MCPServer
	backend   Backend
}

// NewServer creates a new MCP server over the given backend client.
func NewServer(backend Backend) *Server {
	s := server.NewMCPServer(
		"dqs-sentinel",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: s,
		backend:   backend,
	}
	srv.registerTools()

	return srv
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}
