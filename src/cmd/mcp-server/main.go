// Package main provides the MCP server entry point for DQS Sentinel.
// The server implements the Model Context Protocol over stdio, exposing the
// live scoring surface (stats, history, report parsing, export) to agents.
package main

import (
	"fmt"
	"log"
	"os"

	"dqs-sentinel/src/api"
	"dqs-sentinel/src/config"
	"dqs-sentinel/src/mcp"
)

func main() {
	// Load configuration; stdout is reserved for the protocol, so complaints
	// go to stderr.
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	backend := api.NewClient(cfg.API.BaseURL, cfg.API.Key, cfg.API.Timeout)

	server := mcp.NewServer(backend)

	// Run serves over stdin/stdout until the client disconnects.
	if err := server.Run(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
