// Package mcp exposes the mediagate tool to an agent host over the Model
// Context Protocol on stdio.
package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/mediagate/internal/tool"
)

// Config holds MCP server configuration.
type Config struct {
	Version string
}

// Server wraps the MCP SDK server around a single tool.
type Server struct {
	mcpServer *mcpsdk.Server
	tool      *tool.Tool
}

// New creates an MCP server that forwards every call to t.
func New(cfg Config, t *tool.Tool) *Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	s := &Server{tool: t}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    tool.Name,
			Version: version,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close releases the tool's gallery log.
func (s *Server) Close() error {
	return s.tool.Close()
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        tool.Name,
		Description: description(s.tool.Actions()),
	}, s.handleInvoke)
}

func description(actions []string) string {
	return fmt.Sprintf("Generate images and videos with the remote media API, track jobs, "+
		"download and upload assets, and check account balance and pricing. "+
		"Local paths must be inside the allowed directories. Actions: %s.", strings.Join(actions, ", "))
}
