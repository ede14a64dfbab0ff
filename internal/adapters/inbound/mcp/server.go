package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// Options configures the MCP server's collaborators.
type Options struct {
	DBPath      string
	ProjectPath string
	ClusterCmd  string
}

// NewReductorMCPServer creates a new MCP server with all Reductor tools and
// resources registered.
func NewReductorMCPServer(opts Options) *server.MCPServer {
	s := server.NewMCPServer(
		"reductor",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, opts)
	registerResources(s, opts)

	return s
}
