// Package mcp exposes the component editor as MCP tools, so an agent can
// parse a component, inspect an element's editable properties, apply edits
// and regenerate the code.
//
// The tools are stateless: every call carries the component source and
// returns the regenerated source.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/compedit/pkg/extractor"
	"github.com/gnana997/compedit/pkg/mcplog"
	"github.com/gnana997/compedit/pkg/properties"
)

const serverVersion = "0.1.0"

// Server implements the MCP server for compedit.
type Server struct {
	mcpServer *server.MCPServer
	parser    *extractor.Parser
	engine    *properties.Engine
	logger    *mcplog.Logger // may be nil
}

// NewServer creates the MCP server. The call logger may be nil.
func NewServer(p *extractor.Parser, e *properties.Engine, logger *mcplog.Logger) *Server {
	s := &Server{parser: p, engine: e, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("compedit", serverVersion, opts...)
	s.mcpServer.AddTools(s.tools()...)
	return s
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: parseComponentTool(), Handler: s.handleParseComponent},
		{Tool: listPropertiesTool(), Handler: s.handleListProperties},
		{Tool: applyEditTool(), Handler: s.handleApplyEdit},
		{Tool: applyDirectionalTool(), Handler: s.handleApplyDirectional},
		{Tool: generateCodeTool(), Handler: s.handleGenerateCode},
		{Tool: listPluginsTool(), Handler: s.handleListPlugins},
		{Tool: getSampleTool(), Handler: s.handleGetSample},
	}
}

// MCPServer returns the underlying mcp-go server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
