// Package mcptools exposes the engine as MCP tools over stdio.
//
// Each tool is a struct with its dependencies injected via constructor,
// a Definition() returning the mcp.Tool schema and a Handle() method.
package mcptools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dhabedank/brdgen/internal/generator"
)

// NewServer builds an MCP server with every brdgen tool registered.
func NewServer(gen *generator.Generator, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"brdgen",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Classify requirement text into a business domain, generate BRDs, "+
			"convert BRDs into FRDs and look up validation criteria for an EPIC."),
	)

	classify := NewClassifyTool(gen)
	s.AddTool(classify.Definition(), classify.Handle)

	brd := NewGenerateBRDTool(gen)
	s.AddTool(brd.Definition(), brd.Handle)

	frd := NewGenerateFRDTool(gen)
	s.AddTool(frd.Definition(), frd.Handle)

	validation := NewValidationTool(gen)
	s.AddTool(validation.Definition(), validation.Handle)

	return s
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
