package cmd

import (
	"github.com/dhabedank/brdgen/internal/llm"
	"github.com/dhabedank/brdgen/internal/mcptools"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// MCPCmd serves the engine as MCP tools over stdio.
var MCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server over stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing the tools
classify_domain, generate_brd, generate_frd and resolve_validation.

Logs go to stderr; stdout carries the protocol.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	addEngineFlags(MCPCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// MCP clients drive their own model; the tools stay on the local engine.
	cfg.AI = llm.ProviderOff
	gen, err := newGenerator(cfg, false)
	if err != nil {
		return err
	}

	log.Info("mcp server starting")
	return server.ServeStdio(mcptools.NewServer(gen, Version))
}
