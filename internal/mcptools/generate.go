package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/generator"
	"github.com/dhabedank/brdgen/internal/render"
)

// GenerateBRDTool handles the generate_brd MCP tool.
type GenerateBRDTool struct {
	gen *generator.Generator
}

// NewGenerateBRDTool creates a GenerateBRDTool.
func NewGenerateBRDTool(gen *generator.Generator) *GenerateBRDTool {
	return &GenerateBRDTool{gen: gen}
}

// Definition returns the MCP tool definition for generate_brd.
func (t *GenerateBRDTool) Definition() mcp.Tool {
	return mcp.NewTool("generate_brd",
		mcp.WithDescription("Generate a Business Requirements Document with EPICs, objectives, risks "+
			"and domain validations from project inputs. Multi-line fields take one item per line."),
		mcp.WithString("project", mcp.Description("Project name")),
		mcp.WithNumber("version", mcp.Description("Document version (default 1)")),
		mcp.WithString("scope", mcp.Description("Project scope")),
		mcp.WithString("objectives", mcp.Description("Business objectives")),
		mcp.WithString("budget", mcp.Description("Budget details")),
		mcp.WithString("requirements",
			mcp.Required(),
			mcp.Description("Brief requirements, one per line"),
		),
		mcp.WithString("assumptions", mcp.Description("Assumptions")),
		mcp.WithString("constraints", mcp.Description("Constraints and risks")),
		mcp.WithString("validations", mcp.Description("Validation rules; replaces the derived ones")),
		formatParam(),
	)
}

// Handle processes the generate_brd tool call.
func (t *GenerateBRDTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := core.Input{
		Project:           req.GetString("project", ""),
		Version:           intArg(req, "version", 1),
		Scope:             req.GetString("scope", ""),
		Objectives:        req.GetString("objectives", ""),
		Budget:            req.GetString("budget", ""),
		BriefRequirements: req.GetString("requirements", ""),
		Assumptions:       req.GetString("assumptions", ""),
		Constraints:       req.GetString("constraints", ""),
		Validations:       req.GetString("validations", ""),
	}
	return run(ctx, t.gen, core.DocBRD, in, req.GetString("format", string(render.Markdown)))
}

// GenerateFRDTool handles the generate_frd MCP tool.
type GenerateFRDTool struct {
	gen *generator.Generator
}

// NewGenerateFRDTool creates a GenerateFRDTool.
func NewGenerateFRDTool(gen *generator.Generator) *GenerateFRDTool {
	return &GenerateFRDTool{gen: gen}
}

// Definition returns the MCP tool definition for generate_frd.
func (t *GenerateFRDTool) Definition() mcp.Tool {
	return mcp.NewTool("generate_frd",
		mcp.WithDescription("Convert a BRD (HTML, markdown or text with EPIC-NN headings and "+
			"'Requirements:' bullet lists) into a Functional Requirements Document with user stories, "+
			"FR-NNN requirements and validation rules."),
		mcp.WithString("brd",
			mcp.Required(),
			mcp.Description("The BRD content"),
		),
		mcp.WithString("project", mcp.Description("Project name")),
		mcp.WithNumber("version", mcp.Description("Document version (default 1)")),
		formatParam(),
	)
}

// Handle processes the generate_frd tool call.
func (t *GenerateFRDTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := core.Input{
		Project: req.GetString("project", ""),
		Version: intArg(req, "version", 1),
		BRDText: req.GetString("brd", ""),
	}
	if strings.TrimSpace(in.BRDText) == "" {
		return mcp.NewToolResultError("'brd' is required"), nil
	}
	return run(ctx, t.gen, core.DocFRD, in, req.GetString("format", string(render.Markdown)))
}

func formatParam() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Output format (default markdown)"),
		mcp.Enum(string(render.Markdown), string(render.HTML)),
	)
}

func run(ctx context.Context, gen *generator.Generator, t core.DocType, in core.Input, format string) (*mcp.CallToolResult, error) {
	f, err := render.ParseFormat(format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := in.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := gen.Generate(ctx, generator.Request{Name: "mcp", Input: in, Type: t, Format: f})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate %s: %v", t, err)), nil
	}
	return mcp.NewToolResultText(res.Document.HTML), nil
}
