package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dhabedank/brdgen/internal/generator"
)

// ClassifyTool handles the classify_domain MCP tool.
type ClassifyTool struct {
	gen *generator.Generator
}

// NewClassifyTool creates a ClassifyTool.
func NewClassifyTool(gen *generator.Generator) *ClassifyTool {
	return &ClassifyTool{gen: gen}
}

// Definition returns the MCP tool definition for classify_domain.
func (t *ClassifyTool) Definition() mcp.Tool {
	return mcp.NewTool("classify_domain",
		mcp.WithDescription("Classify requirement text into a business domain (marketing, financial, "+
			"healthcare, ecommerce, telecom, airline or generic) and show per-domain keyword scores."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Scope, objectives or requirements text to classify"),
		),
	)
}

// Handle processes the classify_domain tool call.
func (t *ClassifyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}

	e := t.gen.Engine()
	domain, scores := e.Scores(text)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Domain: %s (%s)\n\nScores:\n", domain, e.Profile(domain).Label)
	for _, s := range scores {
		fmt.Fprintf(&sb, "- %s: %d", s.Domain, s.Score)
		if len(s.Matched) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(s.Matched, ", "))
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}
