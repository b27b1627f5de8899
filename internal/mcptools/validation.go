package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/generator"
)

// ValidationTool handles the resolve_validation MCP tool.
type ValidationTool struct {
	gen *generator.Generator
}

// NewValidationTool creates a ValidationTool.
func NewValidationTool(gen *generator.Generator) *ValidationTool {
	return &ValidationTool{gen: gen}
}

// Definition returns the MCP tool definition for resolve_validation.
func (t *ValidationTool) Definition() mcp.Tool {
	names := append([]string{string(core.Generic)}, t.gen.Engine().Rules().DomainNames()...)
	return mcp.NewTool("resolve_validation",
		mcp.WithDescription("List the validation criteria (at most 7) for a user story of an EPIC, "+
			"based on domain, EPIC title, story action and persona."),
		mcp.WithString("domain",
			mcp.Required(),
			mcp.Description("Business domain"),
			mcp.Enum(names...),
		),
		mcp.WithString("epic_title",
			mcp.Required(),
			mcp.Description("EPIC title, e.g. 'Charging & Billing Management'"),
		),
		mcp.WithString("action", mcp.Description("Story action, e.g. 'Manage Primary Functions'")),
		mcp.WithString("persona", mcp.Description("Story persona, e.g. 'Billing Specialist'")),
	)
}

// Handle processes the resolve_validation tool call.
func (t *ValidationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	domain := core.Domain(strings.ToLower(req.GetString("domain", "")))
	title := req.GetString("epic_title", "")
	if title == "" {
		return mcp.NewToolResultError("'epic_title' is required"), nil
	}
	if !t.knownDomain(domain) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown domain %q", domain)), nil
	}

	rules := t.gen.Engine().ResolveValidation(domain, title, req.GetString("action", ""), req.GetString("persona", ""))

	var sb strings.Builder
	for i, r := range rules {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (t *ValidationTool) knownDomain(d core.Domain) bool {
	if d == core.Generic {
		return true
	}
	for _, name := range t.gen.Engine().Rules().DomainNames() {
		if string(d) == name {
			return true
		}
	}
	return false
}
