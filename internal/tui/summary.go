package tui

import (
	"fmt"
	"strings"

	"github.com/dhabedank/brdgen/internal/core"
)

// Summary is what the CLI reports after writing a document.
type Summary struct {
	Project     string
	Version     int
	Type        core.DocType
	Domain      core.Domain
	DomainLabel string
	Epics       []core.Epic
	Stories     int
	Source      string
	Adapter     string
	Fallback    string
	Path        string
	Bytes       int

	// AI exchange sizes, shown as a cost estimate when Source is ai.
	Model       string
	PromptChars int
	ReplyChars  int
}

// RenderSummary formats s inside a box.
func RenderSummary(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s v%d\n", TitleStyle.Render(strings.ToUpper(string(s.Type))), s.Project, s.Version)
	fmt.Fprintf(&b, "Domain:  %s\n", DomainStyle.Render(s.DomainLabel))
	fmt.Fprintf(&b, "EPICs:   %d\n", len(s.Epics))
	for _, ep := range s.Epics {
		fmt.Fprintf(&b, "  %s %s %s\n", IDStyle.Render(ep.ID), ep.Title,
			HelpStyle.Render(fmt.Sprintf("(%d)", len(ep.FunctionalRequirements))))
	}
	if s.Stories > 0 {
		fmt.Fprintf(&b, "Stories: %d\n", s.Stories)
	}

	source := s.Source
	if s.Adapter != "" {
		source += " via " + ModelStyle.Render(s.Adapter)
	}
	fmt.Fprintf(&b, "Source:  %s", source)
	if s.Source == "ai" && s.PromptChars > 0 {
		model := s.Model
		if model == "" {
			model = s.Adapter
		}
		fmt.Fprintf(&b, "\nCost:    %s", RenderEstimate(model, s.PromptChars, s.ReplyChars))
	}
	if s.Fallback != "" {
		fmt.Fprintf(&b, "\n%s %s", WarningStyle.Render("fallback:"), s.Fallback)
	}
	if s.Path != "" {
		fmt.Fprintf(&b, "\nWrote:   %s %s", s.Path, HelpStyle.Render(fmt.Sprintf("(%d bytes)", s.Bytes)))
	}
	return BoxStyle.Render(b.String())
}

// RenderScores formats a classification breakdown, marking the chosen domain.
func RenderScores(chosen core.Domain, label string, scores []core.DomainScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", SubtitleStyle.Render("Domain:"), DomainStyle.Render(label))
	for _, s := range scores {
		marker := " "
		name := UnselectedStyle.Render(string(s.Domain))
		if s.Domain == chosen {
			marker = SuccessStyle.Render("*")
			name = SelectedStyle.Render(string(s.Domain))
		}
		fmt.Fprintf(&b, "%s %-12s %3d", marker, name, s.Score)
		if len(s.Matched) > 0 {
			fmt.Fprintf(&b, "  %s", HelpStyle.Render(strings.Join(s.Matched, ", ")))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderEstimate formats a rough token and cost line for an AI call.
func RenderEstimate(model string, promptChars, replyChars int) string {
	in, out := EstimateTokens(promptChars), EstimateTokens(replyChars)
	return fmt.Sprintf("%s ~%s in / ~%s out, %s",
		ModelStyle.Render(model), FormatTokens(in), FormatTokens(out),
		CostStyle.Render(FormatCost(EstimateCost(model, in, out))))
}
