package llm

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CodexCLIAdapter uses the Codex CLI for generation.
type CodexCLIAdapter struct {
	model string
}

// NewCodexCLIAdapter creates a Codex CLI adapter.
func NewCodexCLIAdapter(config Config) *CodexCLIAdapter {
	model := config.Model
	if model == "" || strings.HasPrefix(model, "claude") {
		model = "o3"
	}
	return &CodexCLIAdapter{model: model}
}

func (a *CodexCLIAdapter) Name() string {
	return ProviderCodexCLI
}

// Model returns the model passed to the backend.
func (a *CodexCLIAdapter) Model() string {
	return a.model
}

// IsAvailable checks if the codex CLI is installed.
func (a *CodexCLIAdapter) IsAvailable() bool {
	_, err := exec.LookPath("codex")
	return err == nil
}

func (a *CodexCLIAdapter) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	// Codex takes a single prompt.
	combined := fmt.Sprintf("SYSTEM INSTRUCTIONS:\n%s\n\nUSER REQUEST:\n%s", systemPrompt, userPrompt)

	cmd := exec.CommandContext(ctx, "codex",
		"--model", a.model,
		"--quiet",
	)
	cmd.Stdin = strings.NewReader(combined)

	output, err := cmd.Output()
	if err != nil {
		return "", cliError("codex", err)
	}
	return string(output), nil
}
