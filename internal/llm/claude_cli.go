package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ClaudeCLIAdapter uses the Claude Code CLI for generation.
// This is preferred because users already have it authenticated.
type ClaudeCLIAdapter struct {
	model string
}

// NewClaudeCLIAdapter creates a Claude CLI adapter.
func NewClaudeCLIAdapter(config Config) *ClaudeCLIAdapter {
	model := config.Model
	if model == "" {
		model = defaultClaudeModel
	}
	return &ClaudeCLIAdapter{model: model}
}

func (a *ClaudeCLIAdapter) Name() string {
	return ProviderClaudeCLI
}

// Model returns the model passed to the backend.
func (a *ClaudeCLIAdapter) Model() string {
	return a.model
}

// IsAvailable checks if the claude CLI is installed.
func (a *ClaudeCLIAdapter) IsAvailable() bool {
	_, err := exec.LookPath("claude")
	return err == nil
}

func (a *ClaudeCLIAdapter) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	// The system prompt goes through a file; the user prompt through stdin.
	systemFile, err := os.CreateTemp("", "brdgen-system-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create system prompt file: %w", err)
	}
	defer os.Remove(systemFile.Name())

	if _, err := systemFile.WriteString(systemPrompt); err != nil {
		systemFile.Close()
		return "", fmt.Errorf("failed to write system prompt: %w", err)
	}
	systemFile.Close()

	cmd := exec.CommandContext(ctx, "claude",
		"--model", a.model,
		"--system-prompt-file", systemFile.Name(),
		"--print",
		"--output-format", "text",
	)
	cmd.Stdin = strings.NewReader(userPrompt)

	output, err := cmd.Output()
	if err != nil {
		return "", cliError("claude", err)
	}
	return string(output), nil
}

// cliError keeps stderr from a failed CLI and preserves context errors.
func cliError(name string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%s CLI failed: %s: %w", name, strings.TrimSpace(string(exitErr.Stderr)), err)
	}
	return fmt.Errorf("%s CLI failed: %w", name, err)
}
