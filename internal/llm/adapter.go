// Package llm provides the optional AI enhancement path. An adapter sends a
// document prompt to a text-completion backend; the enhancer checks the reply
// for the structural markers a usable document carries.
package llm

import (
	"context"
	"time"
)

// Adapter is the interface all LLM adapters must implement.
type Adapter interface {
	// Name returns the adapter identifier for logging.
	Name() string

	// IsAvailable checks if this adapter can be used (CLI installed, API key set, etc.)
	IsAvailable() bool

	// Generate sends prompts to the LLM and returns the raw text reply.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Provider names accepted in configuration.
const (
	ProviderOff       = "off"
	ProviderAuto      = "auto"
	ProviderAPI       = "anthropic-api"
	ProviderClaudeCLI = "claude-cli"
	ProviderCodexCLI  = "codex-cli"
)

// Providers lists every accepted provider value.
var Providers = []string{ProviderOff, ProviderAuto, ProviderAPI, ProviderClaudeCLI, ProviderCodexCLI}

// Config holds configuration for LLM adapters.
type Config struct {
	// Provider selects an adapter; auto picks the best installed one.
	Provider string

	// Model specifies which model to use (optional, adapter chooses default).
	Model string

	// APIKey for direct API access (optional if CLI is used).
	APIKey string

	// BaseURL overrides the Anthropic API endpoint.
	BaseURL string

	// MaxTokens limits response length.
	MaxTokens int

	// Timeout bounds a single generation call.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  ProviderAuto,
		MaxTokens: 8192,
		Timeout:   90 * time.Second,
	}
}

// Enabled reports whether any AI provider is configured.
func (c Config) Enabled() bool {
	return c.Provider != "" && c.Provider != ProviderOff
}
