package llm

import (
	"fmt"
	"os/exec"
)

// ModelInfo describes an available model.
type ModelInfo struct {
	ID          string // Model identifier
	Name        string // Human-readable name
	Description string // Brief description
	Provider    string // anthropic or openai
}

var claudeModels = []ModelInfo{
	{ID: "claude-sonnet-4-5-20250929", Name: "Claude Sonnet 4.5", Description: "Balanced quality and speed for long documents", Provider: "anthropic"},
	{ID: "claude-opus-4-5-20251101", Name: "Claude Opus 4.5", Description: "Most thorough BRD and FRD drafting", Provider: "anthropic"},
	{ID: "claude-haiku-4-5-20251001", Name: "Claude Haiku 4.5", Description: "Fast, low cost drafts", Provider: "anthropic"},
}

var codexModels = []ModelInfo{
	{ID: "o3", Name: "O3", Description: "Reasoning model", Provider: "openai"},
	{ID: "gpt-4o", Name: "GPT-4o", Description: "Fast general model", Provider: "openai"},
	{ID: "gpt-4o-mini", Name: "GPT-4o Mini", Description: "Most cost-effective", Provider: "openai"},
}

// AvailableModels returns models grouped by provider based on available CLIs.
// Claude models are also offered when only the API key is set.
func AvailableModels(config Config) map[string][]ModelInfo {
	result := make(map[string][]ModelInfo)
	if NewClaudeCLIAdapter(config).IsAvailable() {
		result["anthropic"] = claudeModels
	} else if a, err := NewAnthropicAPIAdapter(config); err == nil && a.IsAvailable() {
		result["anthropic"] = claudeModels
	}
	if _, err := exec.LookPath("codex"); err == nil {
		result["openai"] = codexModels
	}
	return result
}

// AllModels returns a flat list of all available models, Claude first.
func AllModels(config Config) []ModelInfo {
	available := AvailableModels(config)
	var result []ModelInfo
	result = append(result, available["anthropic"]...)
	result = append(result, available["openai"]...)
	return result
}

// DetectBestAdapter returns the adapter named by config.Provider, or under
// auto the best available one. Priority: Claude CLI > Codex CLI > Anthropic API.
func DetectBestAdapter(config Config) (Adapter, error) {
	switch config.Provider {
	case ProviderOff:
		return nil, &GenerationError{Kind: KindUnavailable, Message: "ai disabled"}
	case ProviderClaudeCLI:
		return requireAvailable(NewClaudeCLIAdapter(config))
	case ProviderCodexCLI:
		return requireAvailable(NewCodexCLIAdapter(config))
	case ProviderAPI:
		a, err := NewAnthropicAPIAdapter(config)
		if err != nil {
			return nil, &GenerationError{Kind: KindUnavailable, Adapter: ProviderAPI, Err: err}
		}
		return a, nil
	case "", ProviderAuto:
	default:
		return nil, fmt.Errorf("unknown ai provider %q", config.Provider)
	}

	if claude := NewClaudeCLIAdapter(config); claude.IsAvailable() {
		return claude, nil
	}
	if codex := NewCodexCLIAdapter(config); codex.IsAvailable() {
		return codex, nil
	}
	if api, err := NewAnthropicAPIAdapter(config); err == nil {
		return api, nil
	}
	return nil, &GenerationError{
		Kind:    KindUnavailable,
		Message: "install Claude Code, Codex, or set ANTHROPIC_API_KEY",
	}
}

func requireAvailable(a Adapter) (Adapter, error) {
	if !a.IsAvailable() {
		return nil, &GenerationError{Kind: KindUnavailable, Adapter: a.Name(), Message: "not installed"}
	}
	return a, nil
}

// ListAvailableAdapters returns all adapters that could be used.
func ListAvailableAdapters(config Config) []string {
	var available []string
	if NewClaudeCLIAdapter(config).IsAvailable() {
		available = append(available, ProviderClaudeCLI)
	}
	if NewCodexCLIAdapter(config).IsAvailable() {
		available = append(available, ProviderCodexCLI)
	}
	if _, err := NewAnthropicAPIAdapter(config); err == nil {
		available = append(available, ProviderAPI)
	}
	return available
}
