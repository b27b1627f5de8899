package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCLI installs an executable named name on an isolated PATH.
func fakeCLI(t *testing.T, name, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts required")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	t.Setenv("PATH", dir)
}

func TestClaudeCLIAdapterPipesPrompt(t *testing.T) {
	fakeCLI(t, "claude", "/bin/cat")

	a := NewClaudeCLIAdapter(Config{})
	require.True(t, a.IsAvailable())

	out, err := a.Generate(context.Background(), "system", "<h3>EPIC-01: Echo</h3>")
	require.NoError(t, err)
	assert.Equal(t, "<h3>EPIC-01: Echo</h3>", out)
}

func TestClaudeCLIAdapterReportsStderr(t *testing.T) {
	fakeCLI(t, "claude", "echo 'not logged in' >&2; exit 3")

	_, err := NewClaudeCLIAdapter(Config{}).Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestCodexCLIAdapterCombinesPrompts(t *testing.T) {
	fakeCLI(t, "codex", "/bin/cat")

	out, err := NewCodexCLIAdapter(Config{}).Generate(context.Background(), "be brief", "write a BRD")
	require.NoError(t, err)
	assert.Equal(t, "SYSTEM INSTRUCTIONS:\nbe brief\n\nUSER REQUEST:\nwrite a BRD", out)
}

func TestCodexCLIAdapterIgnoresClaudeModel(t *testing.T) {
	assert.Equal(t, "o3", NewCodexCLIAdapter(Config{Model: "claude-haiku-4-5-20251001"}).model)
	assert.Equal(t, "gpt-4o", NewCodexCLIAdapter(Config{Model: "gpt-4o"}).model)
}

func TestDetectBestAdapter(t *testing.T) {
	t.Run("prefers claude cli", func(t *testing.T) {
		fakeCLI(t, "claude", "/bin/cat")
		t.Setenv("ANTHROPIC_API_KEY", "sk-test")
		a, err := DetectBestAdapter(Config{Provider: ProviderAuto})
		require.NoError(t, err)
		assert.Equal(t, ProviderClaudeCLI, a.Name())
	})

	t.Run("falls back to api key", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())
		t.Setenv("ANTHROPIC_API_KEY", "sk-test")
		a, err := DetectBestAdapter(Config{})
		require.NoError(t, err)
		assert.Equal(t, ProviderAPI, a.Name())
	})

	t.Run("nothing available", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())
		t.Setenv("ANTHROPIC_API_KEY", "")
		_, err := DetectBestAdapter(Config{Provider: ProviderAuto})
		ge, ok := IsGenerationError(err)
		require.True(t, ok)
		assert.Equal(t, KindUnavailable, ge.Kind)
	})

	t.Run("explicit cli missing", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())
		_, err := DetectBestAdapter(Config{Provider: ProviderCodexCLI})
		ge, ok := IsGenerationError(err)
		require.True(t, ok)
		assert.Equal(t, ProviderCodexCLI, ge.Adapter)
	})

	t.Run("off", func(t *testing.T) {
		_, err := DetectBestAdapter(Config{Provider: ProviderOff})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := DetectBestAdapter(Config{Provider: "gemini"})
		assert.Error(t, err)
		_, ok := IsGenerationError(err)
		assert.False(t, ok)
	})
}

func TestAnthropicAPIAdapterGenerate(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("X-Api-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-haiku-4-5-20251001",
			"content": [{"type": "text", "text": "<h3>EPIC-01: "}, {"type": "text", "text": "Billing</h3>"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 8}
		}`))
	}))
	defer srv.Close()

	a, err := NewAnthropicAPIAdapter(Config{APIKey: "sk-test", BaseURL: srv.URL + "/", Model: "claude-haiku-4-5-20251001", MaxTokens: 512})
	require.NoError(t, err)

	out, err := a.Generate(context.Background(), "be a BA", "write")
	require.NoError(t, err)
	assert.Equal(t, "<h3>EPIC-01: Billing</h3>", out)
	assert.Equal(t, "claude-haiku-4-5-20251001", got.Model)
	assert.Equal(t, 512, got.MaxTokens)
	require.Len(t, got.System, 1)
	assert.Equal(t, "be a BA", got.System[0].Text)
}

func TestAnthropicAPIAdapterNeedsKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := NewAnthropicAPIAdapter(Config{})
	assert.Error(t, err)
}
