package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/llm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".brdgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testCommand() *cobra.Command {
	c := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	c.Flags().StringP("output", "o", "html", "")
	c.Flags().StringP("output-dir", "d", ".", "")
	c.Flags().Bool("save", false, "")
	c.Flags().String("store", "", "")
	addAIFlags(c)
	addEngineFlags(c)
	return c
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	ConfigFile = writeConfig(t, `
ai: auto
model: claude-haiku-4-5-20251001
ai_timeout: 30s
output: markdown
match_mode: word
save: true
`)
	t.Cleanup(func() { ConfigFile = "" })

	c := testCommand()
	require.NoError(t, c.ParseFlags([]string{"--output", "json", "--ai", "off"}))

	cfg, err := loadConfig(c)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output, "flag set explicitly wins")
	assert.Equal(t, "off", cfg.AI)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Model, "file value kept when flag unset")
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, "word", cfg.MatchMode)
	assert.True(t, cfg.Save)
	assert.Equal(t, ".", cfg.OutputDir, "default survives")
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"provider", "ai: gpt-cloud\n", "ai"},
		{"output", "output: pdf\n", "output"},
		{"match mode", "match_mode: fuzzy\n", "match_mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ConfigFile = writeConfig(t, tt.body)
			t.Cleanup(func() { ConfigFile = "" })

			_, err := loadConfig(testCommand())
			require.Error(t, err)
			var ve *core.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Equal(t, "off", DefaultConfig().AI)
}

func TestNewGeneratorExplicitProviderMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	cfg := DefaultConfig()
	cfg.AI = "codex-cli"
	_, err := newGenerator(cfg, false)
	assert.Error(t, err)

	cfg.AI = "auto"
	t.Setenv("ANTHROPIC_API_KEY", "")
	gen, err := newGenerator(cfg, false)
	require.NoError(t, err, "auto degrades to the local engine")
	assert.NotNil(t, gen.Engine())
}

func TestLLMConfigEnabled(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.llmConfig().Enabled(), "default config runs the local engine only")

	cfg.AI, cfg.Model = llm.ProviderCodexCLI, "o3"
	ai := cfg.llmConfig()
	assert.True(t, ai.Enabled())
	assert.Equal(t, "o3", ai.Model)
	assert.Equal(t, cfg.AITimeout, ai.Timeout)
}

func TestNewEngineRulesDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RulesDir = filepath.Join(t.TempDir(), "missing")
	_, err := newEngine(cfg)
	assert.Error(t, err)
}
