package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/generator"
	"github.com/dhabedank/brdgen/internal/llm"
	"github.com/dhabedank/brdgen/internal/output"
	"github.com/dhabedank/brdgen/internal/review"
	"github.com/dhabedank/brdgen/internal/ruleset"
	"github.com/dhabedank/brdgen/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const configName = ".brdgen.yaml"

var (
	// ConfigFile is set by the root --config flag.
	ConfigFile string

	// Version is reported by the mcp server.
	Version = "dev"

	log = zap.NewNop()
)

// SetLogger installs the logger built by the root command.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// Config is the .brdgen.yaml file. Flags override any value set here.
type Config struct {
	AI        string        `yaml:"ai,omitempty"`
	Model     string        `yaml:"model,omitempty"`
	AITimeout time.Duration `yaml:"ai_timeout,omitempty"`
	Output    string        `yaml:"output,omitempty"`
	OutputDir string        `yaml:"output_dir,omitempty"`
	MatchMode string        `yaml:"match_mode,omitempty"`
	RulesDir  string        `yaml:"rules_dir,omitempty"`
	Store     string        `yaml:"store,omitempty"`
	Save      bool          `yaml:"save,omitempty"`
	Addr      string        `yaml:"addr,omitempty"`
}

// DefaultConfig runs the local engine only and writes HTML to the working
// directory.
func DefaultConfig() Config {
	return Config{
		AI:        llm.ProviderOff,
		AITimeout: llm.DefaultConfig().Timeout,
		Output:    "html",
		OutputDir: ".",
		MatchMode: string(ruleset.MatchSubstring),
		Store:     store.DefaultPath(),
		Addr:      "127.0.0.1:8080",
	}
}

// Validate rejects unknown providers, outputs and match modes.
func (c Config) Validate() error {
	if !slices.Contains(llm.Providers, c.AI) {
		return &core.ValidationError{Field: "ai", Message: fmt.Sprintf("unknown provider %q (want one of %v)", c.AI, llm.Providers)}
	}
	if _, err := output.ForName(c.Output); err != nil {
		return &core.ValidationError{Field: "output", Message: err.Error()}
	}
	if _, err := ruleset.NewMatcher(ruleset.MatchMode(c.MatchMode)); err != nil {
		return &core.ValidationError{Field: "match_mode", Message: err.Error()}
	}
	if c.AITimeout <= 0 {
		return &core.ValidationError{Field: "ai_timeout", Message: "must be positive"}
	}
	return nil
}

// llmConfig is the adapter configuration for cfg.
func (c Config) llmConfig() llm.Config {
	return llm.Config{
		Provider:  c.AI,
		Model:     c.Model,
		MaxTokens: llm.DefaultConfig().MaxTokens,
		Timeout:   c.AITimeout,
	}
}

// outputUsage is the help text of every --output flag.
var outputUsage = "Output format (" + strings.Join(output.Names, "/") + ")"

// ReadConfig decodes path over the defaults.
func ReadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// findConfig returns --config, else ./.brdgen.yaml, else ~/.brdgen.yaml,
// else "".
func findConfig() string {
	if ConfigFile != "" {
		return ConfigFile
	}
	if _, err := os.Stat(configName); err == nil {
		return configName
	}
	if p := homeConfigPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configName)
}

// loadConfig reads the config file and applies every flag the user set
// explicitly on cmd.
func loadConfig(cmd *cobra.Command) (Config, error) {
	cfg := DefaultConfig()
	if path := findConfig(); path != "" {
		var err error
		if cfg, err = ReadConfig(path); err != nil {
			return cfg, err
		}
		log.Debug("loaded config", zap.String("path", path))
	}

	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	str("ai", &cfg.AI)
	str("model", &cfg.Model)
	str("output", &cfg.Output)
	str("output-dir", &cfg.OutputDir)
	str("match-mode", &cfg.MatchMode)
	str("rules-dir", &cfg.RulesDir)
	str("store", &cfg.Store)
	str("addr", &cfg.Addr)
	if flags.Changed("ai-timeout") {
		cfg.AITimeout, _ = flags.GetDuration("ai-timeout")
	}
	if flags.Changed("save") {
		cfg.Save, _ = flags.GetBool("save")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// addEngineFlags registers the flags that shape the local engine.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("match-mode", "substring", "Keyword matching (substring/word)")
	cmd.Flags().String("rules-dir", "", "Directory of rule YAML files overriding the built-in tables")
}

// addAIFlags registers the optional AI provider flags.
func addAIFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("ai", "a", llm.ProviderOff, "AI provider (off/auto/anthropic-api/claude-cli/codex-cli)")
	cmd.Flags().StringP("model", "m", "", "Model to use (provider-specific)")
	cmd.Flags().Duration("ai-timeout", llm.DefaultConfig().Timeout, "Timeout for one AI call")
}

func newEngine(cfg Config) (*core.Engine, error) {
	rules, err := ruleset.Load(cfg.RulesDir)
	if err != nil {
		return nil, err
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	match, err := ruleset.NewMatcher(ruleset.MatchMode(cfg.MatchMode))
	if err != nil {
		return nil, err
	}
	return core.New(rules, match), nil
}

// newGenerator builds the engine and, when configured, the AI enhancer. An
// unavailable provider under auto degrades to the local engine; an explicitly
// named one is an error.
func newGenerator(cfg Config, withReview bool) (*generator.Generator, error) {
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	opts := []generator.Option{generator.WithLogger(log)}

	if aiCfg := cfg.llmConfig(); aiCfg.Enabled() {
		adapter, err := llm.DetectBestAdapter(aiCfg)
		switch {
		case err == nil:
			opts = append(opts, generator.WithAI(llm.NewEnhancer(adapter, cfg.AITimeout, log)))
			log.Debug("ai enabled", zap.String("adapter", adapter.Name()))
		case cfg.AI == llm.ProviderAuto:
			log.Info("no ai provider available, using local engine", zap.Error(err))
		default:
			return nil, fmt.Errorf("ai provider %s: %w", cfg.AI, err)
		}
	}

	if withReview {
		opts = append(opts, generator.WithReview(review.New(engine, nil).Review))
	}
	return generator.New(engine, opts...), nil
}
