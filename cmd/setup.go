package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dhabedank/brdgen/internal/llm"
	"github.com/dhabedank/brdgen/internal/tui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var resetConfig bool

// SetupCmd represents the setup command.
var SetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	Long: `Configure brdgen with an interactive wizard.

The wizard asks for:
- AI provider: off keeps every document on the local engine
- Model: used when a provider is selected
- Output format: html, markdown or json

Configuration is saved to ~/.brdgen.yaml`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	SetupCmd.Flags().BoolVar(&resetConfig, "reset", false, "Reset configuration to defaults")
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := homeConfigPath()
	if path == "" {
		path = configName
	}
	w := cmd.OutOrStdout()

	if resetConfig {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove config: %w", err)
		}
		fmt.Fprintln(w, tui.SuccessStyle.Render("✓")+" Configuration reset to defaults")
		fmt.Fprintf(w, "  Removed: %s\n", path)
		return nil
	}

	cfg := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if cfg, err = ReadConfig(path); err != nil {
			return err
		}
	}

	p := tea.NewProgram(newSetupModel(providerItems(), llm.AllModels(llm.DefaultConfig())))
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}
	final := m.(setupModel)
	if final.cancelled {
		fmt.Fprintln(w, "Setup cancelled")
		return nil
	}

	cfg.AI = final.choice[stepProvider]
	cfg.Model = final.choice[stepModel]
	cfg.Output = final.choice[stepOutput]
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := saveConfig(path, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, tui.SuccessStyle.Render("✓")+" Configuration saved to "+path)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  AI:     %s\n", tui.ModelStyle.Render(cfg.AI))
	if cfg.Model != "" {
		fmt.Fprintf(w, "  Model:  %s\n", tui.ModelStyle.Render(cfg.Model))
	}
	fmt.Fprintf(w, "  Output: %s\n", tui.ModelStyle.Render(cfg.Output))
	return nil
}

func saveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

const (
	stepProvider = iota
	stepModel
	stepOutput
	stepCount
)

var stepNames = []string{"Provider", "Model", "Output"}

// choiceItem is one row of a wizard list.
type choiceItem struct {
	value string
	title string
	desc  string
}

func (c choiceItem) Title() string       { return c.title }
func (c choiceItem) Description() string { return c.desc }
func (c choiceItem) FilterValue() string { return c.title }

func providerItems() []list.Item {
	installed := map[string]bool{llm.ProviderOff: true, llm.ProviderAuto: true}
	for _, name := range llm.ListAvailableAdapters(llm.DefaultConfig()) {
		installed[name] = true
	}
	descs := map[string]string{
		llm.ProviderOff:       "Local engine only, deterministic output",
		llm.ProviderAuto:      "Best installed provider, local engine as fallback",
		llm.ProviderClaudeCLI: "Claude Code CLI",
		llm.ProviderCodexCLI:  "Codex CLI",
		llm.ProviderAPI:       "Anthropic API (ANTHROPIC_API_KEY)",
	}
	var items []list.Item
	for _, p := range llm.Providers {
		desc := descs[p]
		if !installed[p] {
			desc += " (not detected)"
		}
		items = append(items, choiceItem{value: p, title: p, desc: desc})
	}
	return items
}

func modelItems(provider string, models []llm.ModelInfo) []list.Item {
	items := []list.Item{choiceItem{value: "", title: "Default", desc: "Let the provider choose"}}
	for _, m := range models {
		switch {
		case provider == llm.ProviderCodexCLI && m.Provider != "openai":
			continue
		case (provider == llm.ProviderClaudeCLI || provider == llm.ProviderAPI) && m.Provider != "anthropic":
			continue
		}
		items = append(items, choiceItem{value: m.ID, title: m.Name, desc: m.Description})
	}
	return items
}

func outputItems() []list.Item {
	return []list.Item{
		choiceItem{value: "html", title: "HTML", desc: "Styled standalone document"},
		choiceItem{value: "markdown", title: "Markdown", desc: "Plain text, diff friendly"},
		choiceItem{value: "json", title: "JSON", desc: "Document plus EPICs and user stories"},
	}
}

// Bubble Tea model for the setup wizard

type setupModel struct {
	step      int
	lists     []list.Model
	models    []llm.ModelInfo
	choice    []string
	cancelled bool
	width     int
	height    int
}

func newList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(tui.ColorPrimary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(tui.ColorMuted)

	l := list.New(items, delegate, 60, 14)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = tui.TitleStyle
	return l
}

func newSetupModel(providers []list.Item, models []llm.ModelInfo) setupModel {
	lists := make([]list.Model, stepCount)
	lists[stepProvider] = newList("Select AI Provider", providers)
	lists[stepModel] = newList("Select Model", modelItems(llm.ProviderAuto, models))
	lists[stepOutput] = newList("Select Output Format", outputItems())
	return setupModel{lists: lists, models: models, choice: make([]string, stepCount)}
}

func (m setupModel) Init() tea.Cmd {
	return nil
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for i := range m.lists {
			m.lists[i].SetWidth(msg.Width)
			m.lists[i].SetHeight(msg.Height - 4)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			if item, ok := m.lists[m.step].SelectedItem().(choiceItem); ok {
				m.choice[m.step] = item.value
			}
			if m.step == stepProvider {
				m.lists[stepModel].SetItems(modelItems(m.choice[stepProvider], m.models))
				m.lists[stepModel].ResetSelected()
				if m.choice[stepProvider] == llm.ProviderOff {
					m.choice[stepModel] = ""
					m.step++
				}
			}
			m.step++
			if m.step >= stepCount {
				return m, tea.Quit
			}
			return m, nil

		case "left", "h":
			if m.step > 0 {
				m.step--
				if m.step == stepModel && m.choice[stepProvider] == llm.ProviderOff {
					m.step--
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.lists[m.step], cmd = m.lists[m.step].Update(msg)
	return m, cmd
}

func (m setupModel) View() string {
	if m.cancelled || m.step >= stepCount {
		return ""
	}

	progress := "\n  "
	for i, s := range stepNames {
		switch {
		case i == m.step:
			progress += tui.SelectedStyle.Render(fmt.Sprintf("[%s]", s))
		case i < m.step:
			progress += tui.SuccessStyle.Render(fmt.Sprintf("✓ %s", s))
		default:
			progress += tui.UnselectedStyle.Render(fmt.Sprintf("○ %s", s))
		}
		if i < len(stepNames)-1 {
			progress += " → "
		}
	}
	progress += "\n\n"

	help := tui.HelpStyle.Render("\n  ↑/↓: navigate • enter: select • ←: back • q: quit")
	return progress + m.lists[m.step].View() + help
}
