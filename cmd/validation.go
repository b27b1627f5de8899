package cmd

import (
	"fmt"
	"slices"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/tui"
	"github.com/spf13/cobra"
)

var (
	valDomain  string
	valTitle   string
	valAction  string
	valPersona string
)

// ValidationCmd prints the validation criteria resolved for one EPIC.
var ValidationCmd = &cobra.Command{
	Use:   "validation",
	Short: "Resolve validation criteria for an EPIC",
	Long: `Resolve the validation criteria attached to a user story of the given
EPIC, action and persona within a domain. Returns between one and seven
criteria.`,
	Args: cobra.NoArgs,
	RunE: runValidation,
}

func init() {
	ValidationCmd.Flags().StringVar(&valDomain, "domain", "generic", "Domain")
	ValidationCmd.Flags().StringVar(&valTitle, "title", "", "EPIC title")
	ValidationCmd.Flags().StringVar(&valAction, "action", "Manage Primary Functions", "Story action")
	ValidationCmd.Flags().StringVar(&valPersona, "persona", "User", "Story persona")
	addEngineFlags(ValidationCmd)
	_ = ValidationCmd.MarkFlagRequired("title")
}

func runValidation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	names := append([]string{string(core.Generic)}, engine.Rules().DomainNames()...)
	if !slices.Contains(names, valDomain) {
		return &core.ValidationError{Field: "domain", Message: fmt.Sprintf("unknown domain %q (want one of %v)", valDomain, names)}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s\n", tui.IDStyle.Render(valTitle), tui.HelpStyle.Render("("+valPersona+", "+valAction+")"))
	for i, v := range engine.ResolveValidation(core.Domain(valDomain), valTitle, valAction, valPersona) {
		fmt.Fprintf(w, "%d. %s\n", i+1, v)
	}
	return nil
}
