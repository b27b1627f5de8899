package cmd

import (
	"fmt"
	"strings"

	"github.com/dhabedank/brdgen/internal/ruleset"
	"github.com/dhabedank/brdgen/internal/tui"
	"github.com/spf13/cobra"
)

// RulesCmd groups the rule table tools.
var RulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and check the classification and story rule tables",
	Long: `The engine's keyword, EPIC title, persona, story and validation tables
are YAML files. Files placed in a rules directory (rules_dir in
.brdgen.yaml, or --rules-dir) replace the built-in file of the same name.`,
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Load and validate a rules directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		rs, err := ruleset.Load(dir)
		if err != nil {
			return err
		}
		if err := rs.Validate(); err != nil {
			return err
		}
		source := "built-in tables"
		if dir != "" {
			source = dir
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d domains (%s)\n",
			tui.SuccessStyle.Render("✓"), source, len(rs.DomainNames()), strings.Join(rs.DomainNames(), ", "))
		return nil
	},
}

var rulesDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the effective rule tables as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		rs, err := ruleset.Load(cfg.RulesDir)
		if err != nil {
			return err
		}
		data, err := rs.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rulesDumpCmd.Flags().String("rules-dir", "", "Directory of rule YAML files overriding the built-in tables")
	RulesCmd.AddCommand(rulesCheckCmd, rulesDumpCmd)
}
