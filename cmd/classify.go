package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/tui"
	"github.com/spf13/cobra"
)

var (
	classifyText string
	classifyJSON bool
)

// ClassifyCmd prints the domain a block of requirements text belongs to.
var ClassifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify requirements text into a business domain",
	Long: `Score requirements text against each domain's keyword set and print the
winning domain with the per-domain breakdown. Ties keep the earlier domain
in the table; no keyword hits means generic.

Text comes from --text, a file argument, or stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	ClassifyCmd.Flags().StringVar(&classifyText, "text", "", "Text to classify")
	ClassifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print JSON")
	addEngineFlags(ClassifyCmd)
}

type classifyOutput struct {
	Domain core.Domain        `json:"domain"`
	Label  string             `json:"label"`
	Scores []core.DomainScore `json:"scores"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	text, err := classifyInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	domain, scores := engine.Scores(text)
	label := engine.Profile(domain).Label

	if classifyJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(classifyOutput{Domain: domain, Label: label, Scores: scores})
	}
	fmt.Fprint(cmd.OutOrStdout(), tui.RenderScores(domain, label, scores))
	return nil
}

func classifyInput(stdin io.Reader, args []string) (string, error) {
	if classifyText != "" {
		return classifyText, nil
	}
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no text to classify")
	}
	return string(data), nil
}
