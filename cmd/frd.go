package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/generator"
	"github.com/spf13/cobra"
)

var (
	frdProject string
	frdVersion int
	frdReview  bool

	htmlTitle     = regexp.MustCompile(`(?is)<title>\s*(.*?)\s*-\s*Business Requirements Document\s*</title>`)
	mdTitle       = regexp.MustCompile(`(?m)^#\s+(.+?)\s*$`)
	brdFileSuffix = regexp.MustCompile(`(?i)[-_]brd([-_]v\d+)?$`)
)

// FRDCmd converts a BRD into a Functional Requirements Document.
var FRDCmd = &cobra.Command{
	Use:   "frd <brd-file>",
	Short: "Convert a BRD into an FRD",
	Long: `Convert a Business Requirements Document into a Functional Requirements
Document.

The BRD may be HTML or markdown as written by "brdgen generate", or plain
text with "EPIC-NN: Title" headings followed by "Requirements:" bullet
lists. "-" reads the BRD from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runFRD,
}

func init() {
	FRDCmd.Flags().StringVar(&frdProject, "project", "", "Project name (default: taken from the BRD)")
	FRDCmd.Flags().IntVar(&frdVersion, "version", 0, "FRD version (default: the BRD's)")
	FRDCmd.Flags().BoolVar(&frdReview, "review", false, "Edit the EPICs in $EDITOR before rendering")
	FRDCmd.Flags().BoolVar(&genPreview, "preview", false, "Render the FRD as markdown in the terminal instead of writing it")
	FRDCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "Report destinations without writing")
	FRDCmd.Flags().StringP("output", "o", "html", outputUsage)
	FRDCmd.Flags().StringP("output-dir", "d", ".", "Output directory (- for stdout)")
	FRDCmd.Flags().Bool("save", false, "Record the document in the history database")
	FRDCmd.Flags().String("store", "", "History database path")
	addAIFlags(FRDCmd)
	addEngineFlags(FRDCmd)
}

func runFRD(cmd *cobra.Command, args []string) error {
	in, err := readBRD(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	if frdProject != "" {
		in.Project = frdProject
	}
	if frdVersion > 0 {
		in.Version = frdVersion
	}
	if err := in.Validate(); err != nil {
		return err
	}
	return generateAndWrite(cmd, []generator.Request{{Name: args[0], Input: in, Type: core.DocFRD}}, frdReview)
}

// readBRD loads a BRD document as FRD input.
func readBRD(stdin io.Reader, path string) (core.Input, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return core.Input{}, fmt.Errorf("failed to read BRD: %w", err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return core.Input{}, &generator.InputError{Path: path, Field: "brd", Message: "is empty"}
	}
	if !core.IsStructured(text) {
		return core.Input{}, &generator.InputError{Path: path, Field: "brd", Message: "has no EPIC-NN sections"}
	}

	return core.Input{
		Project: projectFromBRD(text, path),
		Version: versionFromBRD(text),
		BRDText: text,
	}, nil
}

// projectFromBRD reads the project name from the document title, falling
// back to the file name.
func projectFromBRD(text, path string) string {
	if m := htmlTitle.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if !strings.Contains(text, "<") {
		if m := mdTitle.FindStringSubmatch(text); m != nil && !strings.HasPrefix(strings.ToUpper(m[1]), "EPIC-") {
			return m[1]
		}
	}
	if path == "-" {
		return ""
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return generator.ProjectFromPath(brdFileSuffix.ReplaceAllString(base, ""))
}

var versionLine = regexp.MustCompile(`\bVersion\s+(\d+)\b`)

func versionFromBRD(text string) int {
	m := versionLine.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	var v int
	_, _ = fmt.Sscanf(m[1], "%d", &v)
	return v
}
