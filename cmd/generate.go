package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/generator"
	"github.com/dhabedank/brdgen/internal/llm"
	"github.com/dhabedank/brdgen/internal/output"
	"github.com/dhabedank/brdgen/internal/render"
	"github.com/dhabedank/brdgen/internal/store"
	"github.com/dhabedank/brdgen/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// inputFlags describes a project inline instead of through a YAML file.
type inputFlags struct {
	project      string
	version      int
	scope        string
	objectives   string
	budget       string
	requirements string
	assumptions  string
	constraints  string
	validations  string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.project, "project", "", "Project name")
	cmd.Flags().IntVar(&f.version, "version", 0, "Document version (default 1)")
	cmd.Flags().StringVar(&f.scope, "scope", "", "Project scope")
	cmd.Flags().StringVar(&f.objectives, "objectives", "", "Business objectives (lines or ; separated)")
	cmd.Flags().StringVar(&f.budget, "budget", "", "Budget statement")
	cmd.Flags().StringVarP(&f.requirements, "requirements", "r", "", "Brief requirements, one per line (@file reads a file)")
	cmd.Flags().StringVar(&f.assumptions, "assumptions", "", "Assumptions")
	cmd.Flags().StringVar(&f.constraints, "constraints", "", "Constraints and risks")
	cmd.Flags().StringVar(&f.validations, "validations", "", "Validations replacing the generated ones")
}

func (f *inputFlags) set() bool {
	return f.project != "" || f.requirements != "" || f.scope != ""
}

// apply overwrites fields of in with every flag given a value. Unset flags
// leave the file's values alone.
func (f *inputFlags) apply(in *core.Input) error {
	reqs, err := readAt(f.requirements)
	if err != nil {
		return err
	}
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&in.Project, f.project)
	override(&in.Scope, f.scope)
	override(&in.Objectives, f.objectives)
	override(&in.Budget, f.budget)
	override(&in.BriefRequirements, reqs)
	override(&in.Assumptions, f.assumptions)
	override(&in.Constraints, f.constraints)
	override(&in.Validations, f.validations)
	if f.version > 0 {
		in.Version = f.version
	}
	return in.Validate()
}

// readAt returns s, or the contents of the file when s is "@path".
func readAt(s string) (string, error) {
	if !strings.HasPrefix(s, "@") {
		return s, nil
	}
	data, err := os.ReadFile(s[1:])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s[1:], err)
	}
	return string(data), nil
}

var (
	genInput    inputFlags
	genType     string
	genPreview  bool
	genReview   bool
	genDryRun   bool
	genParallel int
)

// GenerateCmd generates BRDs (or FRDs) from project input files.
var GenerateCmd = &cobra.Command{
	Use:   "generate [input.yaml ...]",
	Short: "Generate a BRD or FRD from project input",
	Long: `Generate a Business (or Functional) Requirements Document.

Input comes from YAML files with the keys project, version, scope,
objectives, budget, requirements, assumptions, constraints, validations
and brd, or from the inline flags. "-" reads YAML from stdin.

The local engine classifies the requirements into a domain, groups them
into EPICs and derives user stories and validation criteria. With --ai a
model drafts the document instead; replies missing the expected sections
fall back to the local engine.`,
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().StringVarP(&genType, "type", "t", "brd", "Document type (brd/frd)")
	GenerateCmd.Flags().StringP("output", "o", "html", outputUsage)
	GenerateCmd.Flags().StringP("output-dir", "d", ".", "Output directory (- for stdout)")
	GenerateCmd.Flags().BoolVar(&genPreview, "preview", false, "Render the document as markdown in the terminal instead of writing it")
	GenerateCmd.Flags().BoolVar(&genReview, "review", false, "Edit the synthesized EPICs in $EDITOR before rendering")
	GenerateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "Report destinations without writing")
	GenerateCmd.Flags().IntVarP(&genParallel, "parallel", "j", 4, "Documents generated concurrently")
	GenerateCmd.Flags().Bool("save", false, "Record the document in the history database")
	GenerateCmd.Flags().String("store", "", "History database path")
	addAIFlags(GenerateCmd)
	addEngineFlags(GenerateCmd)
	genInput.register(GenerateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	docType, err := core.ParseDocType(genType)
	if err != nil {
		return err
	}
	reqs, err := buildRequests(cmd.InOrStdin(), args, &genInput, docType)
	if err != nil {
		return err
	}
	return generateAndWrite(cmd, reqs, genReview)
}

// buildRequests loads every input file, or the inline flags when no file
// is given.
func buildRequests(stdin io.Reader, args []string, flags *inputFlags, t core.DocType) ([]generator.Request, error) {
	if len(args) == 0 {
		if !flags.set() {
			return nil, fmt.Errorf("no input: pass a YAML file or --project/--requirements")
		}
		var in core.Input
		if err := flags.apply(&in); err != nil {
			return nil, err
		}
		return []generator.Request{{Name: "flags", Input: in, Type: t}}, nil
	}

	reqs := make([]generator.Request, 0, len(args))
	for _, path := range args {
		var (
			in  core.Input
			err error
		)
		if path == "-" {
			var data []byte
			if data, err = io.ReadAll(stdin); err == nil {
				in, err = generator.DecodeInput(data)
			}
		} else {
			in, err = generator.LoadInput(path)
		}
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			if err := flags.apply(&in); err != nil {
				return nil, err
			}
		}
		reqs = append(reqs, generator.Request{Name: path, Input: in, Type: t})
	}
	return reqs, nil
}

// generateAndWrite runs reqs through the generator and writes each result
// with the configured output adapter.
func generateAndWrite(cmd *cobra.Command, reqs []generator.Request, withReview bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if withReview && len(reqs) != 1 {
		return fmt.Errorf("--review takes a single input")
	}

	adapter, err := output.ForName(cfg.Output)
	if err != nil {
		return err
	}
	format := formatFor(adapter)
	if genPreview {
		format = render.Markdown
	}
	for i := range reqs {
		reqs[i].Format = format
	}

	gen, err := newGenerator(cfg, withReview)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := runRequests(ctx, cmd, gen, reqs, cfg, withReview)
	if err != nil {
		return err
	}

	if genPreview {
		return preview(cmd.OutOrStdout(), results)
	}

	var st *store.Store
	if cfg.Save && !genDryRun {
		if st, err = store.Open(cfg.Store); err != nil {
			return err
		}
		defer st.Close()
	}
	outCfg := output.Config{Dir: cfg.OutputDir, Stdout: cmd.OutOrStdout(), DryRun: genDryRun}
	return writeResults(ctx, cmd, gen.Engine(), results, adapter, outCfg, st, cfg.Output)
}

// runRequests generates one document (behind a spinner while an AI
// provider runs) or many through the batch runner.
func runRequests(ctx context.Context, cmd *cobra.Command, gen *generator.Generator, reqs []generator.Request, cfg Config, withReview bool) ([]*generator.Result, error) {
	if len(reqs) > 1 {
		log.Info("generating documents", zap.Int("count", len(reqs)), zap.Int("parallel", genParallel))
		return gen.GenerateAll(ctx, reqs, genParallel)
	}

	var res *generator.Result
	task := func(ctx context.Context) error {
		var err error
		res, err = gen.Generate(ctx, reqs[0])
		return err
	}
	if cfg.AI == llm.ProviderOff || withReview {
		if err := task(ctx); err != nil {
			return nil, err
		}
		return []*generator.Result{res}, nil
	}

	label := fmt.Sprintf("Generating %s for %s", strings.ToUpper(string(reqs[0].Type)), reqs[0].Name)
	if err := tui.RunWithSpinner(ctx, cmd.ErrOrStderr(), label, task); err != nil {
		return nil, err
	}
	return []*generator.Result{res}, nil
}

// writeResults writes each result, records it in st when set, and prints a
// summary. Summaries go to stderr when the document itself goes to stdout.
func writeResults(ctx context.Context, cmd *cobra.Command, engine *core.Engine, results []*generator.Result, adapter output.Adapter, outCfg output.Config, st *store.Store, formatName string) error {
	status := cmd.OutOrStdout()
	if outCfg.Dir == "-" {
		status = cmd.ErrOrStderr()
	}

	for _, res := range results {
		wr, err := adapter.Write(ctx, res, outCfg)
		if err != nil {
			return fmt.Errorf("%s: %w", res.Name, err)
		}
		if st != nil {
			saved, err := output.NewStoreAdapter(st, formatName).Write(ctx, res, outCfg)
			if err != nil {
				return fmt.Errorf("%s: save history: %w", res.Name, err)
			}
			log.Info("document saved", zap.String("id", saved.ID), zap.String("project", res.Document.Project))
		}

		path := wr.Path
		if outCfg.DryRun {
			path += " (dry run)"
		}
		fmt.Fprintln(status, tui.RenderSummary(summaryFor(res, engine.Profile(res.Document.Domain).Label, path, wr.Bytes)))
	}
	return nil
}

func summaryFor(res *generator.Result, label, path string, n int) tui.Summary {
	return tui.Summary{
		Project:     res.Document.Project,
		Version:     res.Document.Version,
		Type:        res.Document.Type,
		Domain:      res.Document.Domain,
		DomainLabel: label,
		Epics:       res.Analysis.Epics,
		Stories:     len(res.Stories),
		Source:      res.Source,
		Adapter:     res.Adapter,
		Fallback:    res.Fallback,
		Path:        path,
		Bytes:       n,
		Model:       res.Model,
		PromptChars: res.PromptChars,
		ReplyChars:  res.ReplyChars,
	}
}

// formatFor picks the render format an output adapter consumes.
func formatFor(a output.Adapter) render.Format {
	if f, ok := a.(*output.FileAdapter); ok {
		return f.Format()
	}
	return render.HTML
}

// preview renders markdown documents through glamour.
func preview(w io.Writer, results []*generator.Result) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	for _, res := range results {
		out, err := r.Render(res.Document.HTML)
		if err != nil {
			return fmt.Errorf("preview %s: %w", res.Name, err)
		}
		fmt.Fprint(w, out)
	}
	return nil
}
