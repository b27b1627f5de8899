package cmd

import (
	"fmt"
	"strings"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/generator"
	"github.com/dhabedank/brdgen/internal/llm"
	"github.com/dhabedank/brdgen/internal/output"
	"github.com/dhabedank/brdgen/internal/store"
	"github.com/dhabedank/brdgen/internal/tui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	historyProject string
	historyType    string
	historyLimit   int
	historyBody    bool
	renderType     string
)

// HistoryCmd inspects the document history database.
var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show and re-render saved documents",
	Long: `Documents generated with --save (or by "brdgen serve") are recorded in a
SQLite database, ~/.brdgen/history.db unless store is configured.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved document's metadata and input",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRenderCmd = &cobra.Command{
	Use:   "render <id>",
	Short: "Re-render a saved document's input with the current rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRender,
}

func init() {
	HistoryCmd.PersistentFlags().String("store", "", "History database path")

	historyListCmd.Flags().StringVar(&historyProject, "project", "", "Only this project")
	historyListCmd.Flags().StringVarP(&historyType, "type", "t", "", "Only this document type (brd/frd)")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum rows")

	historyShowCmd.Flags().BoolVar(&historyBody, "body", false, "Print the stored document body instead")

	historyRenderCmd.Flags().StringVarP(&renderType, "type", "t", "", "Document type (default: the saved one)")
	historyRenderCmd.Flags().StringP("output", "o", "html", outputUsage)
	historyRenderCmd.Flags().StringP("output-dir", "d", "-", "Output directory (- for stdout)")
	addEngineFlags(historyRenderCmd)

	HistoryCmd.AddCommand(historyListCmd, historyShowCmd, historyRenderCmd)
}

func openHistory(cmd *cobra.Command) (*store.Store, Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	st, err := store.Open(cfg.Store)
	return st, cfg, err
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	st, _, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var t core.DocType
	if historyType != "" {
		if t, err = core.ParseDocType(historyType); err != nil {
			return err
		}
	}
	recs, err := st.List(contextOf(cmd), store.Filter{Project: historyProject, Type: t, Limit: historyLimit})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(w, tui.HelpStyle.Render("No saved documents."))
		return nil
	}
	fmt.Fprintln(w, tui.SubtitleStyle.Render(fmt.Sprintf("%-15s %-4s %-24s %-4s %-11s %-6s %s",
		"ID", "TYPE", "PROJECT", "VER", "DOMAIN", "SOURCE", "CREATED")))
	for _, r := range recs {
		fmt.Fprintf(w, "%s %-4s %-24s %-4d %-11s %-6s %s\n",
			tui.IDStyle.Render(fmt.Sprintf("%-15s", r.ID)),
			strings.ToUpper(string(r.Type)),
			truncate(r.Project, 24),
			r.Version,
			r.Domain,
			r.Source,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	st, _, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.Get(contextOf(cmd), args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if historyBody {
		fmt.Fprint(w, rec.Body)
		return nil
	}
	fmt.Fprintf(w, "%s %s %s v%d\n", tui.IDStyle.Render(rec.ID), strings.ToUpper(string(rec.Type)), rec.Project, rec.Version)
	fmt.Fprintf(w, "Domain:  %s\n", tui.DomainStyle.Render(string(rec.Domain)))
	fmt.Fprintf(w, "Format:  %s\nSource:  %s\nCreated: %s\n", rec.Format, rec.Source, rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if rec.Input != nil {
		data, err := yaml.Marshal(rec.Input)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%s\n%s", tui.SubtitleStyle.Render("Input:"), data)
	}
	return nil
}

func runHistoryRender(cmd *cobra.Command, args []string) error {
	st, cfg, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := contextOf(cmd)
	rec, err := st.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if rec.Input == nil {
		return fmt.Errorf("document %s has no stored input", rec.ID)
	}

	t := rec.Type
	if renderType != "" {
		if t, err = core.ParseDocType(renderType); err != nil {
			return err
		}
	}
	adapter, err := output.ForName(cfg.Output)
	if err != nil {
		return err
	}

	cfg.AI = llm.ProviderOff
	gen, err := newGenerator(cfg, false)
	if err != nil {
		return err
	}
	res, err := gen.Generate(ctx, generator.Request{Name: rec.ID, Input: *rec.Input, Type: t, Format: formatFor(adapter)})
	if err != nil {
		return err
	}
	outCfg := output.Config{Dir: "-", Stdout: cmd.OutOrStdout()}
	if cmd.Flags().Changed("output-dir") {
		outCfg.Dir = cfg.OutputDir
	}
	if outCfg.Dir == "-" {
		_, err = adapter.Write(ctx, res, outCfg)
		return err
	}
	return writeResults(ctx, cmd, gen.Engine(), []*generator.Result{res}, adapter, outCfg, nil, cfg.Output)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
