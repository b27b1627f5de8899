package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/render"
	"github.com/dhabedank/brdgen/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchType     string
	watchFormat   string
	watchDebounce time.Duration
)

// WatchCmd regenerates documents whenever input files change.
var WatchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Regenerate documents when input YAML files change",
	Long: `Watch a directory and regenerate <name>.html (or <name>.md) next to
every <name>.yaml that is created or saved. Bursts of writes to one file
are coalesced.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	WatchCmd.Flags().StringVarP(&watchType, "type", "t", "brd", "Document type (brd/frd)")
	WatchCmd.Flags().StringVarP(&watchFormat, "format", "f", "html", "Render format (html/markdown)")
	WatchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before regenerating")
	addAIFlags(WatchCmd)
	addEngineFlags(WatchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	docType, err := core.ParseDocType(watchType)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(watchFormat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	gen, err := newGenerator(cfg, false)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(args[0], watcher.Regenerate(gen, docType, format),
		watcher.WithDebounce(watchDebounce),
		watcher.WithLogger(log),
	)
	log.Info("watching", zap.String("dir", args[0]), zap.String("type", string(docType)))
	err = w.Run(ctx)
	stats := w.Stats()
	log.Info("watch stopped", zap.Int64("runs", stats.Runs), zap.Int64("errors", stats.Errors))
	return err
}
