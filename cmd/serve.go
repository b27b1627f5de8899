package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dhabedank/brdgen/internal/server"
	"github.com/dhabedank/brdgen/internal/store"
	"github.com/spf13/cobra"
)

var serveNoHistory bool

// ServeCmd runs the HTTP form and JSON API.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the BRD/FRD generator over HTTP",
	Long: `Serve an HTML form and a JSON API:

  POST /api/generate        generate a BRD or FRD
  POST /api/classify        classify requirements text
  GET  /api/documents       list generated documents
  GET  /api/documents/{id}  fetch one document`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	ServeCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address")
	ServeCmd.Flags().String("store", "", "History database path")
	ServeCmd.Flags().BoolVar(&serveNoHistory, "no-history", false, "Do not record generated documents")
	addAIFlags(ServeCmd)
	addEngineFlags(ServeCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	gen, err := newGenerator(cfg, false)
	if err != nil {
		return err
	}

	var st *store.Store
	if !serveNoHistory {
		if st, err = store.Open(cfg.Store); err != nil {
			return err
		}
		defer st.Close()
	}

	srv, err := server.New(gen, st, log, cfg.Addr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
