package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/anthropics/codegraph/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the net/http JSON query service",
	Long: `serve starts the codegraph HTTP service: POST /build, POST /init,
POST /query/call-graph, POST /query/hierarchical-graph, POST
/query/snippet, POST /query/skeleton, POST /investigate, GET
/draw-call-graph, and GET /health. Each request names its own
project_dir; the service hydrates and caches one graph per project_id
in memory.

Examples:
  codegraph serve
  codegraph serve --addr :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	srv, err := httpapi.NewServer(cfg, sugar())
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         serveAddr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.PerFileParseTimeoutS) * time.Second * 200,
	}

	sugar().Infow("codegraph serve listening", "addr", serveAddr)
	return httpServer.ListenAndServe()
}
