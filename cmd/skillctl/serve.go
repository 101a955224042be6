package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillctl/skillctl/pkg/lint"
	"github.com/skillctl/skillctl/pkg/presenter"
	"github.com/skillctl/skillctl/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the skill corpus over HTTP",
	Long: `Serve the skill corpus over a JSON HTTP API.

Endpoints:
  GET /api/skills              list skills (filter with ?category=)
  GET /api/skills/{name}       fetch one skill with its body
  GET /api/skills/{name}/lint  lint one skill
  GET /api/lint                lint the whole corpus
  GET /api/healthz             health check (also at /healthz)

Examples:
  skillctl serve
  skillctl serve --host 0.0.0.0 --port 8080`,
	Run: func(cmd *cobra.Command, _ []string) {
		serveHTTP(cmd)
	},
}

func init() {
	serveCmd.Flags().String("host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().Int("port", 7457, "Port to listen on")
	viper.BindPFlag("serve_host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("serve_port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

func serveHTTP(cmd *cobra.Command) {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	discovery, err := newDiscovery()
	if err != nil {
		presenter.Error(err, "Failed to initialize skill discovery")
		os.Exit(1)
	}

	config := &server.Config{
		Host: viper.GetString("serve_host"),
		Port: viper.GetInt("serve_port"),
	}

	srv, err := server.New(config, discovery, lint.New())
	if err != nil {
		presenter.Error(err, "Failed to initialize server")
		os.Exit(1)
	}

	presenter.Info(fmt.Sprintf("Serving skills on http://%s:%d", config.Host, config.Port))

	if err := srv.Start(ctx); err != nil {
		presenter.Error(err, "Server exited with error")
		os.Exit(1)
	}
}
