package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cogc-planning/bulletin/internal/config"
	"github.com/cogc-planning/bulletin/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bulletin server",
	Long: `Start the bulletin HTTP server.

The server provides:
  - /health               - Basic server health check
  - /ready                - Readiness check (includes catalog store status)
  - /status               - Detailed status (providers, catalog)
  - /api/bulletins/parse  - Parse an uploaded bulletin PDF
  - /api/catalog          - List the service-code catalog

Examples:
  bulletin serve                    # Start on default port 8080
  bulletin serve --port 3000        # Start on custom port
  bulletin serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		mgr.WatchConfig()

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: mgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
