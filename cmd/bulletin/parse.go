package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cogc-planning/bulletin/internal/api"
	"github.com/cogc-planning/bulletin/internal/bulletin"
	"github.com/cogc-planning/bulletin/internal/catalog"
	"github.com/cogc-planning/bulletin/internal/config"
	"github.com/cogc-planning/bulletin/internal/providers"
)

var parseOffline bool

// parseCmd runs the full pipeline locally without a server. Useful for
// one-off bulletins and for checking a config before deploying it.
var parseCmd = &cobra.Command{
	Use:   "parse <bulletin.pdf>",
	Short: "Parse a bulletin PDF locally (no server required)",
	Long: `Parse a bulletin PDF using the configured providers and print the result.

With --offline no OCR or LLM calls are made; only the PDF text layer is used.
The catalog database is optional: without a reachable store the built-in
fallback subset of service codes is used.

Examples:
  bulletin parse planning.pdf
  bulletin parse planning.pdf --offline -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		var ocr providers.OCRProvider
		var llm providers.LLMClient
		if !parseOffline {
			registry := providers.NewRegistry()
			registry.SetLogger(logger)
			registry.Reload(cfg.ToProviderRegistryConfig())

			if name := cfg.Defaults.OCRProvider; name != "" {
				if p, err := registry.GetOCR(name); err == nil {
					ocr = p
				} else {
					logger.Warn("OCR provider unavailable, using text layer", "provider", name, "error", err)
				}
			}
			if name := cfg.Defaults.LLMProvider; name != "" {
				if c, err := registry.GetLLM(name); err == nil {
					llm = c
				}
			}
		}

		var store catalog.Store
		if dsn := config.ResolveEnvVars(cfg.Catalog.DSN); dsn != "" {
			pg, err := catalog.NewPostgresStore(ctx, dsn)
			if err != nil {
				logger.Warn("catalog database unavailable, using built-in fallback", "error", err)
			} else {
				defer pg.Close()
				store = pg
			}
		}
		cache := catalog.NewCache(store, cfg.CatalogTTL(), logger)

		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		pipeline := bulletin.NewPipeline(logger, ocr, llm, cache, cfg.ToOptions())
		result := pipeline.Parse(ctx, content)

		if err := api.Output(result); err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("parse failed: %s", result.Error)
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseOffline, "offline", false, "Skip OCR and LLM providers, use the PDF text layer only")

	rootCmd.AddCommand(parseCmd)
}
