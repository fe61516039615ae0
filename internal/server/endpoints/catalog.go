package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/cogc-planning/bulletin/internal/api"
	"github.com/cogc-planning/bulletin/internal/catalog"
	"github.com/cogc-planning/bulletin/internal/svcctx"
)

// CatalogResponse lists the current service-code snapshot.
type CatalogResponse struct {
	Codes    []catalog.ServiceCode `json:"codes"`
	Degraded bool                  `json:"degraded"`
}

// GetCatalogEndpoint handles GET /api/catalog.
type GetCatalogEndpoint struct{}

var _ api.Endpoint = (*GetCatalogEndpoint)(nil)

func (e *GetCatalogEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/catalog", e.handler
}

func (e *GetCatalogEndpoint) RequiresInit() bool { return true }

func (e *GetCatalogEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	cache := svcctx.CatalogFrom(r.Context())
	if cache == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not initialized")
		return
	}

	snap := cache.Get(r.Context())
	writeJSON(w, http.StatusOK, CatalogResponse{
		Codes:    snap.Codes(),
		Degraded: cache.Degraded(),
	})
}

func (e *GetCatalogEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the service-code catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp CatalogResponse
			if err := client.Get(cmd.Context(), "/api/catalog", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// InvalidateCatalogEndpoint handles POST /api/catalog/invalidate. The next
// catalog read reloads from the store; in-flight parses keep their snapshot.
type InvalidateCatalogEndpoint struct{}

var _ api.Endpoint = (*InvalidateCatalogEndpoint)(nil)

func (e *InvalidateCatalogEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/catalog/invalidate", e.handler
}

func (e *InvalidateCatalogEndpoint) RequiresInit() bool { return true }

func (e *InvalidateCatalogEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	cache := svcctx.CatalogFrom(r.Context())
	if cache == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not initialized")
		return
	}

	cache.Invalidate()
	if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
		logger.Info("catalog cache invalidated")
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (e *InvalidateCatalogEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog-invalidate",
		Short: "Force a catalog reload on next use",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp map[string]string
			if err := client.Post(cmd.Context(), "/api/catalog/invalidate", nil, &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp["status"])
			return nil
		},
	}
}
