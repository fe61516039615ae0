package endpoints

import (
	"github.com/cogc-planning/bulletin/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// Bulletin endpoints
		&ParseBulletinEndpoint{},

		// Catalog endpoints
		&GetCatalogEndpoint{},
		&InvalidateCatalogEndpoint{},
	}
}
