package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geoengine/internal/adapters/postgres"
	"github.com/samirrijal/geoengine/internal/adapters/valkey"
	"github.com/samirrijal/geoengine/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Partners    *usecases.PartnerService
	Geolocalize *usecases.GeolocalizeService
	Imports     *usecases.ImportService
	Layers      *usecases.LayerService
	Settings    *usecases.SettingsService
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache
	Version     string
	// OpenAPIPath is served at /docs/openapi.yaml; defaults to api/openapi.yaml.
	OpenAPIPath string
}
