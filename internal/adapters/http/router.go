package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/geoengine/internal/pkg/metrics"
)

const (
	requestTimeout     = 15 * time.Second
	geolocalizeTimeout = 5 * time.Minute
)

// coordinatesSunset is when PUT /v1/partners/:id/coordinates goes away.
var coordinatesSunset = time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware([]DeprecatedRoute{{
		Method:      fiber.MethodPut,
		Path:        "/v1/partners/:id/coordinates",
		SunsetDate:  coordinatesSunset,
		Alternative: "/v1/partners/{id}/location",
	}}))

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	v1.Get("/partners", timeout.NewWithContext(ListLocatedPartnersHandler(deps), requestTimeout))
	v1.Get("/partners/nearby", timeout.NewWithContext(NearbyPartnersHandler(deps), requestTimeout))
	v1.Post("/partners/geolocalize", timeout.NewWithContext(GeolocalizeHandler(deps), geolocalizeTimeout))
	v1.Post("/partners/import", timeout.NewWithContext(ImportPartnersHandler(deps), time.Minute))
	v1.Get("/partners/:id", timeout.NewWithContext(GetPartnerHandler(deps), requestTimeout))
	v1.Put("/partners/:id/location", timeout.NewWithContext(SetPartnerLocationHandler(deps), requestTimeout))
	v1.Put("/partners/:id/coordinates", timeout.NewWithContext(SetPartnerCoordinatesHandler(deps), requestTimeout))

	v1.Get("/layers/raster", timeout.NewWithContext(ListRasterLayersHandler(deps), requestTimeout))
	v1.Post("/layers/raster", timeout.NewWithContext(CreateRasterLayerHandler(deps), requestTimeout))
	v1.Get("/layers/vector", timeout.NewWithContext(ListVectorLayersHandler(deps), requestTimeout))
	v1.Post("/layers/vector", timeout.NewWithContext(CreateVectorLayerHandler(deps), requestTimeout))
	v1.Get("/layers/vector/:id/features", timeout.NewWithContext(LayerFeaturesHandler(deps), requestTimeout))

	v1.Get("/settings", timeout.NewWithContext(GetSettingsHandler(deps), requestTimeout))
	v1.Put("/settings", timeout.NewWithContext(UpdateSettingsHandler(deps), requestTimeout))
	v1.Get("/session/info", timeout.NewWithContext(SessionInfoHandler(deps), requestTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app, deps.OpenAPIPath)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
