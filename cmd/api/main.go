package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geoengine/internal/adapters/http"
	natsadapter "github.com/samirrijal/geoengine/internal/adapters/nats"
	"github.com/samirrijal/geoengine/internal/adapters/nominatim"
	"github.com/samirrijal/geoengine/internal/adapters/postgres"
	"github.com/samirrijal/geoengine/internal/adapters/valkey"
	"github.com/samirrijal/geoengine/internal/core/geo"
	"github.com/samirrijal/geoengine/internal/core/ports"
	"github.com/samirrijal/geoengine/internal/core/usecases"
	"github.com/samirrijal/geoengine/internal/pkg/config"
	"github.com/samirrijal/geoengine/internal/pkg/logging"
	"github.com/samirrijal/geoengine/internal/pkg/metrics"
	"github.com/samirrijal/geoengine/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("geoengine-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	// Geometry support is mandatory: refuse to start without it.
	if err := geo.Probe(); err != nil {
		log.Fatalf("geometry support: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	postgisVersion, err := db.CheckPostGIS(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	slog.Info("postgis ready", "version", postgisVersion)

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Cache (optional)
	var cache ports.CacheService
	vk, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		cache = vk
		defer vk.Close()
	}

	// NATS (optional)
	var (
		publisher ports.EventPublisher
		natsConn  *nats.Conn
	)
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		publisher = pub
		natsConn = pub.Conn()
		defer pub.Close()
	}

	geocoder := nominatim.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)

	partnerRepo := postgres.NewPartnerRepo(db)
	sync := cfg.Geoengine.SyncMode()
	settings := usecases.NewSettingsService(postgres.NewParamRepo(db), version, cfg.Geoengine.SRID)

	deps := &http.Dependencies{
		Partners:    usecases.NewPartnerService(partnerRepo, publisher, cache, sync),
		Geolocalize: usecases.NewGeolocalizeService(partnerRepo, geocoder, publisher, cache),
		Imports:     usecases.NewImportService(partnerRepo, cache, sync),
		Layers:      usecases.NewLayerService(postgres.NewLayerRepo(db), partnerRepo, settings, cache),
		Settings:    settings,
		NATS:        natsConn,
		DB:          db,
		Cache:       vk,
		Version:     version,
		OpenAPIPath: os.Getenv("OPENAPI_PATH"),
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    16 * 1024 * 1024, // CSV imports
		AppName:      "GeoEngine API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "partner_sync", sync, "srid", cfg.Geoengine.SRID)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
