package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/geoengine/internal/adapters/nats"
	"github.com/samirrijal/geoengine/internal/adapters/nominatim"
	"github.com/samirrijal/geoengine/internal/adapters/postgres"
	"github.com/samirrijal/geoengine/internal/adapters/valkey"
	"github.com/samirrijal/geoengine/internal/core/geo"
	"github.com/samirrijal/geoengine/internal/core/ports"
	"github.com/samirrijal/geoengine/internal/core/usecases"
	"github.com/samirrijal/geoengine/internal/pkg/config"
	"github.com/samirrijal/geoengine/internal/pkg/logging"
	"github.com/samirrijal/geoengine/internal/workflows"
)

// The geolocalizer runs the Temporal worker for GeolocalizeWorkflow and turns
// queued NATS batches into workflow executions.
func main() {
	cfg, err := config.Load("geoengine-geolocalizer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	if err := geo.Probe(); err != nil {
		log.Fatalf("geometry support: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var cache ports.CacheService
	if vk, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, cache invalidation disabled", "error", err)
	} else {
		cache = vk
		defer vk.Close()
	}

	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats publisher unavailable", "error", err)
	} else {
		publisher = pub
		defer pub.Close()
	}

	geocoder := nominatim.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	svc := usecases.NewGeolocalizeService(postgres.NewPartnerRepo(db), geocoder, publisher, cache)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	taskQueue := cfg.Temporal.TaskQueue
	if taskQueue == "" {
		taskQueue = workflows.TaskQueue
	}

	w := worker.New(c, taskQueue, worker.Options{
		// Nominatim's usage policy allows one request per second.
		MaxConcurrentActivityExecutionSize: 1,
	})
	w.RegisterWorkflow(workflows.GeolocalizeWorkflow)
	w.RegisterActivity(&workflows.GeolocalizeActivities{Geolocalizer: svc})

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeGeolocalizeRequests(ctx, func(ctx context.Context, ids []string) error {
		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:                       workflows.WorkflowID(ids),
			TaskQueue:                taskQueue,
			WorkflowExecutionTimeout: time.Duration(len(ids)+1) * time.Minute,
		}, workflows.GeolocalizeWorkflow, workflows.GeolocalizeInput{PartnerIDs: ids})
		if err != nil {
			return err
		}
		slog.Info("geolocalize workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "partners", len(ids))
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("geolocalizer worker started", "task_queue", taskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
