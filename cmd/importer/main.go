package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"

	"github.com/jessevdk/go-flags"

	"github.com/samirrijal/geoengine/internal/adapters/postgres"
	"github.com/samirrijal/geoengine/internal/adapters/valkey"
	"github.com/samirrijal/geoengine/internal/core/fieldconv"
	"github.com/samirrijal/geoengine/internal/core/geo"
	"github.com/samirrijal/geoengine/internal/core/ports"
	"github.com/samirrijal/geoengine/internal/core/usecases"
	"github.com/samirrijal/geoengine/internal/pkg/config"
	"github.com/samirrijal/geoengine/internal/pkg/logging"
)

type Options struct {
	Kind        string `short:"k" long:"kind"        env:"IMPORT_KIND" description:"Geometry kind of the location column (partners store points)" default:"point"`
	Concurrency int    `short:"p" long:"concurrency" description:"Files imported in parallel" default:"4"`
	LogLevel    string `long:"log-level" env:"LOG_LEVEL" description:"Log level" default:"info"`

	Args struct {
		Files []string `positional-arg-name:"FILE" required:"1"`
	} `positional-args:"yes"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	logging.Setup(opts.LogLevel, "json")

	kind, err := fieldconv.ParseFieldKind(opts.Kind)
	if err != nil {
		log.Fatalf("kind: %v", err)
	}
	if err := geo.Probe(); err != nil {
		log.Fatalf("geometry support: %v", err)
	}

	cfg, err := config.Load("geoengine-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var cache ports.CacheService
	if vk, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, cached layers may be stale", "error", err)
	} else {
		cache = vk
		defer vk.Close()
	}

	svc := usecases.NewImportService(postgres.NewPartnerRepo(db), cache, cfg.Geoengine.SyncMode())

	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	sem := make(chan struct{}, opts.Concurrency)

	for _, path := range opts.Args.Files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rows, err := importFile(ctx, svc, path, kind)
			if err != nil {
				slog.Error("import failed", "file", path, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			slog.Info("file imported", "file", path, "rows", rows)
		}(path)
	}
	wg.Wait()

	if failed > 0 {
		log.Fatalf("%d of %d files failed", failed, len(opts.Args.Files))
	}
	slog.Info("import complete", "files", len(opts.Args.Files))
}

func importFile(ctx context.Context, svc *usecases.ImportService, path string, kind fieldconv.FieldKind) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	res, err := svc.ImportCSV(ctx, f, kind)
	if err != nil {
		return 0, err
	}
	return res.Rows, nil
}
