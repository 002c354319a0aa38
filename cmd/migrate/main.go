package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/jessevdk/go-flags"

	"github.com/samirrijal/geoengine/internal/adapters/postgres"
	"github.com/samirrijal/geoengine/internal/pkg/config"
	"github.com/samirrijal/geoengine/internal/pkg/logging"
)

type Options struct {
	LogLevel string `long:"log-level" env:"LOG_LEVEL" description:"Log level" default:"info"`
}

var opts Options

// UpCommand applies every migration file in lexical order.
type UpCommand struct {
	Dir string `short:"d" long:"dir" description:"Migrations directory" default:"migrations"`
}

// CheckCommand verifies the database has PostGIS.
type CheckCommand struct{}

// SeedCommand loads layers and settings from a YAML file.
type SeedCommand struct {
	File string `short:"l" long:"layers" description:"Layers file" default:"configs/layers.yaml"`
}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		logging.Setup(opts.LogLevel, "json")
		return cmd.Execute(args)
	}
	mustAdd(parser, "up", "Apply migrations", &UpCommand{})
	mustAdd(parser, "check", "Check PostGIS availability", &CheckCommand{})
	mustAdd(parser, "seed", "Seed map layers", &SeedCommand{})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func mustAdd(p *flags.Parser, name, short string, cmd any) {
	if _, err := p.AddCommand(name, short, "", cmd); err != nil {
		log.Fatalf("register %s: %v", name, err)
	}
}

func connect(ctx context.Context) (*postgres.DB, error) {
	cfg, err := config.Load("geoengine-migrate")
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return postgres.New(ctx, cfg.Database.DSN(), 2)
}

func (c *UpCommand) Execute(args []string) error {
	ctx := context.Background()
	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	files, err := filepath.Glob(filepath.Join(c.Dir, "*.sql"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations in %s", c.Dir)
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		slog.Info("migration applied", "file", f)
	}

	slog.Info("all migrations applied", "count", len(files))
	return nil
}

func (c *CheckCommand) Execute(args []string) error {
	ctx := context.Background()
	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := db.CheckPostGIS(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("postgis %s\n", version)
	return nil
}
