package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/samirrijal/geoengine/internal/adapters/postgres"
	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/geo"
	"github.com/samirrijal/geoengine/internal/core/usecases"
)

// SeedFile is the layout of the layers file.
type SeedFile struct {
	MapboxToken string               `yaml:"mapbox_token"`
	Raster      []domain.RasterLayer `yaml:"raster"`
	Vector      []domain.VectorLayer `yaml:"vector"`
}

func loadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// seed stores the token first so that mapbox layers validate.
func seed(ctx context.Context, f *SeedFile, settings *usecases.SettingsService, layers *usecases.LayerService) error {
	if f.MapboxToken != "" {
		if err := settings.SetMapboxToken(ctx, f.MapboxToken); err != nil {
			return fmt.Errorf("mapbox token: %w", err)
		}
	}
	for i := range f.Raster {
		if err := layers.SaveRaster(ctx, &f.Raster[i]); err != nil {
			return fmt.Errorf("raster layer %q: %w", f.Raster[i].Name, err)
		}
	}
	for i := range f.Vector {
		if err := layers.SaveVector(ctx, &f.Vector[i]); err != nil {
			return fmt.Errorf("vector layer %q: %w", f.Vector[i].Name, err)
		}
	}
	return nil
}

func (c *SeedCommand) Execute(args []string) error {
	f, err := loadSeedFile(c.File)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	settings := usecases.NewSettingsService(postgres.NewParamRepo(db), "", geo.DefaultSRID)
	layers := usecases.NewLayerService(postgres.NewLayerRepo(db), postgres.NewPartnerRepo(db), settings, nil)
	if err := seed(ctx, f, settings, layers); err != nil {
		return err
	}

	slog.Info("layers seeded", "raster", len(f.Raster), "vector", len(f.Vector))
	return nil
}
