package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/usecases"
)

type memLayers struct {
	raster []domain.RasterLayer
	vector []domain.VectorLayer
}

func (m *memLayers) ListRaster(ctx context.Context, view string) ([]domain.RasterLayer, error) {
	return m.raster, nil
}
func (m *memLayers) ListVector(ctx context.Context, view string) ([]domain.VectorLayer, error) {
	return m.vector, nil
}
func (m *memLayers) GetVector(ctx context.Context, id string) (*domain.VectorLayer, error) {
	return nil, domain.ErrNotFound
}
func (m *memLayers) UpsertRaster(ctx context.Context, l *domain.RasterLayer) error {
	m.raster = append(m.raster, *l)
	return nil
}
func (m *memLayers) UpsertVector(ctx context.Context, l *domain.VectorLayer) error {
	m.vector = append(m.vector, *l)
	return nil
}

type memParams map[string]string

func (m memParams) Get(ctx context.Context, key string) (string, error) { return m[key], nil }
func (m memParams) Set(ctx context.Context, key, value string) error {
	m[key] = value
	return nil
}

func TestSeed_DefaultLayersFile(t *testing.T) {
	f, err := loadSeedFile(filepath.Join("..", "..", "configs", "layers.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(f.Raster) != 2 || len(f.Vector) != 2 {
		t.Fatalf("unexpected layer counts %d/%d", len(f.Raster), len(f.Vector))
	}
	if f.Raster[1].Type != domain.RasterWMTS || f.Raster[1].MatrixSet != "21781" {
		t.Errorf("unexpected wmts layer %+v", f.Raster[1])
	}

	layers := &memLayers{}
	params := memParams{}
	settings := usecases.NewSettingsService(params, "", 4326)
	svc := usecases.NewLayerService(layers, nil, settings, nil)

	if err := seed(context.Background(), f, settings, svc); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(layers.raster) != 2 || len(layers.vector) != 2 {
		t.Errorf("expected all layers stored, got %d/%d", len(layers.raster), len(layers.vector))
	}
}

func TestSeed_MapboxNeedsToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layers.yaml")
	data := []byte("raster:\n  - name: Streets\n    type: mapbox\n    mapbox_style: mapbox/streets-v11\n    opacity: 1\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := loadSeedFile(path)
	if err != nil {
		t.Fatal(err)
	}
	params := memParams{}
	settings := usecases.NewSettingsService(params, "", 4326)
	svc := usecases.NewLayerService(&memLayers{}, nil, settings, nil)

	if err := seed(context.Background(), f, settings, svc); !errors.Is(err, domain.ErrInvalidLayer) {
		t.Fatalf("expected ErrInvalidLayer, got %v", err)
	}

	f.MapboxToken = "pk.seed"
	if err := seed(context.Background(), f, settings, svc); err != nil {
		t.Fatalf("seed with token: %v", err)
	}
	if params[usecases.MapboxTokenKey] != "pk.seed" {
		t.Errorf("token not stored")
	}
}

func TestLoadSeedFile_Missing(t *testing.T) {
	if _, err := loadSeedFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
