package ports

import (
	"context"

	"github.com/samirrijal/geoengine/internal/core/domain"
)

// PartnerRepository persists partners and their locations.
type PartnerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Partner, error)
	UpsertBatch(ctx context.Context, partners []domain.Partner) error
	// UpdateLocation writes coordinates, localization date and geometry in one statement.
	UpdateLocation(ctx context.Context, id string, upd domain.LocationUpdate) error
	// FindWithin returns located partners inside b, nearest to center first.
	FindWithin(ctx context.Context, center domain.GeoPoint, b domain.Bounds, limit int) ([]domain.Partner, error)
	ListLocated(ctx context.Context, limit int) ([]domain.Partner, error)
}

// LayerRepository persists raster and vector layer configuration.
type LayerRepository interface {
	ListRaster(ctx context.Context, view string) ([]domain.RasterLayer, error)
	ListVector(ctx context.Context, view string) ([]domain.VectorLayer, error)
	GetVector(ctx context.Context, id string) (*domain.VectorLayer, error)
	UpsertRaster(ctx context.Context, l *domain.RasterLayer) error
	UpsertVector(ctx context.Context, l *domain.VectorLayer) error
}

// ParameterRepository is generic key/value configuration storage.
type ParameterRepository interface {
	// Get returns "" and no error when the key is unset.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
