package usecases

import (
	"context"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"
	orbwkb "github.com/paulmach/orb/encoding/wkb"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/geo"
	"github.com/samirrijal/geoengine/internal/core/ports"
	"github.com/samirrijal/geoengine/internal/pkg/logging"
	"github.com/samirrijal/geoengine/internal/pkg/telemetry"
)

// LocationField is the only geometry column a vector layer can draw.
const LocationField = "location"

const maxLayerFeatures = 5000

// LayerService manages map layers and renders vector layer features.
type LayerService struct {
	layers   ports.LayerRepository
	partners ports.PartnerRepository
	settings *SettingsService
	cache    ports.CacheService
}

// NewLayerService creates a new LayerService. cache may be nil.
func NewLayerService(layers ports.LayerRepository, partners ports.PartnerRepository, settings *SettingsService, cache ports.CacheService) *LayerService {
	return &LayerService{layers: layers, partners: partners, settings: settings, cache: cache}
}

// ListRaster returns the raster layers of view ordered by sequence.
func (s *LayerService) ListRaster(ctx context.Context, view string) ([]domain.RasterLayer, error) {
	return s.layers.ListRaster(ctx, view)
}

// ListVector returns the vector layers of view ordered by sequence.
func (s *LayerService) ListVector(ctx context.Context, view string) ([]domain.VectorLayer, error) {
	return s.layers.ListVector(ctx, view)
}

// SaveRaster validates and stores a raster layer.
func (s *LayerService) SaveRaster(ctx context.Context, l *domain.RasterLayer) error {
	hasToken := false
	if l.Type == domain.RasterMapbox && s.settings != nil {
		token, err := s.settings.MapboxToken(ctx)
		if err != nil {
			return err
		}
		hasToken = token != ""
	}
	if err := l.Validate(hasToken); err != nil {
		return err
	}
	return s.layers.UpsertRaster(ctx, l)
}

// SaveVector validates and stores a vector layer.
func (s *LayerService) SaveVector(ctx context.Context, l *domain.VectorLayer) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if l.GeoField != LocationField {
		return fmt.Errorf("%w: geo_field %q is not a geometry field", domain.ErrInvalidLayer, l.GeoField)
	}
	if l.AttributeField != "" {
		if _, ok := partnerAttribute(&domain.Partner{}, l.AttributeField); !ok {
			return fmt.Errorf("%w: unknown attribute field %q", domain.ErrInvalidLayer, l.AttributeField)
		}
	}
	if err := s.layers.UpsertVector(ctx, l); err != nil {
		return err
	}
	bumpLayersGeneration(ctx, s.cache)
	return nil
}

// FeatureCollection renders the located partners of a vector layer as a
// GeoJSON FeatureCollection with a bbox. Rendered bytes are cached per layer
// until a location changes.
func (s *LayerService) FeatureCollection(ctx context.Context, layerID string) ([]byte, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanLayerFeatures)
	defer span.End()

	key := "layers:features:" + layerID + ":" + layersGeneration(ctx, s.cache)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil && len(data) > 0 {
			return data, nil
		}
	}

	layer, err := s.layers.GetVector(ctx, layerID)
	if err != nil {
		return nil, err
	}
	partners, err := s.partners.ListLocated(ctx, maxLayerFeatures)
	if err != nil {
		return nil, err
	}

	fc := orbjson.NewFeatureCollection()
	var bound orb.Bound
	for i := range partners {
		p := &partners[i]
		g, err := toOrb(p.Location)
		if err != nil {
			logging.FromContext(ctx).Warn("skipping partner geometry", "partner_id", p.ID, "error", err)
			continue
		}
		if g == nil {
			continue
		}

		f := orbjson.NewFeature(g)
		f.ID = p.ID
		f.Properties["name"] = p.Name
		f.Properties["layer"] = layer.Name
		if layer.AttributeField != "" {
			if v, ok := partnerAttribute(p, layer.AttributeField); ok {
				f.Properties["attribute"] = v
			}
		}
		fc.Append(f)

		if len(fc.Features) == 1 {
			bound = g.Bound()
		} else {
			bound = bound.Union(g.Bound())
		}
	}
	if len(fc.Features) > 0 {
		fc.BBox = orbjson.NewBBox(bound)
	}
	span.SetAttributes(attribute.Int("geoengine.features", len(fc.Features)))

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal features: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, data, featuresCacheTTL)
	}
	return data, nil
}

// toOrb converts through WKB; nil means the geometry is empty.
func toOrb(g geo.Geometry) (orb.Geometry, error) {
	if g.IsEmpty() {
		return nil, nil
	}
	data, err := g.WKB()
	if err != nil {
		return nil, err
	}
	return orbwkb.Unmarshal(data)
}

// partnerAttribute exposes the partner columns a layer may style by.
func partnerAttribute(p *domain.Partner, field string) (any, bool) {
	switch field {
	case "name":
		return p.Name, true
	case "city":
		return p.City, true
	case "zip":
		return p.Zip, true
	case "state_name":
		return p.StateName, true
	case "country_name":
		return p.CountryName, true
	case "country_code":
		return p.CountryCode, true
	case "latitude":
		return p.Latitude, true
	case "longitude":
		return p.Longitude, true
	case "date_localization":
		if p.DateLocalization == nil {
			return nil, true
		}
		return p.DateLocalization.Format("2006-01-02"), true
	case "id":
		if n, err := strconv.Atoi(p.ID); err == nil {
			return n, true
		}
		return p.ID, true
	}
	return nil, false
}
