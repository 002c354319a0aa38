package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/geo"
	"github.com/samirrijal/geoengine/internal/core/ports"
	"github.com/samirrijal/geoengine/internal/pkg/geospatial"
	"github.com/samirrijal/geoengine/internal/pkg/logging"
	"github.com/samirrijal/geoengine/internal/pkg/metrics"
)

// PartnerService handles partner location business logic.
type PartnerService struct {
	partners  ports.PartnerRepository
	publisher ports.EventPublisher
	cache     ports.CacheService
	sync      domain.SyncMode
}

// NewPartnerService creates a new PartnerService. publisher and cache may be nil.
func NewPartnerService(partners ports.PartnerRepository, publisher ports.EventPublisher, cache ports.CacheService, sync domain.SyncMode) *PartnerService {
	if sync == "" {
		sync = domain.SyncCoordinates
	}
	return &PartnerService{partners: partners, publisher: publisher, cache: cache, sync: sync}
}

// SyncMode returns the configured derivation direction.
func (s *PartnerService) SyncMode() domain.SyncMode { return s.sync }

// GetByID returns a single partner.
func (s *PartnerService) GetByID(ctx context.Context, id string) (*domain.Partner, error) {
	key := partnerCacheKey(id)
	var cached domain.Partner
	if cachedJSON(ctx, s.cache, "partner", key, &cached) {
		return &cached, nil
	}

	p, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	storeJSON(ctx, s.cache, key, p, partnerCacheTTL)
	return p, nil
}

// SetLocation normalizes value and stores it as the partner location.
// In geometry sync mode the latitude/longitude columns are derived from it.
func (s *PartnerService) SetLocation(ctx context.Context, id string, value any, preferWKB bool) (*domain.Partner, error) {
	loc, err := normalizeCounted(value, preferWKB)
	if err != nil {
		return nil, err
	}
	if !loc.IsEmpty() && loc.Kind() != geo.KindPoint {
		metrics.NormalizeErrors.WithLabelValues("kind").Inc()
		return nil, &geo.FormatError{Encoding: encodingOf(value, preferWKB), Err: fmt.Errorf("%w: got %s", geo.ErrNotPoint, loc.Kind())}
	}

	p, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	upd := domain.LocationUpdate{
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		DateLocalization: p.DateLocalization,
		Location:         loc,
	}
	if s.sync == domain.SyncGeometry {
		upd.Latitude, upd.Longitude, err = geo.LatLonFromPoint(loc)
		if err != nil {
			return nil, err
		}
	}
	return s.apply(ctx, p, upd, "location")
}

// SetCoordinates stores the legacy latitude/longitude columns.
// In coordinates sync mode the location is derived from them.
func (s *PartnerService) SetCoordinates(ctx context.Context, id string, lat, lon float64) (*domain.Partner, error) {
	if err := (domain.GeoPoint{Lat: lat, Lon: lon}).Validate(); err != nil {
		return nil, err
	}

	p, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	upd := domain.LocationUpdate{
		Latitude:         lat,
		Longitude:        lon,
		DateLocalization: p.DateLocalization,
		Location:         p.Location,
	}
	if s.sync == domain.SyncCoordinates {
		upd.Location = geo.PointFromLatLon(lat, lon)
	}
	return s.apply(ctx, p, upd, "coordinates")
}

func (s *PartnerService) apply(ctx context.Context, p *domain.Partner, upd domain.LocationUpdate, source string) (*domain.Partner, error) {
	if err := s.partners.UpdateLocation(ctx, p.ID, upd); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	invalidateLocation(ctx, s.cache, p.ID)

	p.Latitude, p.Longitude = upd.Latitude, upd.Longitude
	p.DateLocalization = upd.DateLocalization
	p.Location = upd.Location

	publishLocated(ctx, s.publisher, p, source)
	return p, nil
}

// ListLocated returns partners that have a location.
func (s *PartnerService) ListLocated(ctx context.Context, limit int) ([]domain.Partner, error) {
	if limit <= 0 || limit > maxLayerFeatures {
		limit = maxLayerFeatures
	}
	return s.partners.ListLocated(ctx, limit)
}

// FindNearby returns located partners within radiusMeters of center, nearest first.
func (s *PartnerService) FindNearby(ctx context.Context, center domain.GeoPoint, radiusMeters float64, limit int) ([]domain.Partner, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", domain.ErrInvalidInput)
	}

	// The bounding box is a superset of the circle and candidates come back
	// nearest first; over-fetch so the haversine cut still leaves up to limit
	// results.
	candidates, err := s.partners.FindWithin(ctx, center, geospatial.BoundingBox(center, radiusMeters), limit*2)
	if err != nil {
		return nil, err
	}

	nearby := candidates[:0]
	for _, p := range candidates {
		lat, lon, err := geo.LatLonFromPoint(p.Location)
		if err != nil || p.Location.IsEmpty() {
			continue
		}
		d := geospatial.Haversine(center, domain.GeoPoint{Lat: lat, Lon: lon})
		if d > radiusMeters {
			continue
		}
		p.Distance = &d
		nearby = append(nearby, p)
	}
	sort.Slice(nearby, func(i, j int) bool { return *nearby[i].Distance < *nearby[j].Distance })
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}

func publishLocated(ctx context.Context, pub ports.EventPublisher, p *domain.Partner, source string) {
	if pub == nil {
		return
	}
	ev := &domain.PartnerLocated{
		PartnerID: p.ID,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Location:  p.Location,
		Source:    source,
		At:        time.Now().UTC(),
	}
	if err := pub.PublishPartnerLocated(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish partner.located failed", "partner_id", p.ID, "error", err)
	}
}

// normalizeCounted runs geo.Normalize and records the outcome.
func normalizeCounted(value any, preferWKB bool) (geo.Geometry, error) {
	g, err := geo.Normalize(value, preferWKB)
	if err != nil {
		var te *geo.TypeError
		if errors.As(err, &te) {
			metrics.NormalizeErrors.WithLabelValues("type").Inc()
		} else {
			metrics.NormalizeErrors.WithLabelValues("format").Inc()
		}
		return geo.Geometry{}, err
	}
	metrics.GeometriesNormalized.WithLabelValues(string(encodingOf(value, preferWKB))).Inc()
	return g, nil
}

func encodingOf(value any, preferWKB bool) geo.Encoding {
	switch v := value.(type) {
	case string:
		return geo.Sniff(v, preferWKB)
	case []byte:
		return geo.Sniff(string(v), preferWKB)
	case map[string]any:
		return geo.EncodingGeoJSON
	default:
		return geo.EncodingWKT
	}
}
