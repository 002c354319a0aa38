package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/geo"
	"github.com/samirrijal/geoengine/internal/core/ports"
	"github.com/samirrijal/geoengine/internal/pkg/logging"
	"github.com/samirrijal/geoengine/internal/pkg/metrics"
	"github.com/samirrijal/geoengine/internal/pkg/telemetry"
)

// GeolocalizeService writes geocoded coordinates back onto partners.
type GeolocalizeService struct {
	partners  ports.PartnerRepository
	geocoder  ports.Geocoder
	publisher ports.EventPublisher
	cache     ports.CacheService
	now       func() time.Time
}

// NewGeolocalizeService creates a new GeolocalizeService. publisher and cache may be nil.
func NewGeolocalizeService(partners ports.PartnerRepository, geocoder ports.Geocoder, publisher ports.EventPublisher, cache ports.CacheService) *GeolocalizeService {
	return &GeolocalizeService{
		partners:  partners,
		geocoder:  geocoder,
		publisher: publisher,
		cache:     cache,
		now:       time.Now,
	}
}

// SetClock overrides the localization date source.
func (s *GeolocalizeService) SetClock(now func() time.Time) { s.now = now }

// Geolocalize geocodes each partner in order. The first failure aborts the
// batch; partners processed before it keep their new location.
func (s *GeolocalizeService) Geolocalize(ctx context.Context, ids []string) ([]domain.Partner, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanGeolocalize)
	defer span.End()
	span.SetAttributes(attribute.Int(telemetry.AttrBatchSize, len(ids)))

	out := make([]domain.Partner, 0, len(ids))
	for _, id := range ids {
		p, err := s.GeolocalizeOne(ctx, id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "batch aborted")
			return out, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// GeolocalizeOne looks up a single partner's address and stores the first
// candidate. No candidate resets the coordinates and clears the location.
func (s *GeolocalizeService) GeolocalizeOne(ctx context.Context, id string) (*domain.Partner, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanGeolocalizeOne)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrPartnerID, id))

	p, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := s.geocoder.Search(ctx, p.Address())
	metrics.GeocodeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		var ge *domain.GeocodingError
		if errors.As(err, &ge) {
			c := *ge
			c.PartnerID = id
			return nil, &c
		}
		return nil, &domain.GeocodingError{PartnerID: id, Err: err}
	}
	span.SetAttributes(attribute.Int(telemetry.AttrGeocodeCandidate, len(results)))

	var first domain.GeocodeResult
	if len(results) > 0 {
		first = results[0]
		metrics.GeocodeRequests.WithLabelValues("found").Inc()
	} else {
		metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	}

	upd, err := s.locationFromResult(first)
	if err != nil {
		return nil, &domain.GeocodingError{PartnerID: id, Err: err}
	}

	if err := s.partners.UpdateLocation(ctx, id, upd); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	invalidateLocation(ctx, s.cache, id)

	p.Latitude, p.Longitude = upd.Latitude, upd.Longitude
	p.DateLocalization = upd.DateLocalization
	p.Location = upd.Location

	logging.FromContext(ctx).Info("partner geolocalized",
		"partner_id", id, "lat", p.Latitude, "lon", p.Longitude, "found", len(results) > 0)
	publishLocated(ctx, s.publisher, p, "geocoder")
	return p, nil
}

// RequestAsync hands the batch to the background geolocalizer.
func (s *GeolocalizeService) RequestAsync(ctx context.Context, ids []string) error {
	if s.publisher == nil {
		return errors.New("async geolocalize is not configured")
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: no partner ids", domain.ErrInvalidInput)
	}
	return s.publisher.PublishGeolocalizeRequest(ctx, ids)
}

type pointPayload struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// locationFromResult builds the combined update for a candidate. An empty
// candidate yields zero coordinates and an empty location.
func (s *GeolocalizeService) locationFromResult(r domain.GeocodeResult) (domain.LocationUpdate, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	upd := domain.LocationUpdate{DateLocalization: &today, Location: geo.Empty()}

	if r.Lat == "" && r.Lon == "" {
		return upd, nil
	}
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return upd, fmt.Errorf("parse lat %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return upd, fmt.Errorf("parse lon %q: %w", r.Lon, err)
	}

	payload, err := json.Marshal(pointPayload{Type: "Point", Coordinates: [2]float64{lon, lat}})
	if err != nil {
		return upd, err
	}
	loc, err := normalizeCounted(string(payload), false)
	if err != nil {
		return upd, err
	}

	upd.Latitude, upd.Longitude, upd.Location = lat, lon, loc
	return upd, nil
}
