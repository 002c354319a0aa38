package usecases

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/fieldconv"
	"github.com/samirrijal/geoengine/internal/core/geo"
	"github.com/samirrijal/geoengine/internal/core/ports"
	"github.com/samirrijal/geoengine/internal/pkg/logging"
	"github.com/samirrijal/geoengine/internal/pkg/metrics"
	"github.com/samirrijal/geoengine/internal/pkg/telemetry"
)

// partner columns accepted in an import header.
var importColumns = map[string]bool{
	"id": true, "name": true, "street": true, "street2": true, "zip": true, "city": true,
	"state_name": true, "country_name": true, "country_code": true,
	"latitude": true, "longitude": true, "location": true,
}

// ImportResult summarises a finished import.
type ImportResult struct {
	Rows int `json:"rows"`
}

// ImportService loads partner records from CSV.
type ImportService struct {
	partners ports.PartnerRepository
	cache    ports.CacheService
	sync     domain.SyncMode
}

// NewImportService creates a new ImportService.
func NewImportService(partners ports.PartnerRepository, cache ports.CacheService, sync domain.SyncMode) *ImportService {
	if sync == "" {
		sync = domain.SyncCoordinates
	}
	return &ImportService{partners: partners, cache: cache, sync: sync}
}

// ImportCSV reads a header row followed by partner rows. The location column
// is coerced as a geometry of kind, which must be fieldconv.Point. The first
// rejected row aborts the import and nothing is written.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader, kind fieldconv.FieldKind) (*ImportResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanImportPartners)
	defer span.End()

	if kind == "" {
		kind = fieldconv.Point
	}
	if kind != fieldconv.Point {
		return nil, fmt.Errorf("%w: partner location stores points, cannot import %s", domain.ErrInvalidInput, kind)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrInvalidInput, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if !importColumns[name] {
			return nil, fmt.Errorf("%w: unknown column %q", domain.ErrInvalidInput, h)
		}
		cols[name] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("%w: missing required column \"name\"", domain.ErrInvalidInput)
	}

	var batch []domain.Partner
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			metrics.ImportRows.WithLabelValues("rejected").Inc()
			return nil, &domain.ImportRowError{Row: row, Err: err}
		}

		p, err := s.partnerFromRecord(record, cols, kind)
		if err != nil {
			metrics.ImportRows.WithLabelValues("rejected").Inc()
			logging.FromContext(ctx).Warn("import row rejected", "row", row, "error", err)
			return nil, &domain.ImportRowError{Row: row, Err: err}
		}
		batch = append(batch, p)
	}
	span.SetAttributes(attribute.Int(telemetry.AttrImportRows, len(batch)))

	if len(batch) == 0 {
		return &ImportResult{}, nil
	}
	if err := s.partners.UpsertBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("import: upsert: %w", err)
	}
	for _, p := range batch {
		if p.ID != "" {
			dropPartner(ctx, s.cache, p.ID)
		}
	}
	bumpLayersGeneration(ctx, s.cache)
	metrics.ImportRows.WithLabelValues("imported").Add(float64(len(batch)))
	logging.FromContext(ctx).Info("partners imported", "rows", len(batch))
	return &ImportResult{Rows: len(batch)}, nil
}

func (s *ImportService) partnerFromRecord(record []string, cols map[string]int, kind fieldconv.FieldKind) (domain.Partner, error) {
	get := func(name string) string {
		if i, ok := cols[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	p := domain.Partner{
		ID:          get("id"),
		Name:        get("name"),
		Street:      get("street"),
		Street2:     get("street2"),
		Zip:         get("zip"),
		City:        get("city"),
		StateName:   get("state_name"),
		CountryName: get("country_name"),
		CountryCode: strings.ToUpper(get("country_code")),
	}
	if p.Name == "" {
		return p, errors.New("name is required")
	}

	var err error
	if p.Latitude, err = parseCoord(get("latitude"), "latitude"); err != nil {
		return p, err
	}
	if p.Longitude, err = parseCoord(get("longitude"), "longitude"); err != nil {
		return p, err
	}

	raw, _, err := fieldconv.CoerceForImport(get("location"), kind)
	if err != nil {
		var ce *domain.ImportCoercionError
		if errors.As(err, &ce) {
			return p, ce.WithField("location")
		}
		return p, err
	}
	loc, err := normalizeCounted(raw, fieldconv.LooksLikeHex(raw))
	if err != nil {
		return p, err
	}
	p.Location = loc

	switch {
	case s.sync == domain.SyncCoordinates && loc.IsEmpty():
		p.Location = geo.PointFromLatLon(p.Latitude, p.Longitude)
	case s.sync == domain.SyncGeometry && !loc.IsEmpty() && loc.Kind() == geo.KindPoint:
		p.Latitude, p.Longitude, _ = geo.LatLonFromPoint(loc)
	}
	return p, nil
}

func parseCoord(s, field string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}
