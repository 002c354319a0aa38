package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/fieldconv"
	"github.com/samirrijal/geoengine/internal/core/geo"
	"github.com/samirrijal/geoengine/internal/core/usecases"
)

func TestImportService_ImportCSV(t *testing.T) {
	repo := newPartnerRepo()
	svc := usecases.NewImportService(repo, nil, domain.SyncCoordinates)

	csv := `id,name,city,country_code,latitude,longitude,location
1,Camptocamp,Lausanne,ch,,,POINT (6.63 46.52)
2,Bilbao Office,Bilbao,ES,43.263,-2.935,
3,Hex,Paris,FR,,,0101000000000000000000F03F0000000000000040
4,Empty,Nowhere,,,,
`
	res, err := svc.ImportCSV(context.Background(), strings.NewReader(csv), fieldconv.Point)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rows != 4 {
		t.Fatalf("expected 4 rows, got %d", res.Rows)
	}

	p1 := repo.partners["1"]
	if p1.CountryCode != "CH" || p1.Location.Kind() != geo.KindPoint {
		t.Errorf("unexpected partner 1 %+v", p1)
	}
	p2 := repo.partners["2"]
	if !p2.Location.Equal(geo.PointFromLatLon(43.263, -2.935), 1e-12) {
		t.Errorf("expected location derived from coordinates, got %s", p2.Location)
	}
	p3 := repo.partners["3"]
	if !p3.Location.Equal(geo.MustNormalize("POINT (1 2)"), 0) {
		t.Errorf("expected hex wkb point, got %s", p3.Location)
	}
	if !repo.partners["4"].Location.IsEmpty() {
		t.Error("expected empty location")
	}
}

func TestImportService_RejectsBadGeometry(t *testing.T) {
	written := false
	repo := newPartnerRepo()
	repo.upsertBatchFn = func(ctx context.Context, partners []domain.Partner) error {
		written = true
		return nil
	}
	svc := usecases.NewImportService(repo, nil, "")

	csv := "name,location\nok,POINT (1 2)\nbad,garbage\nlater,POINT (3 4)\n"
	_, err := svc.ImportCSV(context.Background(), strings.NewReader(csv), fieldconv.Point)

	var rowErr *domain.ImportRowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("expected ImportRowError, got %v", err)
	}
	if rowErr.Row != 2 {
		t.Errorf("expected row 2, got %d", rowErr.Row)
	}
	var ce *domain.ImportCoercionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ImportCoercionError, got %v", err)
	}
	if ce.Field != "location" || ce.Value != "garbage" {
		t.Errorf("unexpected coercion error %+v", ce)
	}
	if !strings.Contains(err.Error(), "'garbage' does not seem to be a geometry for field 'location'") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if written {
		t.Error("nothing should be written after a rejected row")
	}
}

func TestImportService_RejectsNonPointKinds(t *testing.T) {
	written := false
	repo := newPartnerRepo()
	repo.upsertBatchFn = func(ctx context.Context, partners []domain.Partner) error {
		written = true
		return nil
	}
	svc := usecases.NewImportService(repo, nil, "")

	csv := "name,location\nzone,\"POLYGON ((0 0, 1 0, 1 1, 0 0))\"\n"
	for _, kind := range []fieldconv.FieldKind{fieldconv.Polygon, fieldconv.MultiPolygon} {
		_, err := svc.ImportCSV(context.Background(), strings.NewReader(csv), kind)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("kind %s: expected ErrInvalidInput, got %v", kind, err)
		}
	}
	if written {
		t.Error("nothing should be written for a non-point kind")
	}
}

func TestImportService_RefreshesLayerFeatures(t *testing.T) {
	layers := &mockLayerRepo{vector: map[string]*domain.VectorLayer{
		"1": {ID: "1", Name: "All", GeoField: "location", Representation: domain.ReprBasic},
	}}
	calls := 0
	partners := newPartnerRepo()
	partners.listLocatedFn = func(ctx context.Context, limit int) ([]domain.Partner, error) {
		calls++
		return nil, nil
	}
	cache := newMockCache()
	layerSvc := usecases.NewLayerService(layers, partners, nil, cache)
	if _, err := layerSvc.FeatureCollection(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Rows without an id have no cached partner entry to drop.
	svc := usecases.NewImportService(partners, cache, domain.SyncCoordinates)
	csv := "name,location\nAnon,POINT (1 2)\n"
	if _, err := svc.ImportCSV(context.Background(), strings.NewReader(csv), fieldconv.Point); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := layerSvc.FeatureCollection(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected features to be rebuilt after import, got %d repository calls", calls)
	}
}

func TestImportService_HeaderErrors(t *testing.T) {
	svc := usecases.NewImportService(newPartnerRepo(), nil, "")
	tests := []struct {
		name string
		csv  string
	}{
		{"empty", ""},
		{"unknown column", "name,colour\nx,red\n"},
		{"missing name", "city\nBilbao\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ImportCSV(context.Background(), strings.NewReader(tt.csv), ""); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestImportService_GeometrySyncDerivesCoordinates(t *testing.T) {
	repo := newPartnerRepo()
	svc := usecases.NewImportService(repo, nil, domain.SyncGeometry)

	csv := "id,name,location\n9,Geneva,\"{\"\"type\"\":\"\"Point\"\",\"\"coordinates\"\":[6.1,46.2]}\"\n"
	if _, err := svc.ImportCSV(context.Background(), strings.NewReader(csv), fieldconv.Point); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := repo.partners["9"]
	if p.Latitude != 46.2 || p.Longitude != 6.1 {
		t.Errorf("expected derived coordinates, got %v %v", p.Latitude, p.Longitude)
	}
}
