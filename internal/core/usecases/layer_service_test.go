package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/geo"
	"github.com/samirrijal/geoengine/internal/core/usecases"
)

type featureCollection struct {
	Type     string    `json:"type"`
	BBox     []float64 `json:"bbox"`
	Features []struct {
		ID         any            `json:"id"`
		Geometry   map[string]any `json:"geometry"`
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

func TestLayerService_FeatureCollection(t *testing.T) {
	layers := &mockLayerRepo{vector: map[string]*domain.VectorLayer{
		"10": {ID: "10", Name: "Partners by country", GeoField: "location", Representation: domain.ReprColored, AttributeField: "country_code"},
	}}
	partners := newPartnerRepo()
	partners.listLocatedFn = func(ctx context.Context, limit int) ([]domain.Partner, error) {
		return []domain.Partner{
			{ID: "1", Name: "Geneva", CountryCode: "CH", Location: geo.PointFromLatLon(46.2, 6.1)},
			{ID: "2", Name: "Bilbao", CountryCode: "ES", Location: geo.PointFromLatLon(43.26, -2.93)},
			{ID: "3", Name: "Unplaced"},
		}, nil
	}
	svc := usecases.NewLayerService(layers, partners, nil, nil)

	data, err := svc.FeatureCollection(context.Background(), "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection %s", data)
	}
	want := []float64{-2.93, 43.26, 6.1, 46.2}
	if len(fc.BBox) != 4 {
		t.Fatalf("expected bbox, got %v", fc.BBox)
	}
	for i := range want {
		if fc.BBox[i] != want[i] {
			t.Errorf("bbox[%d]: expected %v, got %v", i, want[i], fc.BBox[i])
		}
	}
	if fc.Features[0].Properties["attribute"] != "CH" {
		t.Errorf("expected attribute CH, got %v", fc.Features[0].Properties["attribute"])
	}
	if fc.Features[0].Geometry["type"] != "Point" {
		t.Errorf("expected point geometry, got %v", fc.Features[0].Geometry)
	}
}

func TestLayerService_FeatureCollection_CachedUntilLocationChanges(t *testing.T) {
	layers := &mockLayerRepo{vector: map[string]*domain.VectorLayer{
		"1": {ID: "1", Name: "All", GeoField: "location", Representation: domain.ReprBasic},
	}}
	calls := 0
	partners := newPartnerRepo(domain.Partner{ID: "p"})
	partners.listLocatedFn = func(ctx context.Context, limit int) ([]domain.Partner, error) {
		calls++
		return nil, nil
	}
	cache := newMockCache()
	svc := usecases.NewLayerService(layers, partners, nil, cache)

	for i := 0; i < 2; i++ {
		if _, err := svc.FeatureCollection(context.Background(), "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 repository call, got %d", calls)
	}

	ps := usecases.NewPartnerService(partners, nil, cache, domain.SyncCoordinates)
	if _, err := ps.SetCoordinates(context.Background(), "p", 1, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.FeatureCollection(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected cache to be invalidated, got %d calls", calls)
	}
}

func TestLayerService_FeatureCollection_UnknownLayer(t *testing.T) {
	svc := usecases.NewLayerService(&mockLayerRepo{}, newPartnerRepo(), nil, nil)
	_, err := svc.FeatureCollection(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLayerService_SaveRaster_Mapbox(t *testing.T) {
	params := mockParams{}
	settings := usecases.NewSettingsService(params, "test", 4326)
	svc := usecases.NewLayerService(&mockLayerRepo{}, newPartnerRepo(), settings, nil)

	l := &domain.RasterLayer{Name: "Streets", Type: domain.RasterMapbox, MapboxStyle: "mapbox/streets-v11", Opacity: 1}
	if err := svc.SaveRaster(context.Background(), l); !errors.Is(err, domain.ErrInvalidLayer) {
		t.Fatalf("expected ErrInvalidLayer without token, got %v", err)
	}

	if err := settings.SetMapboxToken(context.Background(), "pk.test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SaveRaster(context.Background(), l); err != nil {
		t.Errorf("unexpected error with token: %v", err)
	}
}

func TestLayerService_SaveVector(t *testing.T) {
	svc := usecases.NewLayerService(&mockLayerRepo{}, newPartnerRepo(), nil, nil)

	tests := []struct {
		name    string
		layer   domain.VectorLayer
		wantErr bool
	}{
		{"basic", domain.VectorLayer{ID: "1", Name: "a", GeoField: "location", Representation: domain.ReprBasic}, false},
		{"wrong geo field", domain.VectorLayer{ID: "2", Name: "a", GeoField: "street", Representation: domain.ReprBasic}, true},
		{"unknown attribute", domain.VectorLayer{ID: "3", Name: "a", GeoField: "location", Representation: domain.ReprProportion, AttributeField: "revenue"}, true},
		{"proportion", domain.VectorLayer{ID: "4", Name: "a", GeoField: "location", Representation: domain.ReprProportion, AttributeField: "latitude"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.layer
			err := svc.SaveVector(context.Background(), &l)
			if (err != nil) != tt.wantErr {
				t.Errorf("SaveVector() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
