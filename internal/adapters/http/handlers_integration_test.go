//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/geoengine/internal/adapters/http"
	"github.com/samirrijal/geoengine/internal/adapters/postgres"
	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/geo"
	"github.com/samirrijal/geoengine/internal/core/usecases"
	"github.com/samirrijal/geoengine/internal/pkg/config"
)

// setupTestDB connects to the test database; PostGIS must be installed.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("geoengine-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if _, err := db.CheckPostGIS(ctx); err != nil {
		db.Close()
		t.Fatalf("postgis: %v", err)
	}
	return db
}

// setupTestDeps creates dependencies with real repos, no cache and no broker.
func setupTestDeps(t *testing.T, db *postgres.DB) *http.Dependencies {
	partners := postgres.NewPartnerRepo(db)
	settings := usecases.NewSettingsService(postgres.NewParamRepo(db), "integration", geo.DefaultSRID)

	return &http.Dependencies{
		Partners:    usecases.NewPartnerService(partners, nil, nil, domain.SyncCoordinates),
		Geolocalize: usecases.NewGeolocalizeService(partners, &mockGeocoder{}, nil, nil),
		Imports:     usecases.NewImportService(partners, nil, domain.SyncCoordinates),
		Layers:      usecases.NewLayerService(postgres.NewLayerRepo(db), partners, settings, nil),
		Settings:    settings,
		DB:          db,
	}
}

// seedTestPartner inserts a partner without location and returns its id.
func seedTestPartner(t *testing.T, db *postgres.DB, name string) string {
	id := fmt.Sprintf("it-%s-%d", name, time.Now().UnixNano())
	if _, err := db.Pool.Exec(context.Background(),
		`INSERT INTO partners (id, name, city) VALUES ($1, $2, 'Bilbao')`, id, name); err != nil {
		t.Fatalf("seed partner: %v", err)
	}
	return id
}

// TestSetLocation_Integration_RoundTrip writes WKT and reads the stored EWKB back.
func TestSetLocation_Integration_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	id := seedTestPartner(t, db, "abando")
	app := setupApp(setupTestDeps(t, db))

	status, body := doJSON(t, app, "PUT", "/v1/partners/"+id+"/location", `{"value":"POINT (-2.935 43.263)"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	p, err := postgres.NewPartnerRepo(db).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !p.Location.Equal(geo.PointFromLatLon(43.263, -2.935), 1e-9) {
		t.Errorf("unexpected stored location %s", p.Location)
	}
	if p.Location.SRID() != geo.DefaultSRID {
		t.Errorf("expected SRID 4326, got %d", p.Location.SRID())
	}

	status, _ = doJSON(t, app, "PUT", "/v1/partners/"+id+"/location", `{"value":null}`)
	if status != 200 {
		t.Fatalf("expected 200 on clear, got %d", status)
	}
	p, _ = postgres.NewPartnerRepo(db).GetByID(context.Background(), id)
	if !p.Location.IsEmpty() {
		t.Errorf("expected empty location, got %s", p.Location)
	}
}

// TestNearbyPartners_Integration exercises the bounding-box prefilter.
func TestNearbyPartners_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	id := seedTestPartner(t, db, "moyua")
	app := setupApp(setupTestDeps(t, db))

	if status, body := doJSON(t, app, "PUT", "/v1/partners/"+id+"/coordinates", `{"latitude":43.263,"longitude":-2.935}`); status != 200 {
		t.Fatalf("set coordinates: %d %s", status, body)
	}

	req := httptest.NewRequest("GET", "/v1/partners/nearby?lat=43.2630&lon=-2.9350&radius=500", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var partners []domain.Partner
	if err := json.NewDecoder(resp.Body).Decode(&partners); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	found := false
	for _, p := range partners {
		if p.ID == id {
			found = true
			if p.Distance == nil || *p.Distance > 1 {
				t.Errorf("expected near-zero distance, got %v", p.Distance)
			}
		}
	}
	if !found {
		t.Errorf("partner %s not returned", id)
	}
}

// TestNearbyPartners_Integration_NearestFirst seeds more partners in the box
// than the repository fetches and checks the closest one still wins.
func TestNearbyPartners_Integration_NearestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()
	app := setupApp(setupTestDeps(t, db))

	// Open ocean, far from every other fixture.
	const lat, lon = -40.5, -20.5
	var nearest string
	for i, offset := range []float64{0.004, 0.003, 0.002, 0.001, 0.0001} {
		id := seedTestPartner(t, db, fmt.Sprintf("knn%d", i))
		t.Cleanup(func() {
			_, _ = db.Pool.Exec(context.Background(), `DELETE FROM partners WHERE id = $1`, id)
		})
		wkt := fmt.Sprintf(`{"value":"POINT (%v %v)"}`, lon, lat+offset)
		if status, body := doJSON(t, app, "PUT", "/v1/partners/"+id+"/location", wkt); status != 200 {
			t.Fatalf("set location: %d %s", status, body)
		}
		nearest = id
	}

	status, body := doJSON(t, app, "GET", fmt.Sprintf("/v1/partners/nearby?lat=%v&lon=%v&radius=1000&limit=1", lat, lon), "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var partners []domain.Partner
	if err := json.Unmarshal(body, &partners); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(partners) != 1 || partners[0].ID != nearest {
		t.Fatalf("expected only %s, got %+v", nearest, partners)
	}
}

// TestImportAndFeatures_Integration imports a CSV and renders it through a vector layer.
func TestImportAndFeatures_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	app := setupApp(setupTestDeps(t, db))

	csv := "name,city,location\nIntegration Import,Bilbao,POINT (-2.93 43.26)\n"
	req := httptest.NewRequest("POST", "/v1/partners/import", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	layer := fmt.Sprintf(`{"view":"it","name":"all-%d","geo_field":"location","representation":"basic","active":true}`, time.Now().UnixNano())
	status, body := doJSON(t, app, "POST", "/v1/layers/vector", layer)
	if status != 201 {
		t.Fatalf("create layer: %d %s", status, body)
	}
	var created domain.VectorLayer
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatal(err)
	}

	status, body = doJSON(t, app, "GET", "/v1/layers/vector/"+created.ID+"/features", "")
	if status != 200 {
		t.Fatalf("features: %d %s", status, body)
	}
	if !strings.Contains(string(body), "Integration Import") {
		t.Errorf("imported partner missing from features")
	}
}
