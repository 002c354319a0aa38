package geo_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/samirrijal/geoengine/internal/core/geo"
)

func TestGeometry_JSON(t *testing.T) {
	type record struct {
		Location geo.Geometry `json:"location"`
	}

	in := record{Location: geo.MustNormalize("POINT (6.1 46.2)")}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"location":{"type":"Point","coordinates":[6.1,46.2]}}` {
		t.Errorf("unexpected json: %s", data)
	}

	var out record
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if !out.Location.Equal(in.Location, 1e-9) {
		t.Errorf("json round trip: got %s", out.Location)
	}

	if err := json.Unmarshal([]byte(`{"location":"POINT (1 2)"}`), &out); err != nil {
		t.Fatal(err)
	}
	if out.Location.WKT() != "POINT (1 2)" {
		t.Errorf("wkt string: got %s", out.Location)
	}

	if err := json.Unmarshal([]byte(`{"location":null}`), &out); err != nil {
		t.Fatal(err)
	}
	if !out.Location.IsEmpty() {
		t.Error("null location should be empty")
	}
}

func TestGeometry_Equal(t *testing.T) {
	a := geo.MustNormalize("POINT (1 2)")
	b := geo.MustNormalize("POINT (1.0000000001 2)")

	if a.Equal(b, 0) {
		t.Error("expected inequality with zero tolerance")
	}
	if !a.Equal(b, 1e-9) {
		t.Error("expected equality within 1e-9")
	}
	if a.Equal(a.WithSRID(3857), 1e-9) {
		t.Error("different srid should not be equal")
	}
	if a.Equal(geo.MustNormalize("LINESTRING (1 2, 3 4)"), 1e-9) {
		t.Error("different kinds should not be equal")
	}
}

func TestGeometry_WithSRID(t *testing.T) {
	orig := geo.MustNormalize("GEOMETRYCOLLECTION (POINT (1 2), LINESTRING (0 0, 1 1))")

	moved := orig.WithSRID(2056)
	if moved.SRID() != 2056 {
		t.Errorf("expected srid 2056, got %d", moved.SRID())
	}
	if orig.SRID() != geo.DefaultSRID {
		t.Errorf("original srid changed to %d", orig.SRID())
	}
	if moved.WKT() != orig.WKT() {
		t.Errorf("coordinates changed: got %s, want %s", moved, orig)
	}
	if moved.T() == orig.T() {
		t.Error("WithSRID should return a copy")
	}

	empty := geo.Empty().WithSRID(3857)
	if !empty.IsEmpty() || empty.SRID() != 3857 {
		t.Errorf("empty WithSRID: got %s srid %d", empty, empty.SRID())
	}
}

func TestPointFromLatLon(t *testing.T) {
	g := geo.PointFromLatLon(46.2, 6.1)
	if g.WKT() != "POINT (6.1 46.2)" {
		t.Errorf("expected lon/lat order, got %s", g)
	}

	if !geo.PointFromLatLon(0, 6.1).IsEmpty() {
		t.Error("zero latitude should yield empty geometry")
	}
	if !geo.PointFromLatLon(46.2, 0).IsEmpty() {
		t.Error("zero longitude should yield empty geometry")
	}
}

func TestLatLonFromPoint(t *testing.T) {
	lat, lon, err := geo.LatLonFromPoint(geo.MustNormalize("POINT (6.1 46.2)"))
	if err != nil {
		t.Fatal(err)
	}
	if lat != 46.2 || lon != 6.1 {
		t.Errorf("expected 46.2/6.1, got %v/%v", lat, lon)
	}

	lat, lon, err = geo.LatLonFromPoint(geo.Empty())
	if err != nil || lat != 0 || lon != 0 {
		t.Errorf("empty: expected zeros, got %v/%v/%v", lat, lon, err)
	}

	_, _, err = geo.LatLonFromPoint(geo.MustNormalize("LINESTRING (0 0, 1 1)"))
	if !errors.Is(err, geo.ErrNotPoint) {
		t.Errorf("expected ErrNotPoint, got %v", err)
	}
}
