package domain

import (
	"errors"
	"testing"
)

func TestRasterLayerValidate(t *testing.T) {
	tests := []struct {
		name     string
		layer    RasterLayer
		hasToken bool
		wantErr  bool
	}{
		{"osm", RasterLayer{Name: "OSM", Type: RasterOSM, Opacity: 1}, false, false},
		{"odoo", RasterLayer{Name: "Blank", Type: RasterOdoo}, false, false},
		{"missing name", RasterLayer{Type: RasterOSM}, false, true},
		{"opacity above 1", RasterLayer{Name: "OSM", Type: RasterOSM, Opacity: 1.5}, false, true},
		{"wmts without matrix set", RasterLayer{Name: "W", Type: RasterWMTS, URL: "http://x"}, false, true},
		{"wmts", RasterLayer{Name: "W", Type: RasterWMTS, URL: "http://x", MatrixSet: "EPSG:3857"}, false, false},
		{"d_wms without url", RasterLayer{Name: "D", Type: RasterDWMS}, false, true},
		{"mapbox without token", RasterLayer{Name: "M", Type: RasterMapbox, MapboxStyle: "mapbox/streets-v11"}, false, true},
		{"mapbox without style", RasterLayer{Name: "M", Type: RasterMapbox}, true, true},
		{"mapbox", RasterLayer{Name: "M", Type: RasterMapbox, MapboxStyle: "mapbox/streets-v11"}, true, false},
		{"unknown type", RasterLayer{Name: "X", Type: "bing"}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layer.Validate(tt.hasToken)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidLayer) {
				t.Errorf("expected ErrInvalidLayer, got %v", err)
			}
		})
	}
}

func TestVectorLayerValidate(t *testing.T) {
	tests := []struct {
		name    string
		layer   VectorLayer
		wantErr bool
	}{
		{"basic", VectorLayer{Name: "P", GeoField: "location", Representation: ReprBasic}, false},
		{"missing geo field", VectorLayer{Name: "P", Representation: ReprBasic}, true},
		{"proportion without attribute", VectorLayer{Name: "P", GeoField: "location", Representation: ReprProportion}, true},
		{"proportion", VectorLayer{Name: "P", GeoField: "location", Representation: ReprProportion, AttributeField: "latitude"}, false},
		{"colored without classification", VectorLayer{Name: "P", GeoField: "location", Representation: ReprColored, AttributeField: "latitude", Classes: 3}, true},
		{"colored without classes", VectorLayer{Name: "P", GeoField: "location", Representation: ReprColored, AttributeField: "latitude", Classification: ClassQuantile}, true},
		{"colored", VectorLayer{Name: "P", GeoField: "location", Representation: ReprColored, AttributeField: "latitude", Classification: ClassInterval, Classes: 5}, false},
		{"unknown representation", VectorLayer{Name: "P", GeoField: "location", Representation: "heatmap"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layer.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidLayer) {
				t.Errorf("expected ErrInvalidLayer, got %v", err)
			}
		})
	}
}
