package fieldconv_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/fieldconv"
	"github.com/samirrijal/geoengine/internal/core/geo"
)

func TestCoerceForImport_HappyPath(t *testing.T) {
	square := "POLYGON ((0 0, 1 0, 1 1, 0 1, 0 0))"
	hexPoint, err := geo.MustNormalize("POINT (10 20)").HexWKB()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		raw  string
		kind fieldconv.FieldKind
	}{
		{"POINT (10 20)", fieldconv.Point},
		{`{"type":"Point","coordinates":[10,20]}`, fieldconv.Point},
		{hexPoint, fieldconv.Point},
		{square, fieldconv.Polygon},
		{"MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)))", fieldconv.MultiPolygon},
		{"", fieldconv.MultiPolygon},
	}

	for _, tt := range tests {
		got, subErrs, err := fieldconv.CoerceForImport(tt.raw, tt.kind)
		if err != nil {
			t.Errorf("CoerceForImport(%q, %s): unexpected error: %v", tt.raw, tt.kind, err)
			continue
		}
		if got != tt.raw {
			t.Errorf("CoerceForImport(%q): value changed to %q", tt.raw, got)
		}
		if len(subErrs) != 0 {
			t.Errorf("CoerceForImport(%q): expected no sub-errors, got %v", tt.raw, subErrs)
		}
	}
}

func TestCoerceForImport_Garbage(t *testing.T) {
	_, subErrs, err := fieldconv.CoerceForImport("garbage", fieldconv.MultiPolygon)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(subErrs) != 0 {
		t.Errorf("expected no sub-errors, got %v", subErrs)
	}

	var ice *domain.ImportCoercionError
	if !errors.As(err, &ice) {
		t.Fatalf("expected ImportCoercionError, got %T", err)
	}
	if !strings.Contains(ice.Error(), "garbage") {
		t.Errorf("message should contain the raw value: %q", ice.Error())
	}
	if ice.SubErrors() != nil {
		t.Error("SubErrors must be empty")
	}

	var fe *geo.FormatError
	if !errors.As(err, &fe) {
		t.Error("expected the underlying geo.FormatError to be wrapped")
	}

	msg := ice.WithField("location").Error()
	if msg != "'garbage' does not seem to be a geometry for field 'location'" {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestCoerceForImport_KindMismatch(t *testing.T) {
	_, _, err := fieldconv.CoerceForImport("POINT (1 2)", fieldconv.Polygon)
	var ice *domain.ImportCoercionError
	if !errors.As(err, &ice) {
		t.Fatalf("expected ImportCoercionError, got %v", err)
	}
	if ice.Kind != "polygon" {
		t.Errorf("expected kind polygon, got %s", ice.Kind)
	}
}

func TestParseFieldKind(t *testing.T) {
	for in, want := range map[string]fieldconv.FieldKind{
		"point":         fieldconv.Point,
		" Polygon ":     fieldconv.Polygon,
		"multipolygon":  fieldconv.MultiPolygon,
		"multi_polygon": fieldconv.MultiPolygon,
	} {
		got, err := fieldconv.ParseFieldKind(in)
		if err != nil || got != want {
			t.Errorf("ParseFieldKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := fieldconv.ParseFieldKind("circle"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
