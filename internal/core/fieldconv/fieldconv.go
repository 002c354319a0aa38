// Package fieldconv coerces raw import cells into typed geometry fields.
package fieldconv

import (
	"fmt"
	"strings"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/geo"
)

// FieldKind is the geometry type a column accepts.
type FieldKind string

const (
	Point        FieldKind = "point"
	Polygon      FieldKind = "polygon"
	MultiPolygon FieldKind = "multi_polygon"
)

var kinds = map[FieldKind]geo.Kind{
	Point:        geo.KindPoint,
	Polygon:      geo.KindPolygon,
	MultiPolygon: geo.KindMultiPolygon,
}

// ParseFieldKind accepts "point", "polygon" and "multi_polygon" (or "multipolygon").
func ParseFieldKind(s string) (FieldKind, error) {
	k := FieldKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "multipolygon", "multi_polygon"))
	if _, ok := kinds[k]; !ok {
		return "", fmt.Errorf("unknown geometry field kind %q", s)
	}
	return k, nil
}

// CoerceForImport validates raw against kind and returns it unchanged.
//
// The value is parsed eagerly so a malformed row fails here, attributed to the
// value, instead of later in the column setter. Empty values are accepted.
// Sub-errors are always empty; a failure is a single *domain.ImportCoercionError
// whose Field is left for the caller to fill.
func CoerceForImport(raw string, kind FieldKind) (string, []error, error) {
	want, ok := kinds[kind]
	if !ok {
		return "", nil, fmt.Errorf("unknown geometry field kind %q", kind)
	}

	g, err := geo.Normalize(raw, LooksLikeHex(raw))
	if err != nil {
		return "", nil, &domain.ImportCoercionError{Value: raw, Kind: string(kind), Err: err}
	}
	if !g.IsEmpty() && g.Kind() != want {
		return "", nil, &domain.ImportCoercionError{
			Value: raw,
			Kind:  string(kind),
			Err:   fmt.Errorf("expected %s, got %s", want, g.Kind()),
		}
	}
	return raw, nil, nil
}

// LooksLikeHex reports whether s looks like hex-encoded WKB. WKT keywords always
// contain non-hex letters, so the check cannot shadow WKT input.
func LooksLikeHex(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 2 || len(s)%2 != 0 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
