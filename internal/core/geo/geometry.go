package geo

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geom/encoding/wkbhex"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// DefaultSRID is WGS 84 longitude/latitude.
const DefaultSRID = 4326

// Kind is the geometry type tag.
type Kind string

const (
	KindPoint           Kind = "point"
	KindLineString      Kind = "line_string"
	KindPolygon         Kind = "polygon"
	KindMultiPoint      Kind = "multi_point"
	KindMultiLineString Kind = "multi_line_string"
	KindMultiPolygon    Kind = "multi_polygon"
	KindCollection      Kind = "geometry_collection"
)

// WKTer is implemented by values that can describe themselves as WKT.
type WKTer interface {
	WKT() string
}

// Geometry is an immutable geometry value tagged with an SRID.
// The zero value is the empty geometry collection.
type Geometry struct {
	t geom.T
}

// Empty returns the canonical empty geometry (GEOMETRYCOLLECTION EMPTY, SRID 4326).
func Empty() Geometry {
	return Geometry{t: geom.NewGeometryCollection().SetSRID(DefaultSRID)}
}

// FromT wraps a go-geom value, defaulting its SRID to 4326 when unset.
func FromT(t geom.T) Geometry {
	if t == nil {
		return Empty()
	}
	if t.SRID() == 0 {
		t = setSRID(t, DefaultSRID)
	}
	return Geometry{t: t}
}

func (g Geometry) geom() geom.T {
	if g.t == nil {
		return geom.NewGeometryCollection().SetSRID(DefaultSRID)
	}
	return g.t
}

// T exposes the underlying go-geom value. Callers must not mutate it.
func (g Geometry) T() geom.T { return g.geom() }

// SRID returns the spatial reference identifier.
func (g Geometry) SRID() int { return g.geom().SRID() }

// WithSRID returns a copy of g tagged with srid. Coordinates are not reprojected.
func (g Geometry) WithSRID(srid int) Geometry {
	return Geometry{t: setSRID(clone(g.geom()), srid)}
}

// Kind returns the geometry type tag.
func (g Geometry) Kind() Kind { return kindOf(g.geom()) }

// NumCoords returns the number of positions across all parts.
func (g Geometry) NumCoords() int { return numCoords(g.geom()) }

// IsEmpty reports whether g has no positions.
func (g Geometry) IsEmpty() bool { return g.NumCoords() == 0 }

// WKT implements WKTer.
func (g Geometry) WKT() string {
	s, err := wkt.Marshal(g.geom())
	if err != nil {
		// Only reachable for layouts wkt cannot express; the value was built by this package.
		panic(fmt.Sprintf("geo: wkt marshal: %v", err))
	}
	return s
}

// String returns the WKT form.
func (g Geometry) String() string { return g.WKT() }

// GeoJSON returns the GeoJSON geometry object.
func (g Geometry) GeoJSON() ([]byte, error) {
	return geojson.Marshal(g.geom())
}

// WKB returns little-endian WKB bytes.
func (g Geometry) WKB() ([]byte, error) {
	return wkb.Marshal(g.geom(), binary.LittleEndian)
}

// HexWKB returns hex-encoded little-endian WKB.
func (g Geometry) HexWKB() (string, error) {
	return wkbhex.Encode(g.geom(), binary.LittleEndian)
}

// HexEWKB returns hex-encoded PostGIS EWKB, which embeds the SRID.
func (g Geometry) HexEWKB() (string, error) {
	return ewkbhex.Encode(g.geom(), binary.LittleEndian)
}

// MarshalJSON encodes g as a GeoJSON geometry object.
func (g Geometry) MarshalJSON() ([]byte, error) {
	return g.GeoJSON()
}

// UnmarshalJSON accepts a GeoJSON object, a JSON string holding any supported
// text encoding, or null.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var v any = data
	switch {
	case string(data) == "null":
		v = nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v = s
	}
	parsed, err := Normalize(v, false)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Equal reports whether g and other have the same kind, SRID, structure and
// coordinates within tol.
func (g Geometry) Equal(other Geometry, tol float64) bool {
	if g.SRID() != other.SRID() {
		return false
	}
	return equalT(g.geom(), other.geom(), tol)
}

func equalT(a, b geom.T, tol float64) bool {
	if kindOf(a) != kindOf(b) {
		return false
	}
	if ca, ok := a.(*geom.GeometryCollection); ok {
		cb := b.(*geom.GeometryCollection)
		if ca.NumGeoms() != cb.NumGeoms() {
			return false
		}
		for i := 0; i < ca.NumGeoms(); i++ {
			if !equalT(ca.Geom(i), cb.Geom(i), tol) {
				return false
			}
		}
		return true
	}
	if a.Layout() != b.Layout() {
		return false
	}
	if !slices.Equal(a.Ends(), b.Ends()) || !slices.EqualFunc(a.Endss(), b.Endss(), slices.Equal[[]int]) {
		return false
	}
	fa, fb := a.FlatCoords(), b.FlatCoords()
	if len(fa) != len(fb) {
		return false
	}
	for i := range fa {
		if math.Abs(fa[i]-fb[i]) > tol {
			return false
		}
	}
	return true
}

func kindOf(t geom.T) Kind {
	switch t.(type) {
	case *geom.Point:
		return KindPoint
	case *geom.LineString:
		return KindLineString
	case *geom.Polygon:
		return KindPolygon
	case *geom.MultiPoint:
		return KindMultiPoint
	case *geom.MultiLineString:
		return KindMultiLineString
	case *geom.MultiPolygon:
		return KindMultiPolygon
	default:
		return KindCollection
	}
}

func numCoords(t geom.T) int {
	if c, ok := t.(*geom.GeometryCollection); ok {
		n := 0
		for _, member := range c.Geoms() {
			n += numCoords(member)
		}
		return n
	}
	if t.Stride() == 0 {
		return 0
	}
	return len(t.FlatCoords()) / t.Stride()
}

func setSRID(t geom.T, srid int) geom.T {
	switch g := t.(type) {
	case *geom.Point:
		return g.SetSRID(srid)
	case *geom.LineString:
		return g.SetSRID(srid)
	case *geom.Polygon:
		return g.SetSRID(srid)
	case *geom.MultiPoint:
		return g.SetSRID(srid)
	case *geom.MultiLineString:
		return g.SetSRID(srid)
	case *geom.MultiPolygon:
		return g.SetSRID(srid)
	case *geom.GeometryCollection:
		return g.SetSRID(srid)
	}
	return t
}

func clone(t geom.T) geom.T {
	switch g := t.(type) {
	case *geom.Point:
		return g.Clone()
	case *geom.LineString:
		return g.Clone()
	case *geom.Polygon:
		return g.Clone()
	case *geom.MultiPoint:
		return g.Clone()
	case *geom.MultiLineString:
		return g.Clone()
	case *geom.MultiPolygon:
		return g.Clone()
	case *geom.GeometryCollection:
		c := geom.NewGeometryCollection().SetSRID(g.SRID())
		for _, member := range g.Geoms() {
			c.MustPush(clone(member))
		}
		return c
	}
	return t
}
