package geo

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"
)

// validate enforces per-kind position invariants the parsers leave unchecked.
func validate(t geom.T) error {
	if stride := t.Layout().Stride(); stride > 4 {
		return fmt.Errorf("positions carry %d values, at most 4 are supported", stride)
	}
	switch g := t.(type) {
	case *geom.LineString:
		if n := g.NumCoords(); n == 1 {
			return errors.New("line string needs at least 2 positions")
		}
	case *geom.Polygon:
		for i := 0; i < g.NumLinearRings(); i++ {
			if err := validateRing(g.LinearRing(i)); err != nil {
				return fmt.Errorf("ring %d: %w", i, err)
			}
		}
	case *geom.MultiLineString:
		for i := 0; i < g.NumLineStrings(); i++ {
			if err := validate(g.LineString(i)); err != nil {
				return fmt.Errorf("line %d: %w", i, err)
			}
		}
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			if err := validate(g.Polygon(i)); err != nil {
				return fmt.Errorf("polygon %d: %w", i, err)
			}
		}
	case *geom.GeometryCollection:
		for i, member := range g.Geoms() {
			if err := validate(member); err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
		}
	}
	return nil
}

func validateRing(r *geom.LinearRing) error {
	n := r.NumCoords()
	if n < 4 {
		return fmt.Errorf("linear ring needs at least 4 positions, got %d", n)
	}
	first, last := r.Coord(0), r.Coord(n-1)
	for i := range first {
		if first[i] != last[i] {
			return errors.New("linear ring is not closed")
		}
	}
	return nil
}
