package geo

import "github.com/twpayne/go-geom"

// PointFromLatLon builds the location point for legacy latitude/longitude
// columns. A zero latitude or longitude means "not set" and yields the empty
// geometry.
func PointFromLatLon(lat, lon float64) Geometry {
	if lat == 0 || lon == 0 {
		return Empty()
	}
	return Geometry{t: geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(DefaultSRID)}
}

// LatLonFromPoint derives legacy latitude/longitude columns from a location.
// The empty geometry yields zeros.
func LatLonFromPoint(g Geometry) (lat, lon float64, err error) {
	if g.IsEmpty() {
		return 0, 0, nil
	}
	p, ok := g.geom().(*geom.Point)
	if !ok {
		return 0, 0, ErrNotPoint
	}
	return p.Y(), p.X(), nil
}
