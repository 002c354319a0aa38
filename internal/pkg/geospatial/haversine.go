package geospatial

import (
	"math"

	"github.com/samirrijal/geoengine/internal/core/domain"
)

const (
	earthRadiusMeters = 6371000.0
	metersPerDegree   = 111320.0
)

// Haversine returns the great-circle distance in meters between two points.
func Haversine(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BoundingBox returns a box enclosing the circle of radiusMeters around p.
// Latitudes are clamped to the poles; near a pole the box spans all longitudes.
func BoundingBox(p domain.GeoPoint, radiusMeters float64) domain.Bounds {
	latDelta := radiusMeters / metersPerDegree
	b := domain.Bounds{
		MinLat: math.Max(p.Lat-latDelta, -90),
		MaxLat: math.Min(p.Lat+latDelta, 90),
		MinLon: -180,
		MaxLon: 180,
	}

	cos := math.Cos(toRad(p.Lat))
	if cos < 1e-6 {
		return b
	}
	lonDelta := radiusMeters / (metersPerDegree * cos)
	if lonDelta < 180 {
		b.MinLon = p.Lon - lonDelta
		b.MaxLon = p.Lon + lonDelta
	}
	return b
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
