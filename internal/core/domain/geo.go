package domain

import "fmt"

// GeoPoint is a WGS 84 coordinate pair, as stored in the partner
// latitude/longitude columns.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate rejects coordinates outside [-90,90] x [-180,180].
func (p GeoPoint) Validate() error {
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: coordinates out of range: lat=%v lon=%v", ErrInvalidInput, p.Lat, p.Lon)
	}
	return nil
}

// IsZero reports whether both coordinates are unset. A partner with a zero
// pair has never been localized.
func (p GeoPoint) IsZero() bool { return p.Lat == 0 && p.Lon == 0 }

// Bounds is a lat/lon envelope used to prefilter spatial queries.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}
