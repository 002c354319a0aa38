package domain

import (
	"time"

	"github.com/samirrijal/geoengine/internal/core/geo"
)

// Partner is a contact record carrying a point location plus the legacy
// latitude/longitude columns.
type Partner struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Street           string       `json:"street,omitempty"`
	Street2          string       `json:"street2,omitempty"`
	Zip              string       `json:"zip,omitempty"`
	City             string       `json:"city,omitempty"`
	StateName        string       `json:"state_name,omitempty"`
	CountryName      string       `json:"country_name,omitempty"`
	CountryCode      string       `json:"country_code,omitempty"`
	Latitude         float64      `json:"latitude"`
	Longitude        float64      `json:"longitude"`
	DateLocalization *time.Time   `json:"date_localization,omitempty"`
	Location         geo.Geometry `json:"location"`
	Distance         *float64     `json:"distance,omitempty"` // computed field
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// Address returns the postal address used for geocoding.
func (p *Partner) Address() Address {
	return Address{
		Street:      p.Street,
		PostalCode:  p.Zip,
		City:        p.City,
		State:       p.StateName,
		Country:     p.CountryName,
		CountryCode: p.CountryCode,
	}
}

// Address is a partial or full postal address.
type Address struct {
	Street      string `json:"street,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// GeocodeResult is a single candidate returned by an address lookup.
type GeocodeResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name,omitempty"`
}

// LocationUpdate is the combined write produced by geolocalization or by the
// coordinate/location sync.
type LocationUpdate struct {
	Latitude         float64
	Longitude        float64
	DateLocalization *time.Time
	Location         geo.Geometry
}

// PartnerLocated is published whenever a partner's location changes.
type PartnerLocated struct {
	PartnerID string       `json:"partner_id"`
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Location  geo.Geometry `json:"location"`
	Source    string       `json:"source"` // geocoder | location | coordinates | import
	At        time.Time    `json:"at"`
}

// SyncMode selects which side of the partner location pair is authoritative.
type SyncMode string

const (
	// SyncCoordinates derives the location from latitude/longitude.
	SyncCoordinates SyncMode = "coordinates"
	// SyncGeometry derives latitude/longitude from the location.
	SyncGeometry SyncMode = "geometry"
	// SyncNone keeps both sides independent.
	SyncNone SyncMode = "none"
)
