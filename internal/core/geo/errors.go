package geo

import (
	"errors"
	"fmt"
)

// Encoding names a serialized geometry representation.
type Encoding string

const (
	EncodingWKT     Encoding = "wkt"
	EncodingWKB     Encoding = "wkb"
	EncodingGeoJSON Encoding = "geojson"
)

// ErrNotPoint is returned when a point-only derivation receives another kind.
var ErrNotPoint = errors.New("geo: geometry is not a point")

// FormatError reports input that matched an encoding but failed to parse.
type FormatError struct {
	Encoding Encoding
	Err      error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("geo: malformed %s geometry: %v", e.Encoding, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// TypeError reports input whose Go type carries no geometry representation.
type TypeError struct {
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("geo: value must be WKT/GeoJSON text or expose a WKT representation, got %T", e.Value)
}

func formatErr(enc Encoding, err error) error {
	return &FormatError{Encoding: enc, Err: err}
}
