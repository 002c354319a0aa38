package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidLayer wraps layer configuration problems.
	ErrInvalidLayer = errors.New("invalid layer")
	// ErrInvalidInput wraps rejected request parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrGeometryUnavailable is returned when the geometry backend (go-geom
	// encoders or the PostGIS extension) cannot be used.
	ErrGeometryUnavailable = errors.New("geometry support unavailable")
)

// ImportGeometryTemplate is the default message for a rejected geometry cell.
// The first verb receives the raw value, the second the field name.
const ImportGeometryTemplate = "'%s' does not seem to be a geometry for field '%s'"

// ImportCoercionError attributes an unparseable import value to its field.
// It never carries nested errors.
type ImportCoercionError struct {
	Value    string
	Kind     string
	Field    string
	Template string
	Err      error
}

func (e *ImportCoercionError) Error() string {
	tpl := e.Template
	if tpl == "" {
		tpl = ImportGeometryTemplate
	}
	field := e.Field
	if field == "" {
		field = e.Kind
	}
	return fmt.Sprintf(tpl, e.Value, field)
}

func (e *ImportCoercionError) Unwrap() error { return e.Err }

// WithField returns a copy attributed to the given technical field name.
func (e *ImportCoercionError) WithField(field string) *ImportCoercionError {
	c := *e
	c.Field = field
	return &c
}

// SubErrors is always empty.
func (e *ImportCoercionError) SubErrors() []error { return nil }

// ImportRowError locates a rejected import row. Row counts data rows from 1,
// the header excluded.
type ImportRowError struct {
	Row int
	Err error
}

func (e *ImportRowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *ImportRowError) Unwrap() error { return e.Err }

// GeocodingError wraps a failed external address lookup.
type GeocodingError struct {
	PartnerID  string
	StatusCode int
	Err        error
}

func (e *GeocodingError) Error() string {
	msg := "geocoding failed"
	if e.PartnerID != "" {
		msg += " for partner " + e.PartnerID
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GeocodingError) Unwrap() error { return e.Err }
