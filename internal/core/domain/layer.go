package domain

import (
	"fmt"
	"time"
)

// RasterType enumerates supported basemap sources.
type RasterType string

const (
	RasterOSM    RasterType = "osm"
	RasterWMTS   RasterType = "wmts"
	RasterDWMS   RasterType = "d_wms"
	RasterMapbox RasterType = "mapbox"
	RasterOdoo   RasterType = "odoo"
)

// RasterLayer is a background layer of a map view.
type RasterLayer struct {
	ID          string            `json:"id" yaml:"-"`
	View        string            `json:"view" yaml:"view"`
	Name        string            `json:"name" yaml:"name"`
	Type        RasterType        `json:"type" yaml:"type"`
	URL         string            `json:"url,omitempty" yaml:"url"`
	MatrixSet   string            `json:"matrix_set,omitempty" yaml:"matrix_set"`
	Format      string            `json:"format,omitempty" yaml:"format"`
	Params      map[string]string `json:"params,omitempty" yaml:"params"`
	Opacity     float64           `json:"opacity" yaml:"opacity"`
	Overlay     bool              `json:"overlay" yaml:"overlay"`
	Sequence    int               `json:"sequence" yaml:"sequence"`
	MapboxStyle string            `json:"mapbox_style,omitempty" yaml:"mapbox_style"`
	CreatedAt   time.Time         `json:"created_at" yaml:"-"`
}

// Validate checks the per-type required attributes.
// hasMapboxToken reports whether the mapbox token setting is filled.
func (l *RasterLayer) Validate(hasMapboxToken bool) error {
	if l.Name == "" {
		return fmt.Errorf("%w: raster layer name is required", ErrInvalidLayer)
	}
	if l.Opacity < 0 || l.Opacity > 1 {
		return fmt.Errorf("%w: opacity must be between 0 and 1, got %v", ErrInvalidLayer, l.Opacity)
	}
	switch l.Type {
	case RasterOSM, RasterOdoo:
	case RasterWMTS:
		if l.URL == "" || l.MatrixSet == "" {
			return fmt.Errorf("%w: wmts layer %q needs url and matrix_set", ErrInvalidLayer, l.Name)
		}
	case RasterDWMS:
		if l.URL == "" {
			return fmt.Errorf("%w: d_wms layer %q needs url", ErrInvalidLayer, l.Name)
		}
	case RasterMapbox:
		if !hasMapboxToken {
			return fmt.Errorf("%w: mapbox layer %q needs a mapbox token", ErrInvalidLayer, l.Name)
		}
		if l.MapboxStyle == "" {
			return fmt.Errorf("%w: mapbox layer %q needs a style", ErrInvalidLayer, l.Name)
		}
	default:
		return fmt.Errorf("%w: unknown raster type %q", ErrInvalidLayer, l.Type)
	}
	return nil
}

// Representation is how a vector layer styles its features.
type Representation string

const (
	ReprBasic      Representation = "basic"
	ReprColored    Representation = "colored"
	ReprProportion Representation = "proportion"
)

// Classification is how a colored layer buckets attribute values.
type Classification string

const (
	ClassInterval Classification = "interval"
	ClassQuantile Classification = "quantile"
	ClassCustom   Classification = "custom"
)

// VectorLayer draws the geometry field of records on a map view.
type VectorLayer struct {
	ID             string         `json:"id" yaml:"-"`
	View           string         `json:"view" yaml:"view"`
	Name           string         `json:"name" yaml:"name"`
	GeoField       string         `json:"geo_field" yaml:"geo_field"`
	Representation Representation `json:"representation" yaml:"representation"`
	AttributeField string         `json:"attribute_field,omitempty" yaml:"attribute_field"`
	BeginColor     string         `json:"begin_color,omitempty" yaml:"begin_color"`
	EndColor       string         `json:"end_color,omitempty" yaml:"end_color"`
	Classification Classification `json:"classification,omitempty" yaml:"classification"`
	Classes        int            `json:"classes,omitempty" yaml:"classes"`
	Active         bool           `json:"active" yaml:"active"`
	Sequence       int            `json:"sequence" yaml:"sequence"`
	CreatedAt      time.Time      `json:"created_at" yaml:"-"`
}

// Validate checks representation-specific attributes.
func (l *VectorLayer) Validate() error {
	if l.Name == "" || l.GeoField == "" {
		return fmt.Errorf("%w: vector layer needs name and geo_field", ErrInvalidLayer)
	}
	switch l.Representation {
	case ReprBasic:
	case ReprColored, ReprProportion:
		if l.AttributeField == "" {
			return fmt.Errorf("%w: %s layer %q needs an attribute field", ErrInvalidLayer, l.Representation, l.Name)
		}
	default:
		return fmt.Errorf("%w: unknown representation %q", ErrInvalidLayer, l.Representation)
	}
	if l.Representation == ReprColored {
		switch l.Classification {
		case ClassInterval, ClassQuantile, ClassCustom:
		default:
			return fmt.Errorf("%w: colored layer %q needs a classification", ErrInvalidLayer, l.Name)
		}
		if l.Classes <= 0 {
			return fmt.Errorf("%w: colored layer %q needs a positive class count", ErrInvalidLayer, l.Name)
		}
	}
	return nil
}
