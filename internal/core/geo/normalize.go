package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// Sniff picks the text encoding Normalize will use for s.
func Sniff(s string, preferWKB bool) Encoding {
	switch {
	case strings.HasPrefix(strings.TrimSpace(s), "{"):
		return EncodingGeoJSON
	case preferWKB:
		return EncodingWKB
	default:
		return EncodingWKT
	}
}

// Normalize converts value into a Geometry.
//
// Resolution order, first match wins:
//   - nil, "" or empty bytes: the empty geometry collection
//   - text starting with '{': GeoJSON (geometry, Feature or GeometryCollection)
//   - text with preferWKB: hex WKB or PostGIS hex EWKB
//   - other text: WKT
//   - map[string]any: a decoded GeoJSON structure
//   - Geometry: returned as is
//   - geom.T: wrapped
//   - WKTer: its WKT is parsed
//
// Anything else yields a *TypeError. Parse failures yield a *FormatError.
func Normalize(value any, preferWKB bool) (Geometry, error) {
	switch v := value.(type) {
	case nil:
		return Empty(), nil
	case string:
		return normalizeText(v, preferWKB)
	case []byte:
		return normalizeText(string(v), preferWKB)
	case json.RawMessage:
		return normalizeText(string(v), preferWKB)
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return Geometry{}, formatErr(EncodingGeoJSON, err)
		}
		return parseGeoJSON(data)
	case Geometry:
		return v, nil
	case *Geometry:
		if v == nil {
			return Empty(), nil
		}
		return *v, nil
	case geom.T:
		if isNilT(v) {
			return Empty(), nil
		}
		if err := validate(v); err != nil {
			return Geometry{}, formatErr(EncodingWKT, err)
		}
		return FromT(v), nil
	case WKTer:
		return parseWKT(v.WKT())
	default:
		return Geometry{}, &TypeError{Value: value}
	}
}

// isNilT reports a nil interface or a typed nil pointer behind it.
func isNilT(t geom.T) bool {
	if t == nil {
		return true
	}
	rv := reflect.ValueOf(t)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// MustNormalize is like Normalize but panics on error. Intended for constants and tests.
func MustNormalize(value any) Geometry {
	g, err := Normalize(value, false)
	if err != nil {
		panic(err)
	}
	return g
}

func normalizeText(s string, preferWKB bool) (Geometry, error) {
	if s == "" {
		return Empty(), nil
	}
	switch Sniff(s, preferWKB) {
	case EncodingGeoJSON:
		return parseGeoJSON([]byte(s))
	case EncodingWKB:
		return parseHexWKB(strings.TrimSpace(s))
	default:
		return parseWKT(s)
	}
}

func parseWKT(s string) (Geometry, error) {
	t, err := wkt.Unmarshal(strings.TrimSpace(s))
	if err != nil {
		return Geometry{}, formatErr(EncodingWKT, err)
	}
	if err := validate(t); err != nil {
		return Geometry{}, formatErr(EncodingWKT, err)
	}
	return FromT(t), nil
}

func parseHexWKB(s string) (Geometry, error) {
	t, err := ewkbhex.Decode(s)
	if err != nil {
		return Geometry{}, formatErr(EncodingWKB, err)
	}
	if err := validate(t); err != nil {
		return Geometry{}, formatErr(EncodingWKB, err)
	}
	return FromT(t), nil
}

type envelope struct {
	Type     string          `json:"type"`
	Geometry json.RawMessage `json:"geometry"`
}

func parseGeoJSON(data []byte) (Geometry, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Geometry{}, formatErr(EncodingGeoJSON, err)
	}
	switch env.Type {
	case "":
		return Geometry{}, formatErr(EncodingGeoJSON, errors.New("missing type member"))
	case "Feature":
		if len(env.Geometry) == 0 || string(env.Geometry) == "null" {
			return Empty(), nil
		}
		return parseGeoJSON(env.Geometry)
	case "FeatureCollection":
		return Geometry{}, formatErr(EncodingGeoJSON, fmt.Errorf("unsupported type %q", env.Type))
	}

	var t geom.T
	if err := geojson.Unmarshal(data, &t); err != nil {
		return Geometry{}, formatErr(EncodingGeoJSON, err)
	}
	if t == nil {
		return Geometry{}, formatErr(EncodingGeoJSON, fmt.Errorf("type %q carries no geometry", env.Type))
	}
	if err := validate(t); err != nil {
		return Geometry{}, formatErr(EncodingGeoJSON, err)
	}
	return FromT(t), nil
}

// Probe round-trips a sample through every encoder so binaries can fail fast
// at startup when the geometry stack is unusable.
func Probe() error {
	sample, err := Normalize("POINT (6.1 46.2)", false)
	if err != nil {
		return fmt.Errorf("probe wkt: %w", err)
	}
	gj, err := sample.GeoJSON()
	if err != nil {
		return fmt.Errorf("probe geojson encode: %w", err)
	}
	if _, err := Normalize(string(gj), false); err != nil {
		return fmt.Errorf("probe geojson decode: %w", err)
	}
	hex, err := sample.HexEWKB()
	if err != nil {
		return fmt.Errorf("probe wkb encode: %w", err)
	}
	back, err := Normalize(hex, true)
	if err != nil {
		return fmt.Errorf("probe wkb decode: %w", err)
	}
	if !back.Equal(sample, 1e-9) {
		return errors.New("probe: wkb round trip mismatch")
	}
	return nil
}
