// Package nominatim implements ports.Geocoder against an OpenStreetMap
// Nominatim search endpoint.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/pkg/telemetry"
)

const (
	DefaultBaseURL   = "http://nominatim.openstreetmap.org"
	DefaultUserAgent = "geoengine-geolocalize/1.0"
)

// Client queries /search with a structured address.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a Client. A zero timeout keeps the http.Client default.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search returns at most one candidate for addr.
func (c *Client) Search(ctx context.Context, addr domain.Address) ([]domain.GeocodeResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanGeocodeSearch)
	defer span.End()

	reqURL := c.baseURL + "/search?" + searchParams(addr).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &domain.GeocodingError{Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.GeocodingError{Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.GeocodingError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("nominatim: %s", strings.TrimSpace(string(body))),
		}
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, &domain.GeocodingError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(results) > 1 {
		results = results[:1]
	}

	out := make([]domain.GeocodeResult, 0, len(results))
	for _, r := range results {
		out = append(out, domain.GeocodeResult{Lat: r.Lat, Lon: r.Lon, DisplayName: r.DisplayName})
	}
	return out, nil
}

// searchParams builds the structured query. Blank address parts are omitted.
func searchParams(addr domain.Address) url.Values {
	params := url.Values{}
	params.Set("limit", "1")
	params.Set("format", "json")
	set := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			params.Set(k, v)
		}
	}
	set("street", addr.Street)
	set("postalCode", addr.PostalCode)
	set("city", addr.City)
	set("state", addr.State)
	set("country", addr.Country)
	set("countryCodes", strings.ToLower(addr.CountryCode))
	return params
}
