package usecases

import (
	"context"
	"strings"

	"github.com/samirrijal/geoengine/internal/core/ports"
)

// MapboxTokenKey is the configuration parameter holding the Mapbox token.
const MapboxTokenKey = "base_geoengine.token_mapbox"

// SessionInfo is the client bootstrap payload for map views.
type SessionInfo struct {
	Version     string `json:"server_version"`
	SRID        int    `json:"srid"`
	MapboxToken string `json:"mapbox_token"`
}

// SettingsService reads and writes geoengine settings.
type SettingsService struct {
	params  ports.ParameterRepository
	version string
	srid    int
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(params ports.ParameterRepository, version string, srid int) *SettingsService {
	return &SettingsService{params: params, version: version, srid: srid}
}

// MapboxToken returns the stored token, "" when unset.
func (s *SettingsService) MapboxToken(ctx context.Context) (string, error) {
	return s.params.Get(ctx, MapboxTokenKey)
}

// SetMapboxToken stores the token; blank input clears it.
func (s *SettingsService) SetMapboxToken(ctx context.Context, token string) error {
	return s.params.Set(ctx, MapboxTokenKey, strings.TrimSpace(token))
}

// SessionInfo extends the session bootstrap with map settings.
func (s *SettingsService) SessionInfo(ctx context.Context) (*SessionInfo, error) {
	token, err := s.MapboxToken(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionInfo{Version: s.version, SRID: s.srid, MapboxToken: token}, nil
}
