package config_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/geoengine/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("geoengine-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Geoengine.SRID != 4326 {
		t.Errorf("expected default srid 4326, got %d", cfg.Geoengine.SRID)
	}
	if cfg.Geoengine.PartnerSync != "coordinates" {
		t.Errorf("expected default partner_sync coordinates, got %s", cfg.Geoengine.PartnerSync)
	}
	if cfg.Geocoder.BaseURL != "http://nominatim.openstreetmap.org" {
		t.Errorf("unexpected geocoder url %s", cfg.Geocoder.BaseURL)
	}
	if cfg.Telemetry.ServiceName != "geoengine-test" {
		t.Errorf("expected service name from Load argument, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEOENGINE_GEOENGINE_PARTNER_SYNC", "geometry")
	t.Setenv("GEOENGINE_SERVER_PORT", "9090")

	cfg, err := config.Load("geoengine-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Geoengine.PartnerSync != "geometry" {
		t.Errorf("expected geometry, got %s", cfg.Geoengine.PartnerSync)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := &config.Config{}
	cfg.Geoengine.PartnerSync = "sideways"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "database.host", "geocoder.base_url", "partner_sync"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s: %v", want, err)
		}
	}
}
