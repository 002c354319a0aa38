package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/samirrijal/geoengine/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Geoengine GeoengineConfig `mapstructure:"geoengine"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// GeocoderConfig points at a Nominatim-compatible search service.
type GeocoderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// GeoengineConfig holds geometry defaults.
type GeoengineConfig struct {
	SRID        int    `mapstructure:"srid"`
	PartnerSync string `mapstructure:"partner_sync"`
}

// SyncMode returns PartnerSync as a domain value.
func (g GeoengineConfig) SyncMode() domain.SyncMode {
	return domain.SyncMode(g.PartnerSync)
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	// Local development: a .env file, if present, seeds the environment.
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "geoengine")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "geoengine")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "geolocalize-queue")
	v.SetDefault("geocoder.base_url", "http://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.user_agent", "geoengine-geolocalize/1.0")
	v.SetDefault("geocoder.timeout", 0)
	v.SetDefault("geoengine.srid", 4326)
	v.SetDefault("geoengine.partner_sync", string(domain.SyncCoordinates))

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GEOENGINE_DATABASE_HOST → database.host
	v.SetEnvPrefix("GEOENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Geocoder.BaseURL == "" {
		errs = append(errs, "geocoder.base_url is required")
	}
	if c.Geocoder.UserAgent == "" {
		errs = append(errs, "geocoder.user_agent is required")
	}
	if c.Geocoder.Timeout < 0 {
		errs = append(errs, "geocoder.timeout must not be negative")
	}
	if c.Geoengine.SRID <= 0 {
		errs = append(errs, fmt.Sprintf("geoengine.srid must be positive, got %d", c.Geoengine.SRID))
	}
	switch c.Geoengine.SyncMode() {
	case domain.SyncCoordinates, domain.SyncGeometry, domain.SyncNone:
	default:
		errs = append(errs, fmt.Sprintf("geoengine.partner_sync must be coordinates, geometry or none, got %q", c.Geoengine.PartnerSync))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
