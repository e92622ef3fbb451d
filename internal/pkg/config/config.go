package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	OSRM      OSRMConfig      `mapstructure:"osrm"`
	Elevation ElevationConfig `mapstructure:"elevation"`
	Overpass  OverpassConfig  `mapstructure:"overpass"`
	Pois      PoisConfig      `mapstructure:"pois"`
	Import    ImportConfig    `mapstructure:"import"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
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
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

// OSRMConfig configures the routing provider. Servers are tried in order;
// the public demo server is the standing fallback.
type OSRMConfig struct {
	Servers        []string `mapstructure:"servers"`
	Profile        string   `mapstructure:"profile"`
	MaxWaypoints   int      `mapstructure:"max_waypoints"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
}

// ElevationConfig points at the raster-sampling helper script and the DEM
// tile it reads.
type ElevationConfig struct {
	Python         string `mapstructure:"python"`
	Script         string `mapstructure:"script"`
	DEMPath        string `mapstructure:"dem_path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type OverpassConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// PoisConfig selects the POI matching strategy and its limits.
type PoisConfig struct {
	// Source is "overpass" (live API) or "database" (imported store).
	Source           string `mapstructure:"source"`
	DefaultRadius    int    `mapstructure:"default_radius"`
	PerCategoryLimit int    `mapstructure:"per_category_limit"`
}

// ImportConfig bounds the regional POI import.
type ImportConfig struct {
	// BBox is "south,west,north,east" in degrees.
	BBox string `mapstructure:"bbox"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "senderos")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "senderos")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("osrm.servers", []string{"https://router.project-osrm.org/route/v1"})
	v.SetDefault("osrm.profile", "foot")
	v.SetDefault("osrm.max_waypoints", 25)
	v.SetDefault("osrm.timeout_seconds", 10)
	v.SetDefault("elevation.python", "python3")
	v.SetDefault("elevation.script", "scripts/add_elevation.py")
	v.SetDefault("elevation.dem_path", "mdt/136_MDT25_GC.tif")
	v.SetDefault("elevation.timeout_seconds", 20)
	v.SetDefault("overpass.url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_seconds", 25)
	v.SetDefault("pois.source", "overpass")
	v.SetDefault("pois.default_radius", 1000)
	v.SetDefault("pois.per_category_limit", 15)
	v.SetDefault("import.bbox", "27.5,-16.0,28.4,-15.0") // Gran Canaria
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SENDEROS_OSRM_PROFILE → osrm.profile
	v.SetEnvPrefix("SENDEROS")
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
	if len(c.OSRM.Servers) == 0 {
		errs = append(errs, "osrm.servers must list at least one server")
	}
	if c.OSRM.Profile == "" {
		errs = append(errs, "osrm.profile is required")
	}
	if c.OSRM.MaxWaypoints < 2 {
		errs = append(errs, fmt.Sprintf("osrm.max_waypoints must be at least 2, got %d", c.OSRM.MaxWaypoints))
	}
	switch c.Pois.Source {
	case "overpass", "database":
	default:
		errs = append(errs, fmt.Sprintf("pois.source must be overpass or database, got %q", c.Pois.Source))
	}
	if c.Pois.Source == "database" && c.Database.Host == "" {
		errs = append(errs, "database.host is required when pois.source is database")
	}
	if c.Pois.DefaultRadius <= 0 {
		errs = append(errs, "pois.default_radius must be positive")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
