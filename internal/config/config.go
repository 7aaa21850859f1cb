package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Firms    FirmsConfig    `yaml:"firms" mapstructure:"firms"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	OSRM     OSRMConfig     `yaml:"osrm" mapstructure:"osrm"`
	Coverage CoverageConfig `yaml:"coverage" mapstructure:"coverage"`
	Guidance GuidanceConfig `yaml:"guidance" mapstructure:"guidance"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// FirmsConfig holds NASA FIRMS fire feed settings.
type FirmsConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	Source    string  `yaml:"source" mapstructure:"source"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// OverpassConfig holds OSM Overpass settings.
type OverpassConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// OSRMConfig holds OSRM routing settings.
type OSRMConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	Profile   string  `yaml:"profile" mapstructure:"profile"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// CoverageConfig configures the cell-coverage heuristic.
type CoverageConfig struct {
	InterferenceRadiusKm float64 `yaml:"interference_radius_km" mapstructure:"interference_radius_km"`
}

// GuidanceConfig configures the guidance pipeline search radii.
type GuidanceConfig struct {
	FireSearchRadiusKm  float64 `yaml:"fire_search_radius_km" mapstructure:"fire_search_radius_km"`
	PlaceSearchRadiusKm float64 `yaml:"place_search_radius_km" mapstructure:"place_search_radius_km"`
	DangerZoneRadiusKm  float64 `yaml:"danger_zone_radius_km" mapstructure:"danger_zone_radius_km"`
}

// Validate checks the configuration for the given run mode ("guide" or
// "serve"). Collaborator credentials are deliberately not required: a missing
// FIRMS key degrades the result with a warning instead of refusing to start.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Guidance.FireSearchRadiusKm <= 0 {
		problems = append(problems, "guidance.fire_search_radius_km must be > 0")
	}
	if c.Guidance.PlaceSearchRadiusKm <= 0 {
		problems = append(problems, "guidance.place_search_radius_km must be > 0")
	}
	if c.Guidance.DangerZoneRadiusKm <= 0 {
		problems = append(problems, "guidance.danger_zone_radius_km must be > 0")
	}

	switch mode {
	case "guide":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EVAC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("firms.base_url", "https://firms.modaps.eosdis.nasa.gov")
	v.SetDefault("firms.source", "VIIRS_SNPP_NRT")
	v.SetDefault("firms.rate_limit", 5)
	v.SetDefault("overpass.base_url", "https://overpass-api.de")
	v.SetDefault("overpass.rate_limit", 1)
	v.SetDefault("osrm.base_url", "https://router.project-osrm.org")
	v.SetDefault("osrm.profile", "driving")
	v.SetDefault("osrm.rate_limit", 1)
	v.SetDefault("coverage.interference_radius_km", 10)
	v.SetDefault("guidance.fire_search_radius_km", 50)
	v.SetDefault("guidance.place_search_radius_km", 20)
	v.SetDefault("guidance.danger_zone_radius_km", 5)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
