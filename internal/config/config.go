package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	GeocodingAPIURL string
	ForecastAPIURL  string
	UpstreamTimeout time.Duration

	RequestTimeout time.Duration

	DefaultUnits string // "metric" or "imperial"

	QueryMinLength int
	QueryMaxLength int

	RateLimitRPS   int
	RateLimitBurst int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration

	HealthErrorWindow time.Duration
	HealthErrorPct    int
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	GeocodingAPI struct {
		URL string `yaml:"url"`
	} `yaml:"geocoding_api"`

	ForecastAPI struct {
		URL string `yaml:"url"`
	} `yaml:"forecast_api"`

	Upstream struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"upstream"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Units struct {
		Default string `yaml:"default"`
	} `yaml:"units"`

	Query struct {
		MinLength int `yaml:"min_length"`
		MaxLength int `yaml:"max_length"`
	} `yaml:"query"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`

	Health struct {
		ErrorWindow string `yaml:"error_window"`
		ErrorPct    int    `yaml:"error_pct"`
	} `yaml:"health"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) with
// env overrides. A missing config file is not an error; every value has a
// default and the upstream APIs need no key. A .env file, when present, is
// loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	var fc fileConfig
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = os.Getenv("PORT")
	if cfg.ServerPort == "" {
		cfg.ServerPort = fc.Server.Port
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.GeocodingAPIURL = os.Getenv("GEOCODING_API_URL")
	if cfg.GeocodingAPIURL == "" {
		cfg.GeocodingAPIURL = fc.GeocodingAPI.URL
	}
	if cfg.GeocodingAPIURL == "" {
		cfg.GeocodingAPIURL = "https://geocoding-api.open-meteo.com/v1/search"
	}

	cfg.ForecastAPIURL = os.Getenv("FORECAST_API_URL")
	if cfg.ForecastAPIURL == "" {
		cfg.ForecastAPIURL = fc.ForecastAPI.URL
	}
	if cfg.ForecastAPIURL == "" {
		cfg.ForecastAPIURL = "https://api.open-meteo.com/v1/forecast"
	}

	cfg.UpstreamTimeout = parseDuration(fc.Upstream.Timeout, 10*time.Second)
	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 25*time.Second)

	cfg.DefaultUnits = strings.TrimSpace(strings.ToLower(os.Getenv("DEFAULT_UNITS")))
	if cfg.DefaultUnits == "" {
		cfg.DefaultUnits = strings.TrimSpace(strings.ToLower(fc.Units.Default))
	}
	if cfg.DefaultUnits == "" {
		cfg.DefaultUnits = "metric"
	}

	cfg.QueryMinLength = fc.Query.MinLength
	if cfg.QueryMinLength <= 0 {
		cfg.QueryMinLength = 1
	}
	cfg.QueryMaxLength = fc.Query.MaxLength
	if cfg.QueryMaxLength <= 0 {
		cfg.QueryMaxLength = 100
	}

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 100
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 250
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	cfg.HealthErrorWindow = parseDuration(fc.Health.ErrorWindow, 60*time.Second)
	cfg.HealthErrorPct = fc.Health.ErrorPct
	if cfg.HealthErrorPct <= 0 {
		cfg.HealthErrorPct = 50
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal on empty
// input, parse error, or a non-positive result.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation. RequestTimeout must exceed the
// upstream timeout so one slow upstream call cannot eat the whole budget of
// the two-call chain.
func validate(cfg *Config) error {
	switch cfg.DefaultUnits {
	case "metric", "imperial":
	default:
		return fmt.Errorf("units.default must be metric or imperial, got %q", cfg.DefaultUnits)
	}
	if cfg.RequestTimeout <= cfg.UpstreamTimeout {
		cfg.RequestTimeout = 2*cfg.UpstreamTimeout + time.Second
	}
	if cfg.QueryMinLength > cfg.QueryMaxLength {
		return fmt.Errorf("query.min_length %d exceeds query.max_length %d", cfg.QueryMinLength, cfg.QueryMaxLength)
	}
	return nil
}
