package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ausclim/heatgrid/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Station archive source.
	ArchiveBaseURL   string        `envconfig:"ARCHIVE_BASE_URL" default:"http://www.bom.gov.au/climate/change/acorn-sat/daily"`
	ArchiveTimeout   time.Duration `envconfig:"ARCHIVE_TIMEOUT" default:"30s"`
	StationID        string        `envconfig:"STATION_ID" default:"086338"`
	DatasetCacheSize int           `envconfig:"DATASET_CACHE_SIZE" default:"16"`

	// Default grid parameters, overridable per request.
	SummerThresholds string `envconfig:"SUMMER_THRESHOLDS" default:"35,40,45"`
	WinterThresholds string `envconfig:"WINTER_THRESHOLDS" default:"0,2,5"`

	// Precision is the number of label decimal places; -1 selects dynamic
	// detection from the data.
	Precision int `envconfig:"PRECISION" default:"-1"`
}

// Load reads configuration from the environment, applying defaults where
// unset. A local .env file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.ArchiveBaseURL == "" {
		return nil, fmt.Errorf("ARCHIVE_BASE_URL is required")
	}
	if cfg.ArchiveTimeout <= 0 {
		return nil, fmt.Errorf("ARCHIVE_TIMEOUT must be positive")
	}
	if cfg.DatasetCacheSize <= 0 {
		return nil, fmt.Errorf("DATASET_CACHE_SIZE must be positive")
	}
	if cfg.Precision < -1 {
		return nil, fmt.Errorf("PRECISION must be -1 (dynamic) or non-negative")
	}
	if _, err := ParseThresholds(cfg.SummerThresholds); err != nil {
		return nil, fmt.Errorf("SUMMER_THRESHOLDS: %w", err)
	}
	if _, err := ParseThresholds(cfg.WinterThresholds); err != nil {
		return nil, fmt.Errorf("WINTER_THRESHOLDS: %w", err)
	}

	return &cfg, nil
}

// ParseThresholds parses a "t1,t2,t3" list into ascending cutoffs.
func ParseThresholds(s string) (domain.Thresholds, error) {
	var th domain.Thresholds
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return th, fmt.Errorf("expected 3 comma-separated values, got %d", len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return th, fmt.Errorf("value %q is not a number", strings.TrimSpace(p))
		}
		th[i] = v
	}
	if err := th.Validate(); err != nil {
		return th, err
	}
	return th, nil
}

// DefaultThresholds returns the configured cutoffs for a season.
func (c *Config) DefaultThresholds(season domain.Season) (domain.Thresholds, error) {
	if season == domain.SeasonWinter {
		return ParseThresholds(c.WinterThresholds)
	}
	return ParseThresholds(c.SummerThresholds)
}

// PrecisionOverride maps the configured precision to the classifier's
// optional parameter: nil when dynamic detection is selected.
func (c *Config) PrecisionOverride() *int {
	if c.Precision < 0 {
		return nil
	}
	p := c.Precision
	return &p
}
