package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ligustah/geogate/internal/geo"
	"github.com/ligustah/geogate/internal/progress"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv.
const EnvPrefix = "GEOGATE_"

// Location providers.
const (
	ProviderStatic = "static"
	ProviderIP     = "ip"
	ProviderDenied = "denied"
	ProviderNone   = "none"
)

// Config defines configuration for the geogate CLI.
type Config struct {
	StateURL    string          `yaml:"state_url"`
	OutputURL   string          `yaml:"output_url"`
	Locale      string          `yaml:"locale"`
	LogLevel    string          `yaml:"log_level"`
	CatalogFile string          `yaml:"catalog_file"`
	MetricsFile string          `yaml:"metrics_file"`
	Progress    bool            `yaml:"progress"`
	Location    LocationConfig  `yaml:"location"`
	Timing      TimingConfig    `yaml:"timing"`
	Retrieval   RetrievalConfig `yaml:"retrieval"`
	Retry       RetryConfig     `yaml:"retry"`
}

// LocationConfig selects and configures the position provider.
type LocationConfig struct {
	Provider  string        `yaml:"provider"`
	Latitude  float64       `yaml:"latitude"`
	Longitude float64       `yaml:"longitude"`
	Endpoint  string        `yaml:"endpoint"`
	Timeout   time.Duration `yaml:"timeout"`
}

// TimingConfig holds the workflow display timings.
type TimingConfig struct {
	VerifyDelay    time.Duration `yaml:"verify_delay"`
	SuccessDisplay time.Duration `yaml:"success_display"`
	ErrorDisplay   time.Duration `yaml:"error_display"`
}

// RetrievalConfig bounds document retrieval.
type RetrievalConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	MaxSize int64         `yaml:"max_size"`
}

// RetryConfig defines retry behavior.
type RetryConfig struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns a Config with sensible defaults. StateURL and OutputURL are
// left empty for the CLI to resolve against the working directory.
func Default() Config {
	return Config{
		Locale:   "hi-IN",
		LogLevel: "info",
		Location: LocationConfig{
			Provider: ProviderIP,
			Endpoint: geo.DefaultIPEndpoint,
			Timeout:  10 * time.Second,
		},
		Timing: TimingConfig{
			VerifyDelay:    1500 * time.Millisecond,
			SuccessDisplay: 3000 * time.Millisecond,
			ErrorDisplay:   4000 * time.Millisecond,
		},
		Retrieval: RetrievalConfig{
			Timeout: 30 * time.Second,
			MaxSize: 50 * 1024 * 1024, // 50MB
		},
		Retry: RetryConfig{
			Attempts:   0,
			Backoff:    500 * time.Millisecond,
			MaxBackoff: 5 * time.Second,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations and sizes.
type yamlConfig struct {
	StateURL    string              `yaml:"state_url"`
	OutputURL   string              `yaml:"output_url"`
	Locale      string              `yaml:"locale"`
	LogLevel    string              `yaml:"log_level"`
	CatalogFile string              `yaml:"catalog_file"`
	MetricsFile string              `yaml:"metrics_file"`
	Progress    bool                `yaml:"progress"`
	Location    yamlLocationConfig  `yaml:"location"`
	Timing      yamlTimingConfig    `yaml:"timing"`
	Retrieval   yamlRetrievalConfig `yaml:"retrieval"`
	Retry       yamlRetryConfig     `yaml:"retry"`
}

type yamlLocationConfig struct {
	Provider  string   `yaml:"provider"`
	Latitude  *float64 `yaml:"latitude"`
	Longitude *float64 `yaml:"longitude"`
	Endpoint  string   `yaml:"endpoint"`
	Timeout   string   `yaml:"timeout"`
}

type yamlTimingConfig struct {
	VerifyDelay    string `yaml:"verify_delay"`
	SuccessDisplay string `yaml:"success_display"`
	ErrorDisplay   string `yaml:"error_display"`
}

type yamlRetrievalConfig struct {
	Timeout string `yaml:"timeout"`
	MaxSize string `yaml:"max_size"`
}

type yamlRetryConfig struct {
	Attempts   *int   `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file on top of Default.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	setString(&cfg.StateURL, yc.StateURL)
	setString(&cfg.OutputURL, yc.OutputURL)
	setString(&cfg.Locale, yc.Locale)
	setString(&cfg.LogLevel, yc.LogLevel)
	setString(&cfg.CatalogFile, yc.CatalogFile)
	setString(&cfg.MetricsFile, yc.MetricsFile)
	cfg.Progress = yc.Progress

	setString(&cfg.Location.Provider, yc.Location.Provider)
	setString(&cfg.Location.Endpoint, yc.Location.Endpoint)
	if yc.Location.Latitude != nil {
		cfg.Location.Latitude = *yc.Location.Latitude
	}
	if yc.Location.Longitude != nil {
		cfg.Location.Longitude = *yc.Location.Longitude
	}

	durations := []struct {
		key string
		val string
		dst *time.Duration
	}{
		{"location.timeout", yc.Location.Timeout, &cfg.Location.Timeout},
		{"timing.verify_delay", yc.Timing.VerifyDelay, &cfg.Timing.VerifyDelay},
		{"timing.success_display", yc.Timing.SuccessDisplay, &cfg.Timing.SuccessDisplay},
		{"timing.error_display", yc.Timing.ErrorDisplay, &cfg.Timing.ErrorDisplay},
		{"retrieval.timeout", yc.Retrieval.Timeout, &cfg.Retrieval.Timeout},
		{"retry.backoff", yc.Retry.Backoff, &cfg.Retry.Backoff},
		{"retry.max_backoff", yc.Retry.MaxBackoff, &cfg.Retry.MaxBackoff},
	}
	for _, d := range durations {
		if d.val == "" {
			continue
		}
		v, err := time.ParseDuration(d.val)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if yc.Retrieval.MaxSize != "" {
		size, err := progress.ParseBytes(yc.Retrieval.MaxSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse retrieval.max_size: %w", err)
		}
		cfg.Retrieval.MaxSize = size
	}
	if yc.Retry.Attempts != nil {
		cfg.Retry.Attempts = *yc.Retry.Attempts
	}

	return cfg, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and existing variables win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the GEOGATE_ prefix.
func (c *Config) LoadFromEnv() error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"STATE_URL", &c.StateURL},
		{"OUTPUT_URL", &c.OutputURL},
		{"LOCALE", &c.Locale},
		{"LOG_LEVEL", &c.LogLevel},
		{"CATALOG_FILE", &c.CatalogFile},
		{"METRICS_FILE", &c.MetricsFile},
		{"LOCATION_PROVIDER", &c.Location.Provider},
		{"LOCATION_ENDPOINT", &c.Location.Endpoint},
	}
	for _, s := range strs {
		if v := os.Getenv(EnvPrefix + s.name); v != "" {
			*s.dst = v
		}
	}

	if v := os.Getenv(EnvPrefix + "PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"LOCATION_LATITUDE", &c.Location.Latitude},
		{"LOCATION_LONGITUDE", &c.Location.Longitude},
	}
	for _, f := range floats {
		if v := os.Getenv(EnvPrefix + f.name); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("parse %s%s: %w", EnvPrefix, f.name, err)
			}
			*f.dst = n
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"LOCATION_TIMEOUT", &c.Location.Timeout},
		{"VERIFY_DELAY", &c.Timing.VerifyDelay},
		{"SUCCESS_DISPLAY", &c.Timing.SuccessDisplay},
		{"ERROR_DISPLAY", &c.Timing.ErrorDisplay},
		{"RETRIEVAL_TIMEOUT", &c.Retrieval.Timeout},
		{"RETRY_BACKOFF", &c.Retry.Backoff},
		{"RETRY_MAX_BACKOFF", &c.Retry.MaxBackoff},
	}
	for _, d := range durations {
		if v := os.Getenv(EnvPrefix + d.name); v != "" {
			n, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("parse %s%s: %w", EnvPrefix, d.name, err)
			}
			*d.dst = n
		}
	}

	if v := os.Getenv(EnvPrefix + "RETRIEVAL_MAX_SIZE"); v != "" {
		size, err := progress.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse %sRETRIEVAL_MAX_SIZE: %w", EnvPrefix, err)
		}
		c.Retrieval.MaxSize = size
	}
	if v := os.Getenv(EnvPrefix + "RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sRETRY_ATTEMPTS: %w", EnvPrefix, err)
		}
		c.Retry.Attempts = n
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Location.Provider {
	case ProviderStatic:
		if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
			return errors.New("config: location.latitude must be within [-90, 90]")
		}
		if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
			return errors.New("config: location.longitude must be within [-180, 180]")
		}
	case ProviderIP:
		if c.Location.Endpoint == "" {
			return errors.New("config: location.endpoint is required for the ip provider")
		}
	case ProviderDenied, ProviderNone:
	default:
		return fmt.Errorf("config: unknown location.provider %q", c.Location.Provider)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}

	if c.Locale == "" {
		return errors.New("config: locale is required")
	}
	if c.Location.Timeout <= 0 {
		return errors.New("config: location.timeout must be positive")
	}
	if c.Timing.VerifyDelay <= 0 || c.Timing.SuccessDisplay <= 0 || c.Timing.ErrorDisplay <= 0 {
		return errors.New("config: timings must be positive")
	}
	if c.Retrieval.Timeout <= 0 {
		return errors.New("config: retrieval.timeout must be positive")
	}
	if c.Retrieval.MaxSize <= 0 {
		return errors.New("config: retrieval.max_size must be positive")
	}
	if c.Retry.Attempts < 0 {
		return errors.New("config: retry.attempts must not be negative")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	setString(&c.StateURL, override.StateURL)
	setString(&c.OutputURL, override.OutputURL)
	setString(&c.Locale, override.Locale)
	setString(&c.LogLevel, override.LogLevel)
	setString(&c.CatalogFile, override.CatalogFile)
	setString(&c.MetricsFile, override.MetricsFile)
	if override.Progress {
		c.Progress = true
	}

	setString(&c.Location.Provider, override.Location.Provider)
	setString(&c.Location.Endpoint, override.Location.Endpoint)
	if override.Location.Latitude != 0 {
		c.Location.Latitude = override.Location.Latitude
	}
	if override.Location.Longitude != 0 {
		c.Location.Longitude = override.Location.Longitude
	}
	if override.Location.Timeout != 0 {
		c.Location.Timeout = override.Location.Timeout
	}

	if override.Timing.VerifyDelay != 0 {
		c.Timing.VerifyDelay = override.Timing.VerifyDelay
	}
	if override.Timing.SuccessDisplay != 0 {
		c.Timing.SuccessDisplay = override.Timing.SuccessDisplay
	}
	if override.Timing.ErrorDisplay != 0 {
		c.Timing.ErrorDisplay = override.Timing.ErrorDisplay
	}

	if override.Retrieval.Timeout != 0 {
		c.Retrieval.Timeout = override.Retrieval.Timeout
	}
	if override.Retrieval.MaxSize != 0 {
		c.Retrieval.MaxSize = override.Retrieval.MaxSize
	}

	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	return c
}
