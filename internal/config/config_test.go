package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ligustah/geogate/internal/geo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Locale != "hi-IN" {
		t.Errorf("expected default locale hi-IN, got %s", cfg.Locale)
	}
	if cfg.Location.Provider != ProviderIP {
		t.Errorf("expected default provider ip, got %s", cfg.Location.Provider)
	}
	if cfg.Location.Endpoint != geo.DefaultIPEndpoint {
		t.Errorf("expected default endpoint %s, got %s", geo.DefaultIPEndpoint, cfg.Location.Endpoint)
	}
	if cfg.Location.Timeout != 10*time.Second {
		t.Errorf("expected default location timeout 10s, got %v", cfg.Location.Timeout)
	}
	if cfg.Timing.VerifyDelay != 1500*time.Millisecond {
		t.Errorf("expected verify delay 1500ms, got %v", cfg.Timing.VerifyDelay)
	}
	if cfg.Timing.SuccessDisplay != 3*time.Second {
		t.Errorf("expected success display 3s, got %v", cfg.Timing.SuccessDisplay)
	}
	if cfg.Timing.ErrorDisplay != 4*time.Second {
		t.Errorf("expected error display 4s, got %v", cfg.Timing.ErrorDisplay)
	}
	if cfg.Retrieval.MaxSize != 50*1024*1024 {
		t.Errorf("expected max size 50MB, got %d", cfg.Retrieval.MaxSize)
	}
	if cfg.Retry.Attempts != 0 {
		t.Errorf("expected no retries by default, got %d", cfg.Retry.Attempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
state_url: mem://
locale: en-US
log_level: debug
progress: true
location:
  provider: static
  latitude: 28.6139
  longitude: 77.2090
  timeout: 5s
timing:
  verify_delay: 10ms
  success_display: 20ms
retrieval:
  max_size: 2MB
retry:
  attempts: 3
  backoff: 1s
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.StateURL != "mem://" {
		t.Errorf("expected state_url mem://, got %s", cfg.StateURL)
	}
	if cfg.Locale != "en-US" {
		t.Errorf("expected locale en-US, got %s", cfg.Locale)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}
	if cfg.Location.Provider != ProviderStatic {
		t.Errorf("expected provider static, got %s", cfg.Location.Provider)
	}
	if cfg.Location.Latitude != 28.6139 || cfg.Location.Longitude != 77.2090 {
		t.Errorf("unexpected coordinates %v, %v", cfg.Location.Latitude, cfg.Location.Longitude)
	}
	if cfg.Location.Timeout != 5*time.Second {
		t.Errorf("expected location timeout 5s, got %v", cfg.Location.Timeout)
	}
	if cfg.Timing.VerifyDelay != 10*time.Millisecond {
		t.Errorf("expected verify delay 10ms, got %v", cfg.Timing.VerifyDelay)
	}
	if cfg.Timing.SuccessDisplay != 20*time.Millisecond {
		t.Errorf("expected success display 20ms, got %v", cfg.Timing.SuccessDisplay)
	}
	// Unset keys keep their defaults.
	if cfg.Timing.ErrorDisplay != 4*time.Second {
		t.Errorf("expected error display default 4s, got %v", cfg.Timing.ErrorDisplay)
	}
	if cfg.Retrieval.MaxSize != 2*1024*1024 {
		t.Errorf("expected max size 2MB, got %d", cfg.Retrieval.MaxSize)
	}
	if cfg.Retry.Attempts != 3 {
		t.Errorf("expected retry attempts 3, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != time.Second {
		t.Errorf("expected retry backoff 1s, got %v", cfg.Retry.Backoff)
	}
}

func TestLoadFromYAMLInvalidDuration(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("timing:\n  verify_delay: soon\n"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestLoadFromYAMLZeroTimingsRejected(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := "timing:\n  verify_delay: 0s\n  success_display: 0s\n  error_display: 0s\n"
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Timing.VerifyDelay != 0 {
		t.Errorf("expected explicit zero verify delay, got %v", cfg.Timing.VerifyDelay)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected zero timings to fail validation")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GEOGATE_STATE_URL", "mem://")
	t.Setenv("GEOGATE_LOCALE", "en-US")
	t.Setenv("GEOGATE_PROGRESS", "1")
	t.Setenv("GEOGATE_LOCATION_PROVIDER", "static")
	t.Setenv("GEOGATE_LOCATION_LATITUDE", "19.0760")
	t.Setenv("GEOGATE_LOCATION_LONGITUDE", "72.8777")
	t.Setenv("GEOGATE_VERIFY_DELAY", "100ms")
	t.Setenv("GEOGATE_RETRIEVAL_MAX_SIZE", "1GB")
	t.Setenv("GEOGATE_RETRY_ATTEMPTS", "2")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.StateURL != "mem://" {
		t.Errorf("expected state_url mem://, got %s", cfg.StateURL)
	}
	if cfg.Locale != "en-US" {
		t.Errorf("expected locale en-US, got %s", cfg.Locale)
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}
	if cfg.Location.Provider != ProviderStatic {
		t.Errorf("expected provider static, got %s", cfg.Location.Provider)
	}
	if cfg.Location.Latitude != 19.0760 || cfg.Location.Longitude != 72.8777 {
		t.Errorf("unexpected coordinates %v, %v", cfg.Location.Latitude, cfg.Location.Longitude)
	}
	if cfg.Timing.VerifyDelay != 100*time.Millisecond {
		t.Errorf("expected verify delay 100ms, got %v", cfg.Timing.VerifyDelay)
	}
	if cfg.Retrieval.MaxSize != 1024*1024*1024 {
		t.Errorf("expected max size 1GB, got %d", cfg.Retrieval.MaxSize)
	}
	if cfg.Retry.Attempts != 2 {
		t.Errorf("expected retry attempts 2, got %d", cfg.Retry.Attempts)
	}
}

func TestLoadFromEnvInvalid(t *testing.T) {
	t.Setenv("GEOGATE_LOCATION_LATITUDE", "north")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err == nil {
		t.Error("expected error for invalid latitude")
	}
}

func TestLoadDotEnv(t *testing.T) {
	const name = "GEOGATE_DOTENV_TEST_LOG_LEVEL"
	t.Cleanup(func() { os.Unsetenv(name) })

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte(name+"=warn\n"), 0644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), envPath); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv(name); got != "warn" {
		t.Errorf("expected %s=warn, got %q", name, got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{
			name: "static provider",
			mutate: func(c *Config) {
				c.Location.Provider = ProviderStatic
				c.Location.Latitude = 28.6
				c.Location.Longitude = 77.2
			},
		},
		{name: "none provider", mutate: func(c *Config) { c.Location.Provider = ProviderNone }},
		{name: "denied provider", mutate: func(c *Config) { c.Location.Provider = ProviderDenied }},
		{
			name: "latitude out of range",
			mutate: func(c *Config) {
				c.Location.Provider = ProviderStatic
				c.Location.Latitude = 91
			},
			wantErr: true,
		},
		{
			name: "longitude out of range",
			mutate: func(c *Config) {
				c.Location.Provider = ProviderStatic
				c.Location.Longitude = -181
			},
			wantErr: true,
		},
		{name: "unknown provider", mutate: func(c *Config) { c.Location.Provider = "gps" }, wantErr: true},
		{name: "ip without endpoint", mutate: func(c *Config) { c.Location.Endpoint = "" }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "empty locale", mutate: func(c *Config) { c.Locale = "" }, wantErr: true},
		{name: "zero location timeout", mutate: func(c *Config) { c.Location.Timeout = 0 }, wantErr: true},
		{name: "negative delay", mutate: func(c *Config) { c.Timing.VerifyDelay = -time.Second }, wantErr: true},
		{
			name: "zero timings",
			mutate: func(c *Config) {
				c.Timing = TimingConfig{}
			},
			wantErr: true,
		},
		{name: "zero error display", mutate: func(c *Config) { c.Timing.ErrorDisplay = 0 }, wantErr: true},
		{name: "zero max size", mutate: func(c *Config) { c.Retrieval.MaxSize = 0 }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.Retry.Attempts = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.StateURL = "file:///var/lib/geogate"

	override := Config{
		Locale:   "en-US",
		Location: LocationConfig{Provider: ProviderDenied},
		Timing:   TimingConfig{VerifyDelay: time.Millisecond},
	}

	merged := base.Merge(override)

	if merged.StateURL != "file:///var/lib/geogate" {
		t.Errorf("expected StateURL preserved, got %s", merged.StateURL)
	}
	if merged.Location.Endpoint != geo.DefaultIPEndpoint {
		t.Errorf("expected endpoint preserved, got %s", merged.Location.Endpoint)
	}
	if merged.Timing.ErrorDisplay != 4*time.Second {
		t.Errorf("expected error display preserved, got %v", merged.Timing.ErrorDisplay)
	}

	if merged.Locale != "en-US" {
		t.Errorf("expected Locale overridden to en-US, got %s", merged.Locale)
	}
	if merged.Location.Provider != ProviderDenied {
		t.Errorf("expected provider overridden to denied, got %s", merged.Location.Provider)
	}
	if merged.Timing.VerifyDelay != time.Millisecond {
		t.Errorf("expected verify delay overridden to 1ms, got %v", merged.Timing.VerifyDelay)
	}
}

func TestLoadYAMLFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}
