package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ligustah/geogate/internal/config"
)

type globalOptions struct {
	configFile string
	envFile    string
	overrides  config.Config
	changed    func(name string) bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:   "geogate",
		Short: "Geo-verified government document downloads",
		Long: `geogate downloads official documents from the portal catalog. Every
download is gated behind a location check, and each location capture is
recorded in a persistent audit log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	g.changed = f.Changed
	f.StringVar(&g.configFile, "config", "", "YAML configuration file")
	f.StringVar(&g.envFile, "env-file", ".env", "dotenv file with GEOGATE_ variables")
	f.StringVar(&g.overrides.StateURL, "state", "", "bucket URL holding the audit log (default file://./.geogate)")
	f.StringVar(&g.overrides.OutputURL, "output", "", "bucket URL receiving downloads (default file://.)")
	f.StringVar(&g.overrides.Locale, "locale", "", "display locale (hi-IN, en-US)")
	f.StringVar(&g.overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&g.overrides.CatalogFile, "catalog", "", "YAML catalog replacing the built-in one")
	f.StringVar(&g.overrides.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	f.BoolVar(&g.overrides.Progress, "progress", false, "show download progress")
	f.StringVar(&g.overrides.Location.Provider, "provider", "", "location provider (static, ip, denied, none)")
	f.Float64Var(&g.overrides.Location.Latitude, "lat", 0, "latitude for the static provider")
	f.Float64Var(&g.overrides.Location.Longitude, "lon", 0, "longitude for the static provider")

	root.AddCommand(
		newCatalogCmd(g),
		newDownloadCmd(g),
		newEmergencyCmd(g),
		newLogsCmd(g),
		newSessionCmd(g),
	)
	return root
}

// loadConfig layers defaults, config file, .env, environment and flags.
func (g *globalOptions) loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(g.envFile); err != nil {
		return config.Config{}, withCode(ExitConfigError, err)
	}

	cfg := config.Default()
	if g.configFile != "" {
		var err error
		cfg, err = config.LoadFromFile(g.configFile)
		if err != nil {
			return config.Config{}, withCode(ExitConfigError, err)
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, withCode(ExitConfigError, err)
	}
	cfg = cfg.Merge(g.overrides)
	// Merge skips zero values; an explicit 0 is a valid coordinate.
	if g.changed("lat") {
		cfg.Location.Latitude = g.overrides.Location.Latitude
	}
	if g.changed("lon") {
		cfg.Location.Longitude = g.overrides.Location.Longitude
	}

	if cfg.StateURL == "" {
		url, err := localBucketURL(".geogate")
		if err != nil {
			return config.Config{}, withCode(ExitStorageError, err)
		}
		cfg.StateURL = url
	}
	if cfg.OutputURL == "" {
		url, err := localBucketURL(".")
		if err != nil {
			return config.Config{}, withCode(ExitStorageError, err)
		}
		cfg.OutputURL = url
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, withCode(ExitConfigError, err)
	}
	return cfg, nil
}

// localBucketURL creates dir if needed and returns its fileblob URL.
func localBucketURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", abs, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
