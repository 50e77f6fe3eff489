package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"golang.org/x/text/language"

	"github.com/ligustah/geogate/internal/auditlog"
	"github.com/ligustah/geogate/internal/catalog"
	"github.com/ligustah/geogate/internal/config"
	"github.com/ligustah/geogate/internal/downloader"
	"github.com/ligustah/geogate/internal/geo"
	gghttp "github.com/ligustah/geogate/internal/http"
	"github.com/ligustah/geogate/internal/locale"
	"github.com/ligustah/geogate/internal/logging"
	"github.com/ligustah/geogate/internal/metrics"
	"github.com/ligustah/geogate/internal/portal"
	"github.com/ligustah/geogate/internal/progress"
	"github.com/ligustah/geogate/internal/workflow"
)

// app holds everything a command needs.
type app struct {
	cfg     config.Config
	tag     language.Tag
	logger  *zap.Logger
	metrics *metrics.Metrics
	state   *blob.Bucket
	output  *blob.Bucket
	portal  *portal.Portal
}

// openApp wires the portal from cfg. Progress bars go to progressOut.
func openApp(ctx context.Context, cfg config.Config, progressOut io.Writer, onTransition func(portal.Transition)) (*app, error) {
	a := &app{cfg: cfg, tag: locale.Match(cfg.Locale), metrics: metrics.New()}
	opened := false
	defer func() {
		if !opened {
			a.close()
		}
	}()

	var err error
	a.logger, err = logging.New(cfg.LogLevel, cfg.LogLevel == "debug")
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		cat, err = catalog.LoadFromFile(cfg.CatalogFile)
		if err != nil {
			return nil, withCode(ExitConfigError, err)
		}
	}

	a.state, err = blob.OpenBucket(ctx, cfg.StateURL)
	if err != nil {
		return nil, withCode(ExitStorageError, fmt.Errorf("open state bucket: %w", err))
	}
	a.output, err = blob.OpenBucket(ctx, cfg.OutputURL)
	if err != nil {
		return nil, withCode(ExitStorageError, fmt.Errorf("open output bucket: %w", err))
	}

	httpOpts := gghttp.DefaultOptions()
	httpOpts.Timeout = cfg.Retrieval.Timeout
	httpOpts.RetryAttempts = cfg.Retry.Attempts
	httpOpts.RetryBackoff = cfg.Retry.Backoff
	httpOpts.RetryMaxBackoff = cfg.Retry.MaxBackoff
	client := gghttp.NewClient(httpOpts)

	acquirer := geo.NewAcquirer(newProvider(cfg.Location),
		geo.WithTimeout(cfg.Location.Timeout),
		geo.WithLogger(a.logger))

	retriever := downloader.New(
		downloader.NewFetcher(client, cfg.Retrieval.MaxSize),
		downloader.NewSaver(a.output, downloader.SaverOptions{
			Progress:        cfg.Progress,
			ProgressOptions: progress.Options{Output: progressOut},
		}),
		a.logger,
	)

	store := auditlog.New(a.state, auditlog.Options{
		Formatter: locale.MediumDateTime(a.tag),
		Logger:    a.logger,
	})

	a.portal, err = portal.New(ctx, portal.Config{
		Catalog:   cat,
		Log:       store,
		Acquirer:  acquirer,
		Retriever: retriever,
		Timings: workflow.Timings{
			VerifyDelay:    cfg.Timing.VerifyDelay,
			SuccessDisplay: cfg.Timing.SuccessDisplay,
			ErrorDisplay:   cfg.Timing.ErrorDisplay,
		},
		Locale:       a.tag,
		OnTransition: onTransition,
		Metrics:      a.metrics,
		Logger:       a.logger,
	})
	if err != nil {
		return nil, withCode(ExitStorageError, err)
	}
	opened = true
	return a, nil
}

// newProvider builds the configured position source. "none" yields nil, a
// host without location capability.
func newProvider(cfg config.LocationConfig) geo.Provider {
	switch cfg.Provider {
	case config.ProviderStatic:
		return geo.StaticProvider{Coords: geo.Coordinates{Latitude: cfg.Latitude, Longitude: cfg.Longitude}}
	case config.ProviderIP:
		opts := gghttp.DefaultOptions()
		opts.Timeout = cfg.Timeout
		return geo.NewIPProvider(cfg.Endpoint, opts)
	case config.ProviderDenied:
		return geo.DeniedProvider{}
	default:
		return nil
	}
}

func (a *app) close() {
	if a.metrics != nil && a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil && a.logger != nil {
			a.logger.Warn("write metrics", zap.Error(err))
		}
	}
	if a.output != nil {
		a.output.Close()
	}
	if a.state != nil {
		a.state.Close()
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}
