package geo

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Acquirer performs one-shot location acquisition. It never retries; retry
// policy belongs to the caller.
type Acquirer struct {
	provider Provider
	opts     PositionOptions
	logger   *zap.Logger
}

// AcquirerOption configures an Acquirer.
type AcquirerOption func(*Acquirer)

// WithTimeout overrides the maximum wait for a fix.
func WithTimeout(d time.Duration) AcquirerOption {
	return func(a *Acquirer) {
		if d > 0 {
			a.opts.Timeout = d
		}
	}
}

// WithLogger sets the logger used for acquisition diagnostics.
func WithLogger(logger *zap.Logger) AcquirerOption {
	return func(a *Acquirer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAcquirer returns an Acquirer for provider. A nil provider models a host
// without location services.
func NewAcquirer(provider Provider, options ...AcquirerOption) *Acquirer {
	a := &Acquirer{
		provider: provider,
		opts:     DefaultPositionOptions(),
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Options returns the request policy used for every acquisition.
func (a *Acquirer) Options() PositionOptions {
	return a.opts
}

// Acquire blocks until the provider resolves a fresh fix or fails. Failures
// are always *GeoError.
func (a *Acquirer) Acquire(ctx context.Context) (Coordinates, error) {
	if a.provider == nil {
		return Coordinates{}, ErrCapabilityUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	coords, err := a.provider.CurrentPosition(ctx, a.opts)
	if err != nil {
		gerr := classify(ctx, err)
		a.logger.Debug("location acquisition failed",
			zap.Int("code", gerr.Code),
			zap.String("message", gerr.Message),
		)
		return Coordinates{}, gerr
	}

	a.logger.Debug("location acquired",
		zap.Float64("latitude", coords.Latitude),
		zap.Float64("longitude", coords.Longitude),
	)
	return coords, nil
}

func classify(ctx context.Context, err error) *GeoError {
	var ge *GeoError
	if errors.As(err, &ge) {
		return ge
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &GeoError{Code: CodeTimeout, Message: "timeout expired"}
	}
	return &GeoError{Code: CodePositionUnavailable, Message: err.Error()}
}
