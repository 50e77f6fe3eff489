package geo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4fN, %.4fE", c.Latitude, c.Longitude)
}

// Error codes. 1-3 follow the W3C GeolocationPositionError numbering.
const (
	CodeCapabilityUnavailable = 0
	CodePermissionDenied      = 1
	CodePositionUnavailable   = 2
	CodeTimeout               = 3
)

// GeoError is a failed acquisition. Provider codes and messages are passed
// through unchanged.
type GeoError struct {
	Code    int
	Message string
}

func (e *GeoError) Error() string {
	return fmt.Sprintf("geo: %s (code %d)", e.Message, e.Code)
}

// ErrCapabilityUnavailable is returned when no location capability exists.
var ErrCapabilityUnavailable = &GeoError{Code: CodeCapabilityUnavailable, Message: "capability unavailable"}

// IsCode reports whether err is a *GeoError with the given code.
func IsCode(err error, code int) bool {
	var ge *GeoError
	return errors.As(err, &ge) && ge.Code == code
}

// PositionOptions is the request policy handed to a Provider.
type PositionOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// DefaultPositionOptions returns the fixed acquisition policy: high accuracy,
// 10s timeout, fresh fix only.
func DefaultPositionOptions() PositionOptions {
	return PositionOptions{
		EnableHighAccuracy: true,
		Timeout:            10 * time.Second,
		MaximumAge:         0,
	}
}

// Provider is the host's single-shot "get current position" capability.
type Provider interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Coordinates, error)
}
