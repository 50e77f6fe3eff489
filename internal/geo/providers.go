package geo

import (
	"context"
	"fmt"
	"net/url"

	gghttp "github.com/ligustah/geogate/internal/http"
)

// StaticProvider always resolves to the same coordinates.
type StaticProvider struct {
	Coords Coordinates
}

func (p StaticProvider) CurrentPosition(ctx context.Context, _ PositionOptions) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	return p.Coords, nil
}

// DeniedProvider models a capability whose permission prompt was refused.
type DeniedProvider struct{}

func (DeniedProvider) CurrentPosition(context.Context, PositionOptions) (Coordinates, error) {
	return Coordinates{}, &GeoError{Code: CodePermissionDenied, Message: "User denied Geolocation"}
}

// DefaultIPEndpoint is an ip-api.com compatible lookup endpoint.
const DefaultIPEndpoint = "http://ip-api.com/json/"

// IPProvider resolves an approximate position from an IP geolocation
// service. The response must carry status, lat, lon and, on failure, message.
type IPProvider struct {
	Endpoint string
	Client   *gghttp.Client
}

type ipLookup struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// NewIPProvider returns an IPProvider for endpoint. The lookup client is
// built from opts with retries disabled; acquisition is single-shot.
func NewIPProvider(endpoint string, opts gghttp.Options) *IPProvider {
	if endpoint == "" {
		endpoint = DefaultIPEndpoint
	}
	opts.RetryAttempts = 0
	return &IPProvider{Endpoint: endpoint, Client: gghttp.NewClient(opts)}
}

func (p *IPProvider) CurrentPosition(ctx context.Context, _ PositionOptions) (Coordinates, error) {
	u, err := url.Parse(p.Endpoint)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("fields", "status,message,lat,lon")
	u.RawQuery = q.Encode()

	var res ipLookup
	if err := p.Client.GetJSON(ctx, u.String(), &res); err != nil {
		return Coordinates{}, err
	}
	if res.Status != "success" {
		msg := res.Message
		if msg == "" {
			msg = "lookup failed"
		}
		return Coordinates{}, &GeoError{Code: CodePositionUnavailable, Message: msg}
	}
	return Coordinates{Latitude: res.Lat, Longitude: res.Lon}, nil
}
