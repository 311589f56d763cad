package routing

import (
	"context"
	"errors"
	"fmt"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/platform/obs"
	"how-far-is-it/internal/ports"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultORSBaseURL = "https://api.openrouteservice.org"

// ORSRouteProvider implements RouteProvider and Geocoder using OpenRouteService.
//
// It coordinates:
//   - Address normalization
//   - Origin geocoding, deduplicated across concurrent requests
//   - Optional persistent geocode and route caching
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSRouteProvider struct {
	session        *http.Client
	apiKey         string
	baseURL        string
	profile        string
	country        string
	maxAttempts    int
	initialBackoff time.Duration
	geocodeCache   ports.GeocodeCache
	routeCache     ports.RouteCache
	logger         *slog.Logger
	inflight       singleflight.Group
}

type ORSOption func(*ORSRouteProvider)

func WithBaseURL(u string) ORSOption {
	return func(o *ORSRouteProvider) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(c *http.Client) ORSOption {
	return func(o *ORSRouteProvider) { o.session = c }
}

func WithGeocodeCache(c ports.GeocodeCache) ORSOption {
	return func(o *ORSRouteProvider) { o.geocodeCache = c }
}

func WithRouteCache(c ports.RouteCache) ORSOption {
	return func(o *ORSRouteProvider) { o.routeCache = c }
}

// WithCountry restricts geocoding to an ISO country code ("" for worldwide).
func WithCountry(code string) ORSOption {
	return func(o *ORSRouteProvider) { o.country = code }
}

func WithRetry(maxAttempts int, initialBackoff time.Duration) ORSOption {
	return func(o *ORSRouteProvider) {
		if maxAttempts > 0 {
			o.maxAttempts = maxAttempts
		}
		o.initialBackoff = initialBackoff
	}
}

func WithLogger(l *slog.Logger) ORSOption {
	return func(o *ORSRouteProvider) {
		if l != nil {
			o.logger = l
		}
	}
}

func NewORSRouteProvider(apiKey string, opts ...ORSOption) (*ORSRouteProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSRouteProvider{
		session:        &http.Client{Timeout: 10 * time.Second},
		apiKey:         apiKey,
		baseURL:        defaultORSBaseURL,
		profile:        "driving-car",
		maxAttempts:    4,
		initialBackoff: 200 * time.Millisecond,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Route resolves the origin address and asks ORS for a driving route to
// the destination. An unroutable pair yields a response with no routes.
func (o *ORSRouteProvider) Route(
	ctx context.Context,
	req ports.RouteRequest,
) (_ domain.RouteResponse, err error) {
	defer obs.Time(ctx, o.logger, "ors.Route")(&err)

	if req.TravelMode != "" && req.TravelMode != domain.TravelModeDriving {
		return domain.RouteResponse{}, fmt.Errorf("ORS route: unsupported travel mode %q", req.TravelMode)
	}

	origin := normalize(req.Origin)
	if origin == "" {
		return domain.RouteResponse{}, errors.New("ORS route: origin must be non-empty")
	}
	if err := req.Destination.Validate(); err != nil {
		return domain.RouteResponse{}, fmt.Errorf("ORS route: destination: %w", err)
	}

	// Check persistent route cache before issuing external API calls.
	if o.routeCache != nil {
		cached, ok, err := o.routeCache.Get(ctx, origin, req.Destination)
		if err != nil {
			o.logger.WarnContext(ctx, "route cache read failed", slog.Any("err", err))
		} else if ok {
			return cached, nil
		}
	}

	originPoint, err := o.Geocode(ctx, origin)
	if err != nil {
		return domain.RouteResponse{}, fmt.Errorf("ORS route: resolve origin %q: %w", origin, err)
	}

	resp, err := o.fetchDirections(ctx, originPoint, req.Destination)
	if err != nil {
		return domain.RouteResponse{}, fmt.Errorf("ORS route: %q -> %s: %w", origin, req.Destination, err)
	}

	if o.routeCache != nil && len(resp.Routes) > 0 {
		if err := o.routeCache.Put(ctx, origin, req.Destination, resp); err != nil {
			o.logger.WarnContext(ctx, "route cache write failed", slog.Any("err", err))
		}
	}

	return resp, nil
}

var _ ports.RouteProvider = (*ORSRouteProvider)(nil)
var _ ports.Geocoder = (*ORSRouteProvider)(nil)
