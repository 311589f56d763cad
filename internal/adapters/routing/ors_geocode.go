package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/platform/obs"
	"log/slog"
	"net/http"
)

// ErrNoGeocodeResult is returned when ORS knows no place for an address.
var ErrNoGeocodeResult = errors.New("no geocode result")

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// Geocode resolves an address to coordinates via the cache or ORS
// (/geocode/search). Concurrent lookups of the same address share one
// upstream call, so a batch fanning out from one origin geocodes it once.
func (o *ORSRouteProvider) Geocode(ctx context.Context, address string) (domain.GeoPoint, error) {
	norm := normalize(address)
	if norm == "" {
		return domain.GeoPoint{}, errors.New("geocode: address must be non-empty")
	}

	// Resolve coordinates via cache before calling ORS geocoding.
	if o.geocodeCache != nil {
		p, ok, err := o.geocodeCache.Get(ctx, norm)
		if err != nil {
			o.logger.WarnContext(ctx, "geocode cache read failed", slog.Any("err", err))
		} else if ok {
			return p, nil
		}
	}

	v, err, _ := o.inflight.Do(norm, func() (any, error) {
		return o.geocodeOne(ctx, norm)
	})
	if err != nil {
		return domain.GeoPoint{}, err
	}
	point := v.(domain.GeoPoint)

	if o.geocodeCache != nil {
		if err := o.geocodeCache.Put(ctx, norm, point); err != nil {
			o.logger.WarnContext(ctx, "geocode cache write failed", slog.Any("err", err))
		}
	}

	return point, nil
}

func (o *ORSRouteProvider) geocodeOne(
	ctx context.Context,
	address string,
) (_ domain.GeoPoint, err error) {
	defer obs.Time(ctx, o.logger, "ors.geocode")(&err)

	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", address)
		q.Set("size", "1")
		if o.country != "" {
			q.Set("boundary.country", o.country)
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.GeoPoint{}, fmt.Errorf("%w for %q", ErrNoGeocodeResult, address)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.GeoPoint{}, fmt.Errorf("invalid coordinate format for %q", address)
	}

	return domain.GeoPoint{Lng: coords[0], Lat: coords[1]}, nil
}
