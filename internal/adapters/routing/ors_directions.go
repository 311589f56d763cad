package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"how-far-is-it/internal/domain"
	"net/http"
)

// ORS answers 404 when either end cannot be snapped to the road network.
const orsNoRouteStatus = http.StatusNotFound

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
	Units       string      `json:"units"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Segments []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"segments"`
	} `json:"routes"`
}

// fetchDirections retrieves driving routes between two points using the
// OpenRouteService directions endpoint and maps them to the engine's
// routes/legs shape.
func (o *ORSRouteProvider) fetchDirections(
	ctx context.Context,
	from domain.GeoPoint,
	to domain.GeoPoint,
) (domain.RouteResponse, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)

	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{from.LonLat(), to.LonLat()},
		Units:       "m",
	})
	if err != nil {
		return domain.RouteResponse{}, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) && he.Code == orsNoRouteStatus {
			return domain.RouteResponse{Routes: []domain.Route{}}, nil
		}
		return domain.RouteResponse{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return domain.RouteResponse{}, fmt.Errorf("decode directions response: %w", err)
	}

	out := domain.RouteResponse{Routes: make([]domain.Route, 0, len(dr.Routes))}
	for _, r := range dr.Routes {
		route := domain.Route{Legs: make([]domain.RouteLeg, 0, len(r.Segments))}
		for _, seg := range r.Segments {
			route.Legs = append(route.Legs, leg(seg.Duration, seg.Distance))
		}
		// Single-segment answers sometimes omit segments; fall back to the summary.
		if len(route.Legs) == 0 {
			route.Legs = append(route.Legs, leg(r.Summary.Duration, r.Summary.Distance))
		}
		out.Routes = append(out.Routes, route)
	}

	return out, nil
}

func leg(seconds, meters float64) domain.RouteLeg {
	return domain.RouteLeg{
		Duration: domain.TextValue{Text: FormatDuration(seconds), Value: seconds},
		Distance: domain.TextValue{Text: FormatDistance(meters), Value: meters},
	}
}
