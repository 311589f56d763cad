package ports

import (
	"context"
	"how-far-is-it/internal/domain"
)

// Request for a single origin -> destination route.
type RouteRequest struct {
	Origin      string
	Destination domain.GeoPoint
	TravelMode  domain.TravelMode
}

// Contract for retrieving routes from an external routing provider.
type RouteProvider interface {
	// Return zero or more routes for the request. An empty Routes slice is
	// a valid answer (no route found), not an error.
	Route(ctx context.Context, req RouteRequest) (domain.RouteResponse, error)
}
