package ports

import (
	"context"
	"how-far-is-it/internal/domain"
)

// Optional persistent cache for provider route responses keyed by
// origin address and destination point.
type RouteCache interface {
	Get(ctx context.Context, origin string, dest domain.GeoPoint) (domain.RouteResponse, bool, error)
	Put(ctx context.Context, origin string, dest domain.GeoPoint, resp domain.RouteResponse) error
}

// Optional persistent cache mapping normalized addresses to coordinates.
type GeocodeCache interface {
	Get(ctx context.Context, address string) (domain.GeoPoint, bool, error)
	Put(ctx context.Context, address string, p domain.GeoPoint) error
}
