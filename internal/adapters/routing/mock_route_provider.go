package routing

import (
	"context"
	"fmt"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/ports"
	"sync"
)

// MockPair is a canned answer for one origin/destination pair.
type MockPair struct {
	From    string
	To      domain.GeoPoint
	Meters  float64
	Seconds float64
}

// MockRouteProvider answers from canned pairs, or synthesizes a route from
// the straight-line distance when it can resolve the origin. It backs the
// "mock" routing provider for local runs without an API key.
type MockRouteProvider struct {
	m       map[string]domain.RouteResponse
	resolve func(address string) (domain.GeoPoint, bool)
	speed   float64 // meters per second for synthesized routes

	mu    sync.Mutex
	calls []ports.RouteRequest
}

func NewMockRouteProvider(pairs []MockPair, resolve func(address string) (domain.GeoPoint, bool)) *MockRouteProvider {
	m := make(map[string]domain.RouteResponse, len(pairs))
	for _, p := range pairs {
		m[mockKey(p.From, p.To)] = singleLeg(p.Seconds, p.Meters)
	}
	return &MockRouteProvider{
		m:       m,
		resolve: resolve,
		speed:   11.1, // ~40 km/h urban average
	}
}

func mockKey(origin string, dest domain.GeoPoint) string {
	return normalize(origin) + "|" + dest.String()
}

func singleLeg(seconds, meters float64) domain.RouteResponse {
	return domain.RouteResponse{Routes: []domain.Route{{Legs: []domain.RouteLeg{leg(seconds, meters)}}}}
}

func (p *MockRouteProvider) Route(_ context.Context, req ports.RouteRequest) (domain.RouteResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()

	if r, ok := p.m[mockKey(req.Origin, req.Destination)]; ok {
		return r, nil
	}

	if p.resolve != nil {
		if from, ok := p.resolve(req.Origin); ok {
			// Roads are longer than the crow flies; 1.3 is a common detour factor.
			meters := domain.HaversineMeters(from, req.Destination) * 1.3
			return singleLeg(meters/p.speed, meters), nil
		}
	}

	return domain.RouteResponse{}, fmt.Errorf("missing pair %q -> %s", req.Origin, req.Destination)
}

// Calls returns the requests received so far.
func (p *MockRouteProvider) Calls() []ports.RouteRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.RouteRequest, len(p.calls))
	copy(out, p.calls)
	return out
}
