package services

import (
	"context"
	"errors"
	"fmt"
	"how-far-is-it/internal/adapters/kv"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/platform/logging"
	"how-far-is-it/internal/platform/metrics"
	"how-far-is-it/internal/ports"
	"log/slog"
	"sync"
	"testing"
	"time"
)

var (
	bakerSt   = domain.Home{Address: "221B Baker St", Point: domain.GeoPoint{Lat: 51.5, Lng: -0.15}}
	downingSt = domain.Home{Address: "10 Downing St", Point: domain.GeoPoint{Lat: 51.5034, Lng: -0.1276}}

	officePt = domain.GeoPoint{Lat: 51.5154, Lng: -0.141}
	gymPt    = domain.GeoPoint{Lat: 51.52, Lng: -0.16}
	parkPt   = domain.GeoPoint{Lat: 51.5073, Lng: -0.1657}
)

// fakeProvider answers every request with a route whose length depends
// on the origin, so results from different homes are distinguishable.
type fakeProvider struct {
	mu          sync.Mutex
	calls       []ports.RouteRequest
	inFlight    int
	maxInFlight int

	gates   map[string]chan struct{} // origin -> released when closed
	fail    map[string]error         // origin -> error for every request
	empty   map[domain.GeoPoint]bool // destinations with no route
	delays  map[domain.GeoPoint]time.Duration
	started chan ports.RouteRequest
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		gates:   map[string]chan struct{}{},
		fail:    map[string]error{},
		empty:   map[domain.GeoPoint]bool{},
		delays:  map[domain.GeoPoint]time.Duration{},
		started: make(chan ports.RouteRequest, 64),
	}
}

// hold makes requests from origin block until the returned func is called.
func (f *fakeProvider) hold(origin string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[origin] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *fakeProvider) Route(ctx context.Context, req ports.RouteRequest) (domain.RouteResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	gate := f.gates[req.Origin]
	failErr := f.fail[req.Origin]
	empty := f.empty[req.Destination]
	delay := f.delays[req.Destination]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	select {
	case f.started <- req:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.RouteResponse{}, ctx.Err()
		}
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	if failErr != nil {
		return domain.RouteResponse{}, failErr
	}
	if empty {
		return domain.RouteResponse{Routes: []domain.Route{}}, nil
	}

	meters := 1000 + float64(len(req.Origin))*100 + req.Destination.Lat
	return domain.RouteResponse{Routes: []domain.Route{{Legs: []domain.RouteLeg{{
		Duration: domain.TextValue{Text: fmt.Sprintf("%d mins from %s", int(meters)/500, req.Origin), Value: meters / 10},
		Distance: domain.TextValue{Text: fmt.Sprintf("%.1f km", meters/1000), Value: meters},
	}}}}}, nil
}

func (f *fakeProvider) callsFrom(origin string) []ports.RouteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ports.RouteRequest
	for _, c := range f.calls {
		if c.Origin == origin {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeProvider) peak() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// awaitStarted waits until n requests have reached the provider.
func (f *fakeProvider) awaitStarted(t *testing.T, n int) []ports.RouteRequest {
	t.Helper()
	var got []ports.RouteRequest
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case req := <-f.started:
			got = append(got, req)
		case <-timeout:
			t.Fatalf("only %d of %d requests started", len(got), n)
		}
	}
	return got
}

var errUnreachable = errors.New("provider unreachable")

type fixture struct {
	t        *testing.T
	kv       *kv.MemoryStore
	metrics  *metrics.Metrics
	provider *fakeProvider
	registry *Registry
}

func newFixture(t *testing.T, state domain.PersistedState) *fixture {
	t.Helper()
	f := &fixture{
		t:        t,
		kv:       kv.NewMemoryStore(),
		metrics:  metrics.New(),
		provider: newFakeProvider(),
	}
	seed := openRegistry(t, f.kv, RegistryConfig{PersistHomes: true}, logging.Discard(), f.metrics)
	if err := seed.Import(context.Background(), state); err != nil {
		t.Fatalf("import: %v", err)
	}
	f.registry = openRegistry(t, f.kv, RegistryConfig{PersistHomes: true}, logging.Discard(), f.metrics)
	return f
}

func (f *fixture) controller(cfg ControllerConfig) *Controller {
	agg := NewAggregator(f.provider, AggregatorConfig{}, logging.Discard(), f.metrics)
	return NewController(f.registry, agg, cfg, logging.Discard(), f.metrics)
}

// persisted reopens the registry from the backing store.
func (f *fixture) persisted() []domain.Landmark {
	return openRegistry(f.t, f.kv, RegistryConfig{PersistHomes: true}, logging.Discard(), nil).Landmarks()
}

func openRegistry(t *testing.T, backend ports.KeyValueStore, cfg RegistryConfig, logger *slog.Logger, m *metrics.Metrics) *Registry {
	t.Helper()
	r, err := NewRegistry(context.Background(), backend, cfg, logger, m)
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	return r
}

func counter(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func landmarksNamed(names ...string) []domain.Landmark {
	points := []domain.GeoPoint{officePt, gymPt, parkPt}
	out := make([]domain.Landmark, 0, len(names))
	for i, n := range names {
		out = append(out, domain.NewLandmark(n, points[i%len(points)]))
	}
	return out
}
