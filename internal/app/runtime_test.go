package app

import (
	"context"
	"errors"
	"how-far-is-it/internal/config"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/platform/logging"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Env: "test",
		Storage: config.StorageConfig{
			Backend:      backend,
			LandmarksKey: "key-locations",
			HomesKey:     "how-far-is-it:homes",
			PersistHomes: true,
		},
		Routing: config.RoutingConfig{
			Provider:       config.ProviderMock,
			MaxConcurrency: 4,
		},
	}
}

func TestRuntimeBackendsPersistState(t *testing.T) {
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	cases := map[string]func(*config.Config){
		config.BackendFile:   func(c *config.Config) { c.Storage.Path = filepath.Join(dir, "state") },
		config.BackendSQLite: func(c *config.Config) { c.Storage.Path = filepath.Join(dir, "db", "state.db") },
		config.BackendRedis:  func(c *config.Config) { c.Storage.RedisAddr = mr.Addr() },
	}

	for backend, tweak := range cases {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(backend)
			tweak(cfg)

			rt, err := New(ctx, cfg, logging.Discard())
			if err != nil {
				t.Fatalf("new runtime: %v", err)
			}
			rt.Registry.AddHome(ctx, domain.Home{Address: "221B Baker St", Point: domain.GeoPoint{Lat: 51.5, Lng: -0.15}})
			if err := rt.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			again, err := New(ctx, cfg, logging.Discard())
			if err != nil {
				t.Fatalf("reopen runtime: %v", err)
			}
			defer again.Close()

			if got := again.Registry.Homes(); len(got) != 1 || got[0].Address != "221B Baker St" {
				t.Fatalf("homes after reopen = %v", got)
			}
		})
	}
}

func TestRuntimeMockProviderRoutesFromKnownHomes(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, testConfig(config.BackendMemory), logging.Discard())
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	defer rt.Close()

	rt.Registry.AddHome(ctx, domain.Home{Address: "221B Baker St", Point: domain.GeoPoint{Lat: 51.5, Lng: -0.15}})
	out, err := rt.Aggregator.ComputeRoutes(ctx, "221B Baker St", []domain.Landmark{
		domain.NewLandmark("Office", domain.GeoPoint{Lat: 51.5154, Lng: -0.141}),
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if out[0].Route == nil {
		t.Fatalf("expected a synthesized route")
	}

	if _, err := rt.Geocode(ctx, "anything"); !errors.Is(err, ErrNoGeocoder) {
		t.Fatalf("mock geocode err = %v", err)
	}
}

func TestRuntimeRejectsUnknownBackend(t *testing.T) {
	if _, err := New(context.Background(), testConfig("floppy"), logging.Discard()); err == nil {
		t.Fatalf("expected error")
	}
}
