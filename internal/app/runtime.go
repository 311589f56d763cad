// Package app assembles the storage backend, routing provider and engine
// services selected by configuration. The cmd mains are thin wrappers.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"how-far-is-it/internal/adapters/cache"
	"how-far-is-it/internal/adapters/kv"
	"how-far-is-it/internal/adapters/routing"
	"how-far-is-it/internal/config"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/platform/db"
	"how-far-is-it/internal/platform/metrics"
	"how-far-is-it/internal/ports"
	"how-far-is-it/internal/services"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoGeocoder is returned when an address lookup is needed but the
// configured provider cannot geocode.
var ErrNoGeocoder = errors.New("configured routing provider cannot geocode addresses")

type Runtime struct {
	Config     *config.Config
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Store      ports.KeyValueStore
	Registry   *services.Registry
	Provider   ports.RouteProvider
	Geocoder   ports.Geocoder
	Aggregator *services.Aggregator

	closers []func() error
}

// New opens the configured backends. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *Runtime, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	rt := &Runtime{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}
	defer func() {
		if err != nil {
			_ = rt.Close()
		}
	}()

	rt.Store, err = rt.openStore(ctx)
	if err != nil {
		return nil, err
	}

	rt.Registry, err = services.NewRegistry(ctx, rt.Store, services.RegistryConfig{
		LandmarksKey: cfg.Storage.LandmarksKey,
		HomesKey:     cfg.Storage.HomesKey,
		PersistHomes: cfg.Storage.PersistHomes,
	}, logger, rt.Metrics)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	if err := rt.openProvider(ctx); err != nil {
		return nil, err
	}

	rt.Aggregator = services.NewAggregator(rt.Provider, services.AggregatorConfig{
		MaxConcurrency: cfg.Routing.MaxConcurrency,
	}, logger, rt.Metrics)

	return rt, nil
}

// NewController starts the selection controller over the runtime's
// registry and aggregator.
func (rt *Runtime) NewController() *services.Controller {
	return services.NewController(rt.Registry, rt.Aggregator, services.ControllerConfig{
		DefaultLandmarkName: rt.Config.Landmarks.DefaultName,
		Development:         rt.Config.IsDevelopment(),
	}, rt.Logger, rt.Metrics)
}

// Geocode resolves an address with the configured provider.
func (rt *Runtime) Geocode(ctx context.Context, address string) (domain.GeoPoint, error) {
	if rt.Geocoder == nil {
		return domain.GeoPoint{}, ErrNoGeocoder
	}
	return rt.Geocoder.Geocode(ctx, address)
}

func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

func (rt *Runtime) openStore(ctx context.Context) (ports.KeyValueStore, error) {
	st := rt.Config.Storage

	switch st.Backend {
	case config.BackendMemory:
		return kv.NewMemoryStore(), nil

	case config.BackendFile:
		s, err := kv.NewFileStore(st.Path)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return s, nil

	case config.BackendSQLite:
		conn, err := rt.openSQLite(st.Path)
		if err != nil {
			return nil, err
		}
		if err := kv.InitSchema(ctx, conn, kv.DialectSQLite); err != nil {
			return nil, err
		}
		return kv.NewSqliteStore(conn), nil

	case config.BackendPostgres:
		conn, err := db.Open(st.DSN)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, conn.Close)
		if err := kv.InitSchema(ctx, conn, kv.DialectPostgres); err != nil {
			return nil, err
		}
		return kv.NewPostgresStore(conn), nil

	case config.BackendRedis:
		client, err := kv.DialRedis(ctx, st.RedisAddr)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, client.Close)
		return kv.NewRedisStore(client, "howfar:"), nil
	}

	return nil, fmt.Errorf("storage backend %q is not supported", st.Backend)
}

func (rt *Runtime) openSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	conn, err := db.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, conn.Close)
	return conn, nil
}

func (rt *Runtime) openProvider(ctx context.Context) error {
	rc := rt.Config.Routing

	switch rc.Provider {
	case config.ProviderMock:
		// Origins resolve against known homes, so the mock can estimate
		// routes for anything the user committed.
		rt.Provider = routing.NewMockRouteProvider(nil, func(address string) (domain.GeoPoint, bool) {
			h, ok := rt.Registry.Home(address)
			return h.Point, ok
		})
		return nil

	case config.ProviderORS:
		opts := []routing.ORSOption{
			routing.WithBaseURL(rc.ORSBaseURL),
			routing.WithCountry(strings.ToUpper(rc.ORSCountry)),
			routing.WithLogger(rt.Logger),
		}

		// ORS provider uses persistent SQLite caches to avoid repeated geocode/directions calls.
		if rc.CachePath != "" {
			conn, err := rt.openSQLite(rc.CachePath)
			if err != nil {
				return fmt.Errorf("open route cache: %w", err)
			}
			if err := cache.InitSchema(ctx, conn); err != nil {
				return err
			}
			opts = append(opts,
				routing.WithGeocodeCache(cache.NewSqliteGeocodeCache(conn)),
				routing.WithRouteCache(cache.NewSqliteRouteCache(conn)),
			)
		}

		p, err := routing.NewORSRouteProvider(rc.ORSAPIKey, opts...)
		if err != nil {
			return err
		}
		rt.Provider = p
		rt.Geocoder = p
		return nil
	}

	return fmt.Errorf("routing provider %q is not supported", rc.Provider)
}
