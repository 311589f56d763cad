package services

import (
	"context"
	"errors"
	"fmt"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/platform/metrics"
	"how-far-is-it/internal/platform/obs"
	"how-far-is-it/internal/ports"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

const DefaultMaxConcurrency = 8

type AggregatorConfig struct {
	// MaxConcurrency bounds simultaneous provider calls within one batch.
	MaxConcurrency int
}

// Aggregator computes one route per landmark from a single origin.
type Aggregator struct {
	provider ports.RouteProvider
	limit    int
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewAggregator(
	provider ports.RouteProvider,
	cfg AggregatorConfig,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	limit := cfg.MaxConcurrency
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}
	return &Aggregator{
		provider: provider,
		limit:    limit,
		logger:   logger,
		metrics:  m,
	}
}

// ComputeRoutes requests a driving route from origin to every landmark
// concurrently and returns the landmarks in input order, each annotated
// with its route or nil when that request failed.
//
// Per-landmark failures are logged and do not fail the batch. Only when
// every request failed with a provider error is ErrAllRoutesFailed
// returned, joined with the individual causes.
func (a *Aggregator) ComputeRoutes(
	ctx context.Context,
	origin string,
	landmarks []domain.Landmark,
) (_ []domain.Landmark, err error) {
	defer obs.Time(ctx, a.logger, "aggregator.ComputeRoutes")(&err)

	out := make([]domain.Landmark, len(landmarks))
	if len(landmarks) == 0 {
		return out, nil
	}

	errs := make([]error, len(landmarks))

	var g errgroup.Group
	g.SetLimit(a.limit)

	for i, l := range landmarks {
		g.Go(func() error {
			route, err := a.routeOne(ctx, origin, l)
			// Each goroutine owns index i, so no lock is needed.
			out[i] = l.WithRoute(route)
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	providerFailures := 0
	for i, err := range errs {
		switch {
		case err == nil:
			a.metrics.RouteRequests.WithLabelValues("ok").Inc()
			continue
		case errors.Is(err, ErrNoRoutes):
			a.metrics.RouteRequests.WithLabelValues("no_routes").Inc()
		default:
			a.metrics.RouteRequests.WithLabelValues("error").Inc()
			providerFailures++
		}

		a.logger.WarnContext(ctx, "route request failed",
			slog.String("origin", origin),
			slog.String("landmark_id", landmarks[i].ID),
			slog.String("landmark", landmarks[i].Name),
			slog.Any("err", err),
		)
	}

	if providerFailures == len(landmarks) {
		return nil, fmt.Errorf("%w: origin %q: %w", ErrAllRoutesFailed, origin, errors.Join(errs...))
	}

	return out, nil
}

func (a *Aggregator) routeOne(
	ctx context.Context,
	origin string,
	l domain.Landmark,
) (*domain.RouteSummary, error) {
	resp, err := a.provider.Route(ctx, ports.RouteRequest{
		Origin:      origin,
		Destination: l.Point,
		TravelMode:  domain.TravelModeDriving,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: landmark %q: %w", ErrRouteProvider, l.Name, err)
	}

	summary, ok := domain.SummarizeRoute(resp)
	if !ok {
		return nil, fmt.Errorf("%w: landmark %q", ErrNoRoutes, l.Name)
	}
	return summary, nil
}
