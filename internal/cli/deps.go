package cli

import (
	"context"
	"errors"
	"fmt"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/ports"
	"io"
)

// LocationStore is the registry surface the CLI edits.
type LocationStore interface {
	AddHome(ctx context.Context, home domain.Home)
	AddLandmark(ctx context.Context, l domain.Landmark) domain.Landmark
	RenameLandmark(ctx context.Context, id, name string) error
	RemoveLandmark(ctx context.Context, name string) int
	MergeRoutes(ctx context.Context, routes map[string]*domain.RouteSummary)
	Homes() []domain.Home
	Landmarks() []domain.Landmark
}

// RouteComputer computes one route per landmark from an origin address.
type RouteComputer interface {
	ComputeRoutes(ctx context.Context, origin string, landmarks []domain.Landmark) ([]domain.Landmark, error)
}

// Dependencies wires runtime services.
type Dependencies struct {
	Locations LocationStore
	Routes    RouteComputer
	// Geocoder may be nil; commands then require explicit coordinates.
	Geocoder            ports.Geocoder
	DefaultLandmarkName string
	// SessionOnlyHomes is set when homes are not persisted. Each CLI run is
	// its own session, so adding a home would be lost on exit.
	SessionOnlyHomes bool
	Version          string
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}

// Execute runs the CLI with injected dependencies.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout io.Writer, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var controlled *exitError
	if errors.As(err, &controlled) {
		return controlled.code
	}

	if msg := err.Error(); msg != "" {
		_, _ = fmt.Fprintln(stderr, msg)
	}
	return 1
}
