package cli

import (
	"context"
	"errors"
	"fmt"
	"how-far-is-it/internal/domain"
	"strings"

	"github.com/spf13/cobra"
)

var errNoGeocoder = errors.New("address lookup is unavailable with this routing provider; pass --lat and --lng")

func addPointFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("lat", 0, "Latitude. Skips the address lookup when given with --lng.")
	cmd.Flags().Float64("lng", 0, "Longitude. Skips the address lookup when given with --lat.")
}

// resolvePoint uses explicit coordinates when both are set and geocodes
// the address otherwise.
func resolvePoint(ctx context.Context, cmd *cobra.Command, deps Dependencies, address string) (domain.GeoPoint, error) {
	latSet := cmd.Flags().Changed("lat")
	lngSet := cmd.Flags().Changed("lng")

	if latSet != lngSet {
		return domain.GeoPoint{}, errors.New("--lat and --lng must be given together")
	}

	if latSet {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		p := domain.GeoPoint{Lat: lat, Lng: lng}
		if err := p.Validate(); err != nil {
			return domain.GeoPoint{}, err
		}
		return p, nil
	}

	if deps.Geocoder == nil {
		return domain.GeoPoint{}, errNoGeocoder
	}
	p, err := deps.Geocoder.Geocode(ctx, address)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("look up %q: %w", address, err)
	}
	return p, nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
