package cli

import (
	"errors"
	"fmt"
	"how-far-is-it/internal/domain"

	"github.com/spf13/cobra"
)

func newRoutesCommand(deps Dependencies) *cobra.Command {
	var home string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Compute driving routes from a home to every landmark.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := formatFlag(cmd)
			if err != nil {
				return err
			}

			homes := deps.Locations.Homes()
			if len(homes) == 0 {
				return errors.New("no homes yet; add one with `howfar home add`")
			}
			origin, err := pickHome(homes, home)
			if err != nil {
				return err
			}

			out, err := deps.Routes.ComputeRoutes(cmd.Context(), origin, deps.Locations.Landmarks())
			if err != nil {
				return fmt.Errorf("compute routes from %q: %w", origin, err)
			}

			routes := make(map[string]*domain.RouteSummary, len(out))
			for _, l := range out {
				routes[l.ID] = l.Route
			}
			deps.Locations.MergeRoutes(cmd.Context(), routes)

			landmarks, rows := landmarkRows(deps.Locations.Landmarks())
			if format == FormatTable {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "from %s\n", origin)
			}
			return render(cmd.OutOrStdout(), format, routesPayload{Home: origin, Landmarks: landmarks},
				[]string{"ID", "NAME", "LAT", "LNG", "DURATION", "DISTANCE"}, rows)
		},
	}
	cmd.Flags().StringVar(&home, "home", "", "Home address to route from (default: the first home).")
	return cmd
}

func pickHome(homes []domain.Home, address string) (string, error) {
	if address == "" {
		return homes[0].Address, nil
	}
	for _, h := range homes {
		if h.Address == address {
			return address, nil
		}
	}
	return "", fmt.Errorf("unknown home %q", address)
}
