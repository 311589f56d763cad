package cli

import (
	"errors"
	"fmt"
	"how-far-is-it/internal/domain"

	"github.com/spf13/cobra"
)

var errSessionOnlyHomes = errors.New("homes are not persisted (storage.persist_homes=false); enable it to add homes from the command line")

func newHomeCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Manage candidate homes.",
	}
	cmd.AddCommand(newHomeAddCommand(deps))
	cmd.AddCommand(newHomeListCommand(deps))
	return cmd
}

func newHomeAddCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <address>",
		Short: "Add a candidate home.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.SessionOnlyHomes {
				return errSessionOnlyHomes
			}
			address := joinArgs(args)
			if address == "" {
				return errors.New("address must be non-empty")
			}

			point, err := resolvePoint(cmd.Context(), cmd, deps, address)
			if err != nil {
				return err
			}

			deps.Locations.AddHome(cmd.Context(), domain.Home{Address: address, Point: point})
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added home %q at %s\n", address, point)
			return nil
		},
	}
	addPointFlags(cmd)
	return cmd
}

func newHomeListCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List candidate homes in the order they were added.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := formatFlag(cmd)
			if err != nil {
				return err
			}

			homes := deps.Locations.Homes()
			payload := make([]homeRow, 0, len(homes))
			rows := make([][]string, 0, len(homes))
			for _, h := range homes {
				payload = append(payload, homeRow{Address: h.Address, Lat: h.Point.Lat, Lng: h.Point.Lng})
				rows = append(rows, []string{h.Address, coord(h.Point.Lat), coord(h.Point.Lng)})
			}

			return render(cmd.OutOrStdout(), format, payload, []string{"ADDRESS", "LAT", "LNG"}, rows)
		},
	}
}
