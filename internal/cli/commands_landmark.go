package cli

import (
	"fmt"
	"how-far-is-it/internal/domain"

	"github.com/spf13/cobra"
)

func newLandmarkCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "landmark",
		Short: "Manage landmarks.",
	}
	cmd.AddCommand(newLandmarkAddCommand(deps))
	cmd.AddCommand(newLandmarkListCommand(deps))
	cmd.AddCommand(newLandmarkRenameCommand(deps))
	cmd.AddCommand(newLandmarkRemoveCommand(deps))
	return cmd
}

func newLandmarkAddCommand(deps Dependencies) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <address>",
		Short: "Add a landmark at an address.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address := joinArgs(args)

			point, err := resolvePoint(cmd.Context(), cmd, deps, address)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("name") {
				name = deps.DefaultLandmarkName
			}
			l := deps.Locations.AddLandmark(cmd.Context(), domain.NewLandmark(name, point))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added landmark %s %q at %s\n", l.ID, l.Name, l.Point)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Landmark label.")
	addPointFlags(cmd)
	return cmd
}

func newLandmarkListCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List landmarks with their last computed routes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := formatFlag(cmd)
			if err != nil {
				return err
			}
			payload, rows := landmarkRows(deps.Locations.Landmarks())
			return render(cmd.OutOrStdout(), format, payload,
				[]string{"ID", "NAME", "LAT", "LNG", "DURATION", "DISTANCE"}, rows)
		},
	}
}

func newLandmarkRenameCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a landmark. Routes are kept.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Locations.RenameLandmark(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "renamed landmark %s to %q\n", args[0], args[1])
			return nil
		},
	}
}

func newLandmarkRemoveCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove every landmark with the given name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := deps.Locations.RemoveLandmark(cmd.Context(), args[0])
			if n == 0 {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "no landmark named %q\n", args[0])
				return &exitError{code: 3}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d landmark(s) named %q\n", n, args[0])
			return nil
		},
	}
}

func landmarkRows(ls []domain.Landmark) ([]landmarkRow, [][]string) {
	payload := make([]landmarkRow, 0, len(ls))
	rows := make([][]string, 0, len(ls))
	for _, l := range ls {
		r := landmarkRow{ID: l.ID, Name: l.Name, Lat: l.Point.Lat, Lng: l.Point.Lng}
		if l.Route != nil {
			r.Duration = l.Route.DurationText
			r.Distance = l.Route.DistanceText
		}
		payload = append(payload, r)
		rows = append(rows, []string{r.ID, orDash(r.Name), coord(r.Lat), coord(r.Lng), orDash(r.Duration), orDash(r.Distance)})
	}
	return payload, rows
}
