package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the complete command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	root := &cobra.Command{
		Use:           "howfar",
		Short:         "Compare candidate homes by driving time to your landmarks.",
		Version:       resolvedVersion(deps.Version),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().String("format", "table", "Output format: table, json, or yaml.")

	root.AddCommand(newHomeCommand(deps))
	root.AddCommand(newLandmarkCommand(deps))
	root.AddCommand(newRoutesCommand(deps))

	return root
}

func resolvedVersion(v string) string {
	if v == "" {
		return "dev"
	}
	return v
}

func formatFlag(cmd *cobra.Command) (Format, error) {
	raw, _ := cmd.Flags().GetString("format")
	return ParseFormat(raw)
}
