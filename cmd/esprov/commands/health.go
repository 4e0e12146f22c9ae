package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/esprov/cmd/esprov/handlers"
)

// Health returns the command for displaying cluster health.
func Health(opts *handlers.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show cluster health",
		Long: `Show the cluster name, status and node count.

A red cluster is reported as a failure.

Examples:
  esprov health
  esprov health --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Health(cmd.Context(), opts)
		},
	}
}
