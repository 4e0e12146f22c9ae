package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/esprov/cmd/esprov/handlers"
)

// Apply returns the command running the full provisioning workflow.
//
// Optional flags:
//
//	--file, -f: Path to a manifest (default: built-in articles dataset)
//	--recreate: recreate every existing index of the manifest
//	--allow-partial-seed: do not fail on document failures
//	--strict: fail on verification query failures
func Apply(opts *handlers.GlobalOptions) *cobra.Command {
	var applyOpts handlers.ApplyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Provision users, indices and documents, then verify",
		Long: `Run the full workflow: check cluster health, ensure users,
ensure indices, write their documents, refresh and run the verification
queries.

Without --file, the built-in articles dataset is applied. Its demo user is
only created when ESPROV_DEMO_PASSWORD is set. Use 'esprov init' to write
the dataset to a file as a starting point.

Running apply twice leaves the cluster unchanged.

Examples:
  esprov apply
  esprov apply -f esprov.yaml
  esprov apply -f esprov.yaml --recreate --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), opts, applyOpts)
		},
	}

	cmd.Flags().StringVarP(&applyOpts.ManifestPath, "file", "f", "", "Path to the manifest (default: built-in articles dataset)")
	cmd.Flags().BoolVar(&applyOpts.Recreate, "recreate", false, "Recreate existing indices")
	cmd.Flags().BoolVar(&applyOpts.AllowPartialSeed, "allow-partial-seed", false, "Do not fail when some documents could not be written")
	cmd.Flags().BoolVar(&applyOpts.Strict, "strict", false, "Fail if any verification query fails")
	cmd.Flags().BoolVar(&applyOpts.HashPasswords, "hash-passwords", false, "Send bcrypt password hashes instead of passwords")

	return cmd
}
