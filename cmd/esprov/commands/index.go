package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/esprov/cmd/esprov/handlers"
)

// Index returns the command that ensures an index exists.
//
// Positional arguments:
//
//	index shards replicas
//
// Optional flags:
//
//	--recreate: delete and recreate an existing index
//	--seed: write the sample documents after creating the index
func Index(opts *handlers.GlobalOptions) *cobra.Command {
	var indexOpts handlers.IndexOptions

	cmd := &cobra.Command{
		Use:   "index [index shards replicas]",
		Short: "Create an index with the articles mapping",
		Long: `Ensure an index exists with the articles mapping
(title: text with a keyword sub-field, priority: integer).

An existing index is skipped unless --recreate is given, in which case it
is deleted and created again with the declared mapping.

Examples:
  # Create the index
  esprov index articles 3 1

  # Create it and write the five sample documents
  esprov index articles 3 1 --seed

  # Replace an existing index
  esprov index articles 1 0 --recreate --seed`,
		Args: allOrNone(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Index(cmd.Context(), opts, indexOpts, args)
		},
	}

	cmd.Flags().BoolVar(&indexOpts.Recreate, "recreate", false, "Delete and recreate the index if it exists")
	cmd.Flags().BoolVar(&indexOpts.Seed, "seed", false, "Write the sample documents")
	cmd.Flags().BoolVar(&indexOpts.AllowPartialSeed, "allow-partial-seed", false, "Do not fail when some documents could not be written")

	return cmd
}
