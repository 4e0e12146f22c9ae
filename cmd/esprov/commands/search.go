package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/esprov/cmd/esprov/handlers"
)

// Search returns the command that runs the verification query suite.
func Search(opts *handlers.GlobalOptions) *cobra.Command {
	var searchOpts handlers.SearchOptions

	cmd := &cobra.Command{
		Use:   "search [index query]",
		Short: "Run the verification queries against an index",
		Long: `Run five verification queries against an index:

  - multi-field match over all text fields
  - bool query with a numeric range filter
  - terms aggregation on the first aggregatable field
  - numeric range
  - fuzzy match on the first text field

Queries whose field class the mapping lacks are skipped. A failing query
is reported but does not fail the command unless --strict is given.

Examples:
  esprov search articles elasticsearch
  esprov search articles elastcsearch --range-min 3`,
		Args: allOrNone(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			searchOpts.RangeMinSet = cmd.Flags().Changed("range-min")
			return handlers.Search(cmd.Context(), opts, searchOpts, args)
		},
	}

	cmd.Flags().IntVar(&searchOpts.Top, "top", 0, "Number of hits to show per query (default 3)")
	cmd.Flags().Float64Var(&searchOpts.RangeMin, "range-min", 2, "Lower bound of the numeric range queries")
	cmd.Flags().BoolVar(&searchOpts.Strict, "strict", false, "Fail if any query fails")

	return cmd
}
