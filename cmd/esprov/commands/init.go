package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/esprov/cmd/esprov/handlers"
)

// Init returns the command writing the sample manifest to a file.
//
// Flags:
//
//	--output, -o: Path to output file (default "esprov.yaml")
//	--force: overwrite without asking
func Init() *cobra.Command {
	var (
		outputPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the sample manifest to a file",
		Long: `Write the built-in articles manifest to a file as a starting point
for 'esprov apply -f'.

An existing file is only overwritten after confirmation, or with --force.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Init(outputPath, force)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "esprov.yaml", "Output file path")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file without asking")

	return cmd
}
