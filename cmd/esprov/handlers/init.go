package handlers

import (
	"errors"
	"fmt"

	"github.com/imamik/esprov/internal/config"
	"github.com/imamik/esprov/internal/config/wizard"
)

// Init writes the built-in manifest to outputPath.
func Init(outputPath string, force bool) error {
	if !force && !isInteractive() && wizard.FileExists(outputPath) {
		return fmt.Errorf("%s already exists, use --force to overwrite", outputPath)
	}

	err := writeManifest(config.SampleManifestYAML(), outputPath, force)
	if errors.Is(err, wizard.ErrNotOverwritten) {
		fmt.Fprintf(stdout, "Kept existing %s.\n", outputPath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	fmt.Fprintln(stdout, "Manifest saved!")
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "  File: %s\n", outputPath)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Next steps:")
	fmt.Fprintf(stdout, "  1. Set %s to create the demo user\n", config.SampleDemoPasswordEnv)
	fmt.Fprintf(stdout, "  2. esprov apply -f %s\n", outputPath)
	return nil
}
