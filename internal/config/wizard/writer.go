package wizard

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/imamik/esprov/internal/config"
)

// ErrNotOverwritten is returned by WriteManifest when the user declines to
// replace an existing file.
var ErrNotOverwritten = errors.New("existing file kept")

// Function variable for dependency injection in tests.
var confirmOverwrite = defaultConfirmOverwrite

// WriteManifest writes a manifest with a descriptive header. An existing
// file is replaced only after confirmation, or when force is set.
func WriteManifest(manifest []byte, outputPath string, force bool) error {
	if !force && FileExists(outputPath) {
		ok, err := confirmOverwrite(outputPath)
		if err != nil {
			return fmt.Errorf("failed to confirm overwrite: %w", err)
		}
		if !ok {
			return ErrNotOverwritten
		}
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(outputPath))
	sb.WriteString("\n")
	sb.Write(manifest)

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func generateHeader(outputPath string) string {
	return fmt.Sprintf(`# esprov manifest
# Generated by: esprov init
# Generated at: %s
#
# Connection settings are read from the environment or a .env file:
#   %s (default %s)
#   %s (default %s)
#   %s
#
# Usage:
#   esprov apply -f %s
`, time.Now().Format(time.RFC3339),
		config.EnvURL, config.DefaultURL,
		config.EnvUsername, config.DefaultUsername,
		config.EnvPassword,
		outputPath)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func defaultConfirmOverwrite(path string) (bool, error) {
	var overwrite bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("File already exists: %s", path)).
		Description("Overwrite?").
		Value(&overwrite).
		Run()
	return overwrite, err
}
