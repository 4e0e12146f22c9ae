// Package wizard provides the interactive prompts esprov shows when a
// command is run without positional arguments.
//
// It uses charmbracelet/huh for form-based input collection. Each Run*
// function collects the answers of one command; the Spec helpers turn the
// answers into provisioning specs. WriteManifest writes a starter manifest
// for `esprov init`.
package wizard
