// Package tui renders provisioning reports for the terminal using
// lipgloss styles.
package tui
