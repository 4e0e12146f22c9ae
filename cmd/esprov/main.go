// Package main is the entry point for the esprov CLI.
//
// esprov provisions a small, known-good Elasticsearch setup: native realm
// users, indices with explicit mappings, seed documents and a suite of
// verification queries. Every command is idempotent and can be re-run
// against the same cluster.
//
// Commands: user, index, search, apply, health, init, version.
//
// For detailed usage information, run:
//
//	esprov --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/esprov/cmd/esprov/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
