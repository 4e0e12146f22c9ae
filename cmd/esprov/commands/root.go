// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imamik/esprov/cmd/esprov/handlers"
)

// Root returns the root command for the esprov CLI.
//
// The root command owns the connection and output flags shared by every
// subcommand and organizes the command hierarchy.
func Root() *cobra.Command {
	opts := &handlers.GlobalOptions{}

	cmd := &cobra.Command{
		Use:   "esprov",
		Short: "Provision users, indices and sample data on Elasticsearch",
		Long: `Provision a known-good Elasticsearch setup and verify it.

Connection settings are read from the environment, optionally backed by a
.env file:

  ELASTICSEARCH_URL       cluster URL(s), comma-separated (default http://localhost:9200)
  ELASTIC_USERNAME        username (default elastic)
  ELASTIC_PASSWORD        password (required)
  ELASTICSEARCH_CA_CERT   path to a PEM CA certificate
  ELASTICSEARCH_INSECURE  skip TLS verification (development only)

Every command is idempotent: existing users and indices are reported as
already existing instead of failing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.EnvFile, "env-file", ".env", "Path to the credentials file (empty to skip)")
	flags.StringVar(&opts.URL, "url", "", "Cluster URL, overrides ELASTICSEARCH_URL")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Log every cluster call")
	flags.BoolVar(&opts.Debug, "debug", false, "Log HTTP requests and responses (security request bodies are omitted)")
	flags.BoolVar(&opts.JSON, "json", false, "Output in JSON format")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "Write prometheus metrics to this file on exit")

	// Provisioning commands
	cmd.AddCommand(User(opts))
	cmd.AddCommand(Index(opts))
	cmd.AddCommand(Search(opts))
	cmd.AddCommand(Apply(opts))
	cmd.AddCommand(Health(opts))

	// Utility commands
	cmd.AddCommand(Init())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// allOrNone accepts either no positional arguments (interactive mode) or
// exactly n of them.
func allOrNone(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args) == n {
			return nil
		}
		return fmt.Errorf("accepts 0 or %d arg(s), received %d", n, len(args))
	}
}
