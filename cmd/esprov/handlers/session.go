// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/esprov/internal/config"
	"github.com/imamik/esprov/internal/config/wizard"
	"github.com/imamik/esprov/internal/platform/elastic"
	"github.com/imamik/esprov/internal/provisioning"
	"github.com/imamik/esprov/internal/ui/tui"
)

// GlobalOptions holds the flags shared by every command.
type GlobalOptions struct {
	EnvFile     string
	URL         string
	Verbose     bool
	Debug       bool
	JSON        bool
	MetricsFile string
}

func (o *GlobalOptions) verbosity() int {
	switch {
	case o.Debug:
		return 2
	case o.Verbose:
		return 1
	default:
		return 0
	}
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig reads the connection settings.
	loadConfig = config.Load

	// newClusterClient creates the cluster API client.
	newClusterClient = func(conn elastic.Connection, opts ...elastic.ClientOption) (elastic.API, error) {
		return elastic.NewRealClient(conn, opts...)
	}

	// lookupEnv resolves password_env references of manifests.
	lookupEnv = os.Getenv

	// isInteractive reports whether wizards may prompt.
	isInteractive = tui.IsInteractiveTTY

	// runUserWizard, runIndexWizard and runSearchWizard prompt for
	// positional arguments that were not given.
	runUserWizard   = wizard.RunUserWizard
	runIndexWizard  = wizard.RunIndexWizard
	runSearchWizard = wizard.RunSearchWizard

	// writeManifest writes the init manifest.
	writeManifest = wizard.WriteManifest

	// stdout receives reports, stderr receives logs.
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// session bundles what one command needs to talk to the cluster.
type session struct {
	opts        *GlobalOptions
	cfg         *config.Config
	provisioner *provisioning.Provisioner
	registry    *prometheus.Registry
}

// newSession loads the configuration and builds a provisioner on top of
// the cluster client. Retried calls are logged and counted.
func newSession(opts *GlobalOptions, provOpts ...provisioning.Option) (*session, error) {
	cfg, err := loadConfig(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	if opts.URL != "" {
		cfg = cfg.WithURL(opts.URL)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --url: %w", err)
		}
	}

	conn, err := cfg.Connection()
	if err != nil {
		return nil, err
	}

	observer := provisioning.NewConsoleObserver(provisioning.NewLogger(stderr, opts.verbosity()))
	registry := prometheus.NewRegistry()
	metrics := provisioning.NewMetrics(registry)

	timeouts := cfg.Timeouts
	if timeouts == nil {
		timeouts = config.LoadTimeouts()
	}

	clientOpts := []elastic.ClientOption{
		elastic.WithTimeouts(timeouts.Elastic()),
		elastic.WithRetryHook(func(op string, attempt int, delay time.Duration, err error) {
			provisioning.LogRetry(observer, op, attempt, delay, err)
			metrics.RecordRetry(op)
		}),
	}
	if opts.Debug {
		clientOpts = append(clientOpts, elastic.WithTransportLogger(elastic.RedactSecurityBodies(&elastictransport.TextLogger{
			Output:             stderr,
			EnableRequestBody:  true,
			EnableResponseBody: true,
		})))
	}

	api, err := newClusterClient(conn, clientOpts...)
	if err != nil {
		return nil, err
	}

	provOpts = append([]provisioning.Option{
		provisioning.WithMetrics(metrics),
		provisioning.WithSeedConcurrency(timeouts.SeedConcurrency),
	}, provOpts...)

	return &session{
		opts:        opts,
		cfg:         cfg,
		provisioner: provisioning.New(api, observer, provOpts...),
		registry:    registry,
	}, nil
}

// close writes the metrics file if one was requested. A write failure is
// logged, never returned, so that it cannot mask the command's result.
func (s *session) close() {
	if s.opts.MetricsFile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(s.opts.MetricsFile, s.registry); err != nil {
		s.provisioner.Observer().Printf("failed to write metrics file %s: %v", s.opts.MetricsFile, err)
	}
}
