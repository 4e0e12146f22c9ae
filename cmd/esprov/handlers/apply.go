package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/esprov/internal/config"
	"github.com/imamik/esprov/internal/provisioning"
	"github.com/imamik/esprov/internal/ui/tui"
)

// ApplyOptions holds the apply command flags.
type ApplyOptions struct {
	// ManifestPath is the manifest to apply; empty applies the built-in
	// dataset.
	ManifestPath     string
	Recreate         bool
	AllowPartialSeed bool
	Strict           bool
	HashPasswords    bool
}

// loadManifest reads a manifest from disk (for testing injection).
var loadManifest = config.LoadManifest

// Apply runs the full provisioning workflow:
//  1. Loads the manifest (or the built-in dataset) and turns it into a plan
//  2. Checks cluster health; unreachable, unauthorized or red clusters stop here
//  3. Ensures users, then indices, writes documents and refreshes
//  4. Runs the verification queries
//
// The report is always printed. The returned error follows the exit code
// policy of applyError.
func Apply(ctx context.Context, opts *GlobalOptions, applyOpts ApplyOptions) error {
	plan, err := loadPlan(applyOpts)
	if err != nil {
		return err
	}

	var provOpts []provisioning.Option
	if applyOpts.HashPasswords {
		provOpts = append(provOpts, provisioning.WithHashPasswords(0))
	}

	s, err := newSession(opts, provOpts...)
	if err != nil {
		return err
	}
	defer s.close()

	report := s.provisioner.Apply(ctx, plan)

	if opts.JSON {
		if err := printJSON(stdout, toReportJSON(report)); err != nil {
			return err
		}
	} else {
		fmt.Fprint(stdout, tui.RenderReport(report))
	}

	return applyError(report, applyOpts.AllowPartialSeed, applyOpts.Strict)
}

// loadPlan builds the plan from the manifest flag.
func loadPlan(applyOpts ApplyOptions) (*provisioning.Plan, error) {
	var m *config.Manifest
	if applyOpts.ManifestPath == "" {
		var skipped []string
		m, skipped = config.SampleManifest(lookupEnv)
		if len(skipped) > 0 {
			fmt.Fprintf(stderr, "Skipping user(s) %s: set %s to create them.\n",
				strings.Join(skipped, ", "), config.SampleDemoPasswordEnv)
		}
	} else {
		var err error
		m, err = loadManifest(applyOpts.ManifestPath)
		if err != nil {
			return nil, err
		}
	}

	plan, err := m.Plan(lookupEnv)
	if err != nil {
		return nil, err
	}
	if applyOpts.Recreate {
		plan.Policy = provisioning.Recreate
	}
	return plan, nil
}
