package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/imamik/esprov/internal/config"
	"github.com/imamik/esprov/internal/config/wizard"
	"github.com/imamik/esprov/internal/provisioning"
	"github.com/imamik/esprov/internal/ui/tui"
)

// IndexOptions holds the index command flags.
type IndexOptions struct {
	Recreate         bool
	Seed             bool
	AllowPartialSeed bool
}

// IndexResultJSON is the JSON output of the index command.
type IndexResultJSON struct {
	Index ResultJSON `json:"index"`
	Seed  *SeedJSON  `json:"seed,omitempty"`
}

// Index ensures an index exists with the articles mapping and optionally
// writes the sample documents into it.
func Index(ctx context.Context, opts *GlobalOptions, indexOpts IndexOptions, args []string) error {
	template, err := articlesTemplate()
	if err != nil {
		return err
	}

	answers, err := indexAnswersFromArgs(ctx, args, template, indexOpts)
	if err != nil {
		return err
	}

	spec := answers.Spec(template)
	if err := spec.Validate().Err(); err != nil {
		return err
	}

	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.close()

	result := s.provisioner.EnsureIndex(ctx, spec, answers.Policy())

	var seed *provisioning.SeedReport
	if result.OK() && len(spec.Seed) > 0 {
		seed = &provisioning.SeedReport{
			Index:   spec.Name,
			Results: s.provisioner.SeedDocuments(ctx, spec.Name, spec.Seed),
		}
		seed.RefreshErr = s.provisioner.Refresh(ctx, spec.Name)
	}

	if opts.JSON {
		out := IndexResultJSON{Index: toResultJSON(result)}
		if seed != nil {
			sj := toSeedJSON(*seed)
			out.Seed = &sj
		}
		if err := printJSON(stdout, out); err != nil {
			return err
		}
	} else {
		fmt.Fprint(stdout, tui.RenderResults("Indices", []provisioning.ReconcileResult{result}))
		if seed != nil {
			fmt.Fprint(stdout, tui.RenderSeed(*seed))
		}
	}

	if err := resultError(result); err != nil {
		return err
	}
	if seed != nil {
		return seedError(seed.Index, seed.Results, indexOpts.AllowPartialSeed)
	}
	return nil
}

// articlesTemplate returns the index of the built-in dataset, whose mapping
// and documents the index command uses.
func articlesTemplate() (provisioning.IndexSpec, error) {
	m, _ := config.SampleManifest(func(string) string { return "" })
	plan, err := m.Plan(lookupEnv)
	if err != nil {
		return provisioning.IndexSpec{}, fmt.Errorf("built-in dataset: %w", err)
	}
	return plan.Indices[0], nil
}

func indexAnswersFromArgs(ctx context.Context, args []string, template provisioning.IndexSpec, indexOpts IndexOptions) (*wizard.IndexAnswers, error) {
	if len(args) == 3 {
		shards, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("invalid shards %q: must be an integer", args[1])
		}
		replicas, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("invalid replicas %q: must be an integer", args[2])
		}
		return &wizard.IndexAnswers{
			Name:     args[0],
			Shards:   shards,
			Replicas: replicas,
			Seed:     indexOpts.Seed,
			Recreate: indexOpts.Recreate,
		}, nil
	}

	if !isInteractive() {
		return nil, fmt.Errorf("%w: usage: esprov index <index> <shards> <replicas>", errNotInteractive)
	}
	answers, err := runIndexWizard(ctx, wizard.IndexAnswers{
		Name:     template.Name,
		Shards:   template.Shards,
		Replicas: template.Replicas,
		Seed:     indexOpts.Seed,
		Recreate: indexOpts.Recreate,
	})
	if err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}
	return answers, nil
}
