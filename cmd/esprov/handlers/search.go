package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/esprov/internal/provisioning"
	"github.com/imamik/esprov/internal/ui/tui"
)

// defaultSearchIndex is proposed by the search wizard.
const defaultSearchIndex = "articles"

// SearchOptions holds the search command flags.
type SearchOptions struct {
	Top         int
	RangeMin    float64
	RangeMinSet bool
	Strict      bool
}

func (o SearchOptions) verifyOptions() []provisioning.VerifyOption {
	var opts []provisioning.VerifyOption
	if o.Top > 0 {
		opts = append(opts, provisioning.WithTopN(o.Top))
	}
	if o.RangeMinSet {
		opts = append(opts, provisioning.WithRangeMin(o.RangeMin))
	}
	return opts
}

// Search runs the verification suite against an index.
func Search(ctx context.Context, opts *GlobalOptions, searchOpts SearchOptions, args []string) error {
	index, text, err := searchArgs(ctx, args)
	if err != nil {
		return err
	}
	if err := provisioning.ValidateIndexName(index); err != nil {
		return err
	}

	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.close()

	report := provisioning.VerificationReport{
		Index:    index,
		Query:    text,
		Outcomes: s.provisioner.RunVerificationSuite(ctx, index, text, searchOpts.verifyOptions()...),
	}

	if opts.JSON {
		if err := printJSON(stdout, toVerificationJSON(report)); err != nil {
			return err
		}
	} else {
		fmt.Fprint(stdout, tui.RenderVerification(report))
	}

	return verificationError(report.Outcomes, searchOpts.Strict)
}

func searchArgs(ctx context.Context, args []string) (index, text string, err error) {
	if len(args) == 2 {
		return args[0], args[1], nil
	}
	if !isInteractive() {
		return "", "", fmt.Errorf("%w: usage: esprov search <index> <query>", errNotInteractive)
	}
	answers, err := runSearchWizard(ctx, defaultSearchIndex)
	if err != nil {
		return "", "", fmt.Errorf("wizard canceled: %w", err)
	}
	return answers.Index, answers.Query, nil
}
