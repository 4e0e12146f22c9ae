package provisioning

import (
	"errors"
	"fmt"

	"github.com/imamik/esprov/internal/platform/elastic"
)

// DefaultPhases returns the phases Apply runs, in order.
func DefaultPhases() []Phase {
	return []Phase{
		&HealthPhase{},
		&UsersPhase{},
		&IndicesPhase{},
		&VerificationPhase{},
	}
}

// abortCause returns the error of a result that no later call can recover
// from: rejected credentials or an unreachable cluster.
func abortCause(r ReconcileResult) error {
	if r.Outcome != OutcomeFailed {
		return nil
	}
	if errors.Is(r.Err, elastic.ErrAuth) || errors.Is(r.Err, elastic.ErrConnection) {
		return fmt.Errorf("%s %s: %w", r.Kind, r.Name, r.Err)
	}
	return nil
}

// HealthPhase checks that the cluster answers and is not red.
type HealthPhase struct{}

// Name implements Phase.
func (*HealthPhase) Name() string { return phaseHealth }

// Provision implements Phase.
func (*HealthPhase) Provision(ctx *Context) error {
	h, err := ctx.Provisioner.Health(ctx)
	ctx.Report.Health = h
	if err != nil {
		return err
	}
	ctx.Observer.Printf("[%s] cluster %q is %s (%d nodes)", phaseHealth, h.ClusterName, h.Status, h.NumberOfNodes)
	return nil
}

// UsersPhase ensures every user of the plan.
type UsersPhase struct{}

// Name implements Phase.
func (*UsersPhase) Name() string { return phaseUsers }

// Provision implements Phase.
func (*UsersPhase) Provision(ctx *Context) error {
	for i, spec := range ctx.Plan.Users {
		r := ctx.Provisioner.EnsureUser(ctx, spec)
		ctx.Report.Users = append(ctx.Report.Users, r)
		ctx.Observer.Progress(phaseUsers, i+1, len(ctx.Plan.Users))
		if err := abortCause(r); err != nil {
			return err
		}
	}
	return nil
}

// IndicesPhase ensures every index of the plan, seeds it and refreshes it.
type IndicesPhase struct{}

// Name implements Phase.
func (*IndicesPhase) Name() string { return phaseIndices }

// Provision implements Phase.
func (*IndicesPhase) Provision(ctx *Context) error {
	for _, spec := range ctx.Plan.Indices {
		r := ctx.Provisioner.EnsureIndex(ctx, spec, ctx.Plan.Policy)
		ctx.Report.Indices = append(ctx.Report.Indices, r)
		if err := abortCause(r); err != nil {
			return err
		}
		if !r.OK() || len(spec.Seed) == 0 {
			continue
		}

		seed := SeedReport{Index: spec.Name}
		seed.Results = ctx.Provisioner.SeedDocuments(ctx, spec.Name, spec.Seed)
		for _, dr := range seed.Results {
			if err := abortCause(dr); err != nil {
				ctx.Report.Seeds = append(ctx.Report.Seeds, seed)
				return err
			}
		}
		if !ctx.Plan.SkipRefresh {
			seed.RefreshErr = ctx.Provisioner.Refresh(ctx, spec.Name)
		}
		ctx.Report.Seeds = append(ctx.Report.Seeds, seed)
	}
	return nil
}

// VerificationPhase runs the verification suites of the plan. It never
// fails; query errors are part of the outcomes.
type VerificationPhase struct{}

// Name implements Phase.
func (*VerificationPhase) Name() string { return phaseVerification }

// Provision implements Phase.
func (*VerificationPhase) Provision(ctx *Context) error {
	for _, v := range ctx.Plan.Verification {
		outcomes := ctx.Provisioner.RunVerificationSuite(ctx, v.Index, v.Query, v.options()...)
		ctx.Report.Verification = append(ctx.Report.Verification, VerificationReport{
			Index:    v.Index,
			Query:    v.Query,
			Outcomes: outcomes,
		})
	}
	return nil
}
