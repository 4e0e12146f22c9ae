package provisioning

import (
	"context"
	"time"
)

// Apply reconciles the whole plan: health check, users, indices with their
// seed documents, then verification. It always returns a report; a plan
// that fails validation is reported without any cluster call.
func (p *Provisioner) Apply(ctx context.Context, plan *Plan) *Report {
	return p.ApplyPhases(ctx, plan, DefaultPhases())
}

// ApplyPhases is Apply with a custom phase list.
func (p *Provisioner) ApplyPhases(ctx context.Context, plan *Plan, phases []Phase) *Report {
	start := time.Now()
	pctx := NewContext(ctx, p, plan)

	errs := plan.Validate()
	for _, w := range errs.Warnings() {
		pctx.Observer.Printf("[validation] WARNING: %s", w.Error())
	}
	if err := errs.Err(); err != nil {
		pctx.Report.Err = err
		pctx.Report.Duration = time.Since(start)
		return pctx.Report
	}

	pctx.Report.Err = RunPhases(pctx, phases)
	pctx.Report.Duration = time.Since(start)
	return pctx.Report
}
