package provisioning

import (
	"context"
)

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Provisioner *Provisioner
	Plan        *Plan
	Report      *Report
	Observer    Observer
}

// NewContext creates a new provisioning context with an empty report.
func NewContext(ctx context.Context, p *Provisioner, plan *Plan) *Context {
	return &Context{
		Context:     ctx,
		Provisioner: p,
		Plan:        plan,
		Report:      &Report{},
		Observer:    p.Observer(),
	}
}
