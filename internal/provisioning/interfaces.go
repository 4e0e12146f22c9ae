package provisioning

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the provisioning logic for this phase. A returned
	// error stops the pipeline; per-resource failures are recorded in the
	// report instead.
	Provision(ctx *Context) error
}
