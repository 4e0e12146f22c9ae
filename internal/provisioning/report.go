package provisioning

import (
	"slices"
	"time"

	"github.com/imamik/esprov/internal/platform/elastic"
)

// SeedReport holds the per-document results of one index.
type SeedReport struct {
	Index   string
	Results []ReconcileResult
	// RefreshErr is set when the refresh after seeding failed. It is not
	// fatal.
	RefreshErr error
}

// VerificationReport holds the outcomes of one verification suite run.
type VerificationReport struct {
	Index    string
	Query    string
	Outcomes []VerificationOutcome
}

// Report aggregates one Apply run.
type Report struct {
	Health       *elastic.Health
	Users        []ReconcileResult
	Indices      []ReconcileResult
	Seeds        []SeedReport
	Verification []VerificationReport
	// Err is the error that stopped the run early, if any.
	Err      error
	Duration time.Duration
}

// ResourceFailures returns the failed user and index results.
func (r *Report) ResourceFailures() []ReconcileResult {
	var out []ReconcileResult
	for _, res := range slices.Concat(r.Users, r.Indices) {
		if res.Outcome == OutcomeFailed {
			out = append(out, res)
		}
	}
	return out
}

// SeedFailures returns the failed document results of all indices.
func (r *Report) SeedFailures() []ReconcileResult {
	var out []ReconcileResult
	for _, s := range r.Seeds {
		for _, res := range s.Results {
			if res.Outcome == OutcomeFailed {
				out = append(out, res)
			}
		}
	}
	return out
}

// VerificationFailures returns the verification queries that ran and failed.
func (r *Report) VerificationFailures() []VerificationOutcome {
	var out []VerificationOutcome
	for _, v := range r.Verification {
		for _, o := range v.Outcomes {
			if o.Failed() {
				out = append(out, o)
			}
		}
	}
	return out
}

// Failed reports whether the run stopped early or any user, index or
// document failed. Verification failures do not count.
func (r *Report) Failed() bool {
	return r.Err != nil || len(r.ResourceFailures()) > 0 || len(r.SeedFailures()) > 0
}
