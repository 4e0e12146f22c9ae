package provisioning

import (
	"fmt"
	"time"
)

// ResourceKind names the kind of a reconciled resource.
type ResourceKind string

// Resource kinds.
const (
	KindUser     ResourceKind = "user"
	KindIndex    ResourceKind = "index"
	KindDocument ResourceKind = "document"
)

// Outcome is the top-level result of reconciling one resource.
type Outcome int

// Outcomes.
const (
	OutcomeCreated Outcome = iota + 1
	OutcomeAlreadyExists
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeAlreadyExists:
		return "already_exists"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Disposition qualifies an AlreadyExists outcome.
type Disposition int

// Dispositions.
const (
	DispositionNone Disposition = iota
	Skipped
	Recreated
	Updated
)

func (d Disposition) String() string {
	switch d {
	case Skipped:
		return "skipped"
	case Recreated:
		return "recreated"
	case Updated:
		return "updated"
	default:
		return ""
	}
}

// ReconcileResult reports what reconciling one resource did. Values are
// built by Created, AlreadyExists and Failed and are not modified afterwards.
type ReconcileResult struct {
	Kind        ResourceKind
	Name        string
	Outcome     Outcome
	Disposition Disposition
	// State is the last known state of the resource. For failures it is the
	// stage the resource was in when the call failed.
	State  State
	Reason string
	Err    error
}

// Created reports a resource that did not exist and was created.
func Created(kind ResourceKind, name string) ReconcileResult {
	return ReconcileResult{Kind: kind, Name: name, Outcome: OutcomeCreated, State: StatePresent}
}

// AlreadyExists reports a resource that existed before the call.
func AlreadyExists(kind ResourceKind, name string, d Disposition) ReconcileResult {
	return ReconcileResult{Kind: kind, Name: name, Outcome: OutcomeAlreadyExists, Disposition: d, State: StatePresent}
}

// Failed reports a resource that could not be reconciled.
func Failed(kind ResourceKind, name string, state State, reason string, err error) ReconcileResult {
	return ReconcileResult{Kind: kind, Name: name, Outcome: OutcomeFailed, State: state, Reason: reason, Err: err}
}

// OK reports whether the resource is in the desired state.
func (r ReconcileResult) OK() bool {
	return r.Outcome == OutcomeCreated || r.Outcome == OutcomeAlreadyExists
}

// Label is the outcome with its disposition, e.g. "already_exists(skipped)".
func (r ReconcileResult) Label() string {
	if r.Outcome == OutcomeAlreadyExists && r.Disposition != DispositionNone {
		return fmt.Sprintf("%s(%s)", r.Outcome, r.Disposition)
	}
	return r.Outcome.String()
}

func (r ReconcileResult) String() string {
	s := fmt.Sprintf("%s %s: %s", r.Kind, r.Name, r.Label())
	if r.Outcome == OutcomeFailed {
		s += fmt.Sprintf(" (%s in state %s)", r.Reason, r.State)
		if r.Err != nil {
			s += ": " + r.Err.Error()
		}
	}
	return s
}

// CountOutcomes tallies results by outcome.
func CountOutcomes(results []ReconcileResult) map[Outcome]int {
	counts := make(map[Outcome]int, 3)
	for _, r := range results {
		counts[r.Outcome]++
	}
	return counts
}

// FirstFailure returns the first failed result, if any.
func FirstFailure(results []ReconcileResult) (ReconcileResult, bool) {
	for _, r := range results {
		if r.Outcome == OutcomeFailed {
			return r, true
		}
	}
	return ReconcileResult{}, false
}

// HitSummary is a short description of one search hit.
type HitSummary struct {
	ID     string
	Score  float64
	Source map[string]any
}

// Bucket is one terms aggregation bucket.
type Bucket struct {
	Key      string
	DocCount int64
}

// VerificationOutcome reports one verification query.
type VerificationOutcome struct {
	Name    string
	Elapsed time.Duration
	// Took is the server-side search time.
	Took     time.Duration
	HitCount int64
	Top      []HitSummary
	Buckets  []Bucket
	// Skipped is set when the index has no field of the class the query
	// needs; Reason names the missing class.
	Skipped bool
	Reason  string
	Err     error
}

// Failed reports whether the query ran and failed.
func (v VerificationOutcome) Failed() bool {
	return v.Err != nil
}
