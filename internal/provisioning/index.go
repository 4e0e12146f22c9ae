package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/imamik/esprov/internal/platform/elastic"
)

// Failure reasons of EnsureIndex that callers match on.
const (
	ReasonDeleteFailed = "delete failed, index unchanged"
	ReasonPartial      = "partial: deleted, not recreated"
)

// EnsureIndex makes sure the index exists with the spec's settings and
// mapping. An existing index is left alone under Skip and deleted and
// created again under Recreate.
//
// The existence check and the create are separate calls, so a concurrent
// creator can slip in between them. A create that loses that race is
// reported as AlreadyExists(Skipped) under Skip and as a conflict under
// Recreate.
func (p *Provisioner) EnsureIndex(ctx context.Context, spec IndexSpec, policy Policy) ReconcileResult {
	start := time.Now()
	r := p.ensureIndex(ctx, spec, policy)
	p.opts.Metrics.recordResult(r, time.Since(start))
	LogResult(p.observer, r)
	return r
}

func (p *Provisioner) ensureIndex(ctx context.Context, spec IndexSpec, policy Policy) ReconcileResult {
	t := newTracker(KindIndex, spec.Name)

	if err := spec.Validate().Err(); err != nil {
		return t.fail("invalid spec", err)
	}

	exists, err := p.api.IndexExists(ctx, spec.Name)
	if err != nil {
		return t.fail("existence check failed", err)
	}

	if !exists {
		if err := t.to(StateAbsent); err != nil {
			return t.fail("illegal transition", err)
		}
		return p.createIndex(ctx, t, spec, policy, Created(KindIndex, spec.Name))
	}

	if err := t.to(StatePresent); err != nil {
		return t.fail("illegal transition", err)
	}
	if policy == Skip {
		p.reportMappingDrift(ctx, spec)
		return AlreadyExists(KindIndex, spec.Name, Skipped)
	}

	if err := t.to(StateDeleting); err != nil {
		return t.fail("illegal transition", err)
	}
	LogResourceDeleting(p.observer, KindIndex, spec.Name)
	if err := p.api.DeleteIndex(ctx, spec.Name); err != nil {
		return t.fail(ReasonDeleteFailed, err)
	}
	if err := t.to(StateAbsent); err != nil {
		return t.fail("illegal transition", err)
	}
	LogResourceDeleted(p.observer, KindIndex, spec.Name)

	return p.createIndex(ctx, t, spec, policy, AlreadyExists(KindIndex, spec.Name, Recreated))
}

// createIndex moves an absent index to present. It returns success when the
// create call succeeds. A failure after a delete leaves the index absent and
// is reported as partial.
func (p *Provisioner) createIndex(ctx context.Context, t *tracker, spec IndexSpec, policy Policy, success ReconcileResult) ReconcileResult {
	recreating := success.Disposition == Recreated

	if err := t.to(StateCreating); err != nil {
		return t.fail("illegal transition", err)
	}
	LogResourceCreating(p.observer, KindIndex, spec.Name)

	err := p.api.CreateIndex(ctx, spec.Name, spec.Definition())
	switch {
	case err == nil:
		if err := t.to(StatePresent); err != nil {
			return t.fail("illegal transition", err)
		}
		return success
	case errors.Is(err, elastic.ErrConflict) && policy == Skip:
		// another client created it between the existence check and now
		if err := t.to(StatePresent); err != nil {
			return t.fail("illegal transition", err)
		}
		return AlreadyExists(KindIndex, spec.Name, Skipped)
	case errors.Is(err, elastic.ErrConflict):
		return t.fail("conflict: index created concurrently", err)
	case recreating:
		return t.fail(ReasonPartial, fmt.Errorf("%w: %w", ErrPartial, err))
	default:
		return t.fail("create failed", err)
	}
}

// reportMappingDrift logs the difference between the live mapping and the
// spec. It never changes the index.
func (p *Provisioner) reportMappingDrift(ctx context.Context, spec IndexSpec) {
	live, err := p.api.GetMapping(ctx, spec.Name)
	if err != nil {
		p.observer.Printf("[%s] could not read mapping of %s: %v", phaseIndices, spec.Name, err)
		return
	}
	if diff := MappingDiff(live, spec.Properties()); diff != "" {
		LogDrift(p.observer, KindIndex, spec.Name, diff)
	}
}

// MappingDiff returns a human-readable diff between two mappings, ignoring
// field order, or "" if they are equal.
func MappingDiff(live, want elastic.Properties) string {
	return cmp.Diff(live.Sorted(), want.Sorted(), cmpopts.EquateEmpty())
}
