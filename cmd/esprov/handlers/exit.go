package handlers

import (
	"errors"
	"fmt"

	"github.com/imamik/esprov/internal/platform/elastic"
	"github.com/imamik/esprov/internal/provisioning"
)

// ErrVerificationFailed is returned under --strict when a verification
// query failed.
var ErrVerificationFailed = errors.New("verification failed")

// ErrSeedFailed is returned when documents could not be written and
// partial seeding is not allowed.
var ErrSeedFailed = errors.New("seeding failed")

// resultError turns a failed reconcile result into the command's error.
func resultError(r provisioning.ReconcileResult) error {
	if r.OK() {
		return nil
	}
	if r.Err != nil {
		return fmt.Errorf("%s %s: %s: %w", r.Kind, r.Name, r.Reason, r.Err)
	}
	return fmt.Errorf("%s %s: %s", r.Kind, r.Name, r.Reason)
}

// seedError reports failed documents unless partial seeding is allowed.
func seedError(index string, results []provisioning.ReconcileResult, allowPartial bool) error {
	if allowPartial {
		return nil
	}
	first, failed := provisioning.FirstFailure(results)
	if !failed {
		return nil
	}
	n := provisioning.CountOutcomes(results)[provisioning.OutcomeFailed]
	return fmt.Errorf("%w: %d of %d documents in %s failed, first %s: %v",
		ErrSeedFailed, n, len(results), index, first.Name, first.Err)
}

// verificationError reports failed queries under strict mode. A query that
// failed because the credentials were rejected, the cluster was unreachable
// or the index does not exist is fatal in either mode.
func verificationError(outcomes []provisioning.VerificationOutcome, strict bool) error {
	for _, o := range outcomes {
		if clusterUnusable(o.Err) {
			return fmt.Errorf("%s: %w", o.Name, o.Err)
		}
	}
	if !strict {
		return nil
	}
	var failed []string
	for _, o := range outcomes {
		if o.Failed() {
			failed = append(failed, o.Name)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d queries failed: %v", ErrVerificationFailed, len(failed), failed)
}

// applyError decides the exit status of an apply run. A run that stopped
// early, any failed user or index, and failed documents (unless
// allowPartialSeed) are fatal. Verification failures only count when
// strict is set.
func applyError(r *provisioning.Report, allowPartialSeed, strict bool) error {
	if r.Err != nil {
		return r.Err
	}
	if failures := r.ResourceFailures(); len(failures) > 0 {
		return fmt.Errorf("%d resource(s) failed, first: %w", len(failures), resultError(failures[0]))
	}
	for _, s := range r.Seeds {
		if err := seedError(s.Index, s.Results, allowPartialSeed); err != nil {
			return err
		}
	}
	var outcomes []provisioning.VerificationOutcome
	for _, v := range r.Verification {
		outcomes = append(outcomes, v.Outcomes...)
	}
	return verificationError(outcomes, strict)
}

func clusterUnusable(err error) bool {
	return errors.Is(err, elastic.ErrAuth) || errors.Is(err, elastic.ErrConnection) || errors.Is(err, elastic.ErrNotFound)
}
