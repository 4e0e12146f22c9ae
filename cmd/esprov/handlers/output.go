package handlers

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/imamik/esprov/internal/platform/elastic"
	"github.com/imamik/esprov/internal/provisioning"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ResultJSON is a reconcile result for JSON output.
type ResultJSON struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Outcome     string `json:"outcome"`
	Disposition string `json:"disposition,omitempty"`
	State       string `json:"state,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Error       string `json:"error,omitempty"`
}

// HitJSON is one search hit.
type HitJSON struct {
	ID     string         `json:"id"`
	Score  float64        `json:"score"`
	Source map[string]any `json:"source,omitempty"`
}

// BucketJSON is one terms aggregation bucket.
type BucketJSON struct {
	Key      string `json:"key"`
	DocCount int64  `json:"docCount"`
}

// OutcomeJSON is a verification outcome for JSON output.
type OutcomeJSON struct {
	Name      string       `json:"name"`
	ElapsedMS int64        `json:"elapsedMs"`
	TookMS    int64        `json:"tookMs"`
	Hits      int64        `json:"hits"`
	Top       []HitJSON    `json:"top,omitempty"`
	Buckets   []BucketJSON `json:"buckets,omitempty"`
	Skipped   bool         `json:"skipped,omitempty"`
	Reason    string       `json:"reason,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// SeedJSON holds the document results of one index.
type SeedJSON struct {
	Index        string       `json:"index"`
	Documents    []ResultJSON `json:"documents"`
	RefreshError string       `json:"refreshError,omitempty"`
}

// VerificationJSON holds one verification suite run.
type VerificationJSON struct {
	Index   string        `json:"index"`
	Query   string        `json:"query"`
	Queries []OutcomeJSON `json:"queries"`
}

// ReportJSON is an apply report for JSON output.
type ReportJSON struct {
	Health       *elastic.Health    `json:"health,omitempty"`
	Users        []ResultJSON       `json:"users"`
	Indices      []ResultJSON       `json:"indices"`
	Seeds        []SeedJSON         `json:"seeds"`
	Verification []VerificationJSON `json:"verification"`
	Error        string             `json:"error,omitempty"`
	Failed       bool               `json:"failed"`
	DurationMS   int64              `json:"durationMs"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func toResultJSON(r provisioning.ReconcileResult) ResultJSON {
	out := ResultJSON{
		Kind:        string(r.Kind),
		Name:        r.Name,
		Outcome:     r.Outcome.String(),
		Disposition: r.Disposition.String(),
		Reason:      r.Reason,
		Error:       errString(r.Err),
	}
	if r.Outcome == provisioning.OutcomeFailed {
		out.State = r.State.String()
	}
	return out
}

func toResultsJSON(results []provisioning.ReconcileResult) []ResultJSON {
	out := make([]ResultJSON, len(results))
	for i, r := range results {
		out[i] = toResultJSON(r)
	}
	return out
}

func toOutcomeJSON(o provisioning.VerificationOutcome) OutcomeJSON {
	out := OutcomeJSON{
		Name:      o.Name,
		ElapsedMS: o.Elapsed.Milliseconds(),
		TookMS:    o.Took.Milliseconds(),
		Hits:      o.HitCount,
		Skipped:   o.Skipped,
		Reason:    o.Reason,
		Error:     errString(o.Err),
	}
	for _, h := range o.Top {
		out.Top = append(out.Top, HitJSON{ID: h.ID, Score: h.Score, Source: h.Source})
	}
	for _, b := range o.Buckets {
		out.Buckets = append(out.Buckets, BucketJSON{Key: b.Key, DocCount: b.DocCount})
	}
	return out
}

func toSeedJSON(s provisioning.SeedReport) SeedJSON {
	return SeedJSON{Index: s.Index, Documents: toResultsJSON(s.Results), RefreshError: errString(s.RefreshErr)}
}

func toVerificationJSON(v provisioning.VerificationReport) VerificationJSON {
	out := VerificationJSON{Index: v.Index, Query: v.Query, Queries: make([]OutcomeJSON, len(v.Outcomes))}
	for i, o := range v.Outcomes {
		out.Queries[i] = toOutcomeJSON(o)
	}
	return out
}

func toReportJSON(r *provisioning.Report) ReportJSON {
	out := ReportJSON{
		Health:       r.Health,
		Users:        toResultsJSON(r.Users),
		Indices:      toResultsJSON(r.Indices),
		Seeds:        make([]SeedJSON, len(r.Seeds)),
		Verification: make([]VerificationJSON, len(r.Verification)),
		Error:        errString(r.Err),
		Failed:       r.Failed(),
		DurationMS:   r.Duration.Milliseconds(),
	}
	for i, s := range r.Seeds {
		out.Seeds[i] = toSeedJSON(s)
	}
	for i, v := range r.Verification {
		out.Verification[i] = toVerificationJSON(v)
	}
	return out
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
