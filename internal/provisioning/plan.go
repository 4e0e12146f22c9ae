package provisioning

import (
	"fmt"
)

// Verification names one verification suite run.
type Verification struct {
	Index    string
	Query    string
	TopN     int
	RangeMin *float64
}

func (v Verification) options() []VerifyOption {
	var opts []VerifyOption
	if v.TopN > 0 {
		opts = append(opts, WithTopN(v.TopN))
	}
	if v.RangeMin != nil {
		opts = append(opts, WithRangeMin(*v.RangeMin))
	}
	return opts
}

// Plan is the set of specs one Apply run reconciles.
type Plan struct {
	Users   []UserSpec
	Indices []IndexSpec
	// Policy applies to every index of the plan.
	Policy Policy
	// SkipRefresh leaves seeded documents to the cluster's periodic refresh.
	SkipRefresh  bool
	Verification []Verification
}

// Validate checks every spec and that names are unique within their kind.
func (p *Plan) Validate() ValidationErrors {
	var errs ValidationErrors

	users := make(map[string]int, len(p.Users))
	for i, u := range p.Users {
		u = u.Normalize()
		for _, ve := range u.Validate() {
			ve.Field = fmt.Sprintf("users[%d].%s", i, ve.Field)
			errs = append(errs, ve)
		}
		if first, dup := users[u.Name]; dup && u.Name != "" {
			errs = append(errs, errorf(fmt.Sprintf("users[%d].name", i), "duplicate user %q (first declared at users[%d])", u.Name, first))
		} else {
			users[u.Name] = i
		}
	}

	indices := make(map[string]int, len(p.Indices))
	for i, s := range p.Indices {
		for _, ve := range s.Validate() {
			ve.Field = fmt.Sprintf("indices[%d].%s", i, ve.Field)
			errs = append(errs, ve)
		}
		if first, dup := indices[s.Name]; dup && s.Name != "" {
			errs = append(errs, errorf(fmt.Sprintf("indices[%d].name", i), "duplicate index %q (first declared at indices[%d])", s.Name, first))
		} else {
			indices[s.Name] = i
		}
	}

	for i, v := range p.Verification {
		if err := ValidateIndexName(v.Index); err != nil {
			errs = append(errs, errorf(fmt.Sprintf("verify[%d].index", i), "%v", err))
		}
		if v.Query == "" {
			errs = append(errs, warnf(fmt.Sprintf("verify[%d].query", i), "empty query, text queries will match nothing"))
		}
		if v.TopN < 0 {
			errs = append(errs, errorf(fmt.Sprintf("verify[%d].top", i), "must not be negative, got %d", v.TopN))
		}
	}

	return errs
}
