package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/esprov/internal/platform/elastic"
	"github.com/imamik/esprov/internal/platform/elastic/query"
)

// Verification query names.
const (
	QueryMultiMatch   = "multi-field match"
	QueryFilteredBool = "filtered bool"
	QueryTermsAgg     = "terms aggregation"
	QueryNumericRange = "numeric range"
	QueryFuzzy        = "fuzzy match"
)

// Verification defaults.
const (
	DefaultTopN     = 3
	DefaultRangeMin = 2
	aggBucketSize   = 10
	aggName         = "values"
)

type verifyConfig struct {
	topN     int
	rangeMin float64
}

// VerifyOption configures RunVerificationSuite.
type VerifyOption func(*verifyConfig)

// WithTopN sets how many hits each outcome summarizes.
func WithTopN(n int) VerifyOption {
	return func(c *verifyConfig) {
		c.topN = n
	}
}

// WithRangeMin sets the lower bound of the numeric range filters.
func WithRangeMin(v float64) VerifyOption {
	return func(c *verifyConfig) {
		c.rangeMin = v
	}
}

// fieldClasses groups mapped fields by what the queries can do with them.
// Each list keeps mapping order.
type fieldClasses struct {
	text         []string
	aggregatable []string
	numeric      []string
}

func classifyFields(props elastic.Properties) fieldClasses {
	var fc fieldClasses
	classifyInto(&fc, "", props)
	return fc
}

func classifyInto(fc *fieldClasses, prefix string, props elastic.Properties) {
	for _, prop := range props {
		path := prefix + prop.Name
		switch {
		case prop.Mapping.Type == elastic.TypeText:
			fc.text = append(fc.text, path)
		case elastic.IsNumeric(prop.Mapping.Type):
			fc.numeric = append(fc.numeric, path)
		}
		if agg := elastic.AggregatableName(prop); agg != "" {
			fc.aggregatable = append(fc.aggregatable, prefix+agg)
		}
		if len(prop.Mapping.Properties) > 0 {
			classifyInto(fc, path+".", prop.Mapping.Properties)
		}
	}
}

// verification is one query of the suite. build returns nil and the name
// of the missing field class when the index cannot serve the query.
type verification struct {
	name  string
	build func(fc fieldClasses, text string, cfg verifyConfig) (*query.Request, string)
}

var suite = []verification{
	{
		name: QueryMultiMatch,
		build: func(fc fieldClasses, text string, cfg verifyConfig) (*query.Request, string) {
			if len(fc.text) == 0 {
				return nil, "no text fields"
			}
			return query.NewRequest().
				WithQuery(query.NewMultiMatch(text, fc.text...)).
				WithSize(cfg.topN), ""
		},
	},
	{
		name: QueryFilteredBool,
		build: func(fc fieldClasses, text string, cfg verifyConfig) (*query.Request, string) {
			switch {
			case len(fc.text) == 0:
				return nil, "no text fields"
			case len(fc.numeric) == 0:
				return nil, "no numeric fields"
			}
			b := query.NewBool().
				AddMust(query.NewMultiMatch(text, fc.text...)).
				AddFilter(query.NewRangeGTE(fc.numeric[0], cfg.rangeMin))
			return query.NewRequest().WithQuery(b.Query()).WithSize(cfg.topN), ""
		},
	},
	{
		name: QueryTermsAgg,
		build: func(fc fieldClasses, _ string, _ verifyConfig) (*query.Request, string) {
			if len(fc.aggregatable) == 0 {
				return nil, "no keyword fields"
			}
			return query.NewRequest().
				WithSize(0).
				WithTermsAggregation(aggName, fc.aggregatable[0], aggBucketSize), ""
		},
	},
	{
		name: QueryNumericRange,
		build: func(fc fieldClasses, _ string, cfg verifyConfig) (*query.Request, string) {
			if len(fc.numeric) == 0 {
				return nil, "no numeric fields"
			}
			b := query.NewBool().AddFilter(query.NewRangeGTE(fc.numeric[0], cfg.rangeMin))
			return query.NewRequest().WithQuery(b.Query()).WithSize(cfg.topN), ""
		},
	},
	{
		name: QueryFuzzy,
		build: func(fc fieldClasses, text string, cfg verifyConfig) (*query.Request, string) {
			if len(fc.text) == 0 {
				return nil, "no text fields"
			}
			return query.NewRequest().
				WithQuery(query.NewFuzzy(fc.text[0], text)).
				WithSize(cfg.topN), ""
		},
	},
}

// RunVerificationSuite runs the read-only verification queries against
// index and returns one outcome per query, in a fixed order. Queries run
// independently: a failing query does not stop the others.
func (p *Provisioner) RunVerificationSuite(ctx context.Context, index, text string, opts ...VerifyOption) []VerificationOutcome {
	cfg := verifyConfig{topN: DefaultTopN, rangeMin: DefaultRangeMin}
	for _, opt := range opts {
		opt(&cfg)
	}

	outcomes := make([]VerificationOutcome, len(suite))

	props, err := p.api.GetMapping(ctx, index)
	if err != nil {
		for i, v := range suite {
			outcomes[i] = VerificationOutcome{Name: v.name, Err: fmt.Errorf("read mapping: %w", err)}
		}
		p.report(index, outcomes)
		return outcomes
	}
	fc := classifyFields(props)

	for i, v := range suite {
		outcomes[i] = p.runQuery(ctx, index, text, v, fc, cfg)
	}
	p.report(index, outcomes)
	return outcomes
}

func (p *Provisioner) runQuery(ctx context.Context, index, text string, v verification, fc fieldClasses, cfg verifyConfig) VerificationOutcome {
	out := VerificationOutcome{Name: v.name}

	req, missing := v.build(fc, text, cfg)
	if req == nil {
		out.Skipped = true
		out.Reason = missing
		return out
	}

	start := time.Now()
	res, err := p.api.Search(ctx, index, req)
	out.Elapsed = time.Since(start)
	if err != nil {
		out.Err = err
		return out
	}

	out.Took = time.Duration(res.Took) * time.Millisecond
	out.HitCount = res.Hits.Total.Value
	for i, hit := range res.Hits.Hits {
		if i == cfg.topN {
			break
		}
		out.Top = append(out.Top, HitSummary{ID: hit.ID, Score: hit.Score, Source: hit.Source})
	}
	if agg, ok := res.Aggregations[aggName]; ok {
		for _, b := range agg.Buckets {
			key := b.KeyAsString
			if key == "" {
				key = fmt.Sprint(b.Key)
			}
			out.Buckets = append(out.Buckets, Bucket{Key: key, DocCount: b.DocCount})
		}
	}
	return out
}

func (p *Provisioner) report(index string, outcomes []VerificationOutcome) {
	for _, v := range outcomes {
		LogVerification(p.observer, index, v)
		p.opts.Metrics.recordVerification(index, v)
	}
}
