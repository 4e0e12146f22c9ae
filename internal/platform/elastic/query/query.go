// Package query provides typed Elasticsearch search requests and responses.
//
// Requests are plain structs encoded as JSON; nothing is built
// by string interpolation. Builders cover the handful of query shapes the
// verification suite runs.
package query

// Request is the body of a _search call.
type Request struct {
	Size           *int                   `json:"size,omitempty"`
	Query          *Query                 `json:"query,omitempty"`
	Aggs           map[string]Aggregation `json:"aggs,omitempty"`
	TrackTotalHits bool                   `json:"track_total_hits,omitempty"`
}

// Query is a single query clause. Exactly one field is set.
type Query struct {
	MatchAll   *MatchAll        `json:"match_all,omitempty"`
	MultiMatch *MultiMatch      `json:"multi_match,omitempty"`
	Match      map[string]Match `json:"match,omitempty"`
	Term       map[string]Term  `json:"term,omitempty"`
	Range      map[string]Range `json:"range,omitempty"`
	Bool       *Bool            `json:"bool,omitempty"`
}

// MatchAll matches every document.
type MatchAll struct{}

// MultiMatch runs a full-text query over several fields.
type MultiMatch struct {
	Query  string   `json:"query"`
	Fields []string `json:"fields,omitempty"`
	Type   string   `json:"type,omitempty"`
}

// Match is a full-text query on one field.
type Match struct {
	Query     string `json:"query"`
	Fuzziness string `json:"fuzziness,omitempty"`
	Operator  string `json:"operator,omitempty"`
}

// Term is an exact-value query on one field.
type Term struct {
	Value any `json:"value"`
}

// Range bounds a field. Unset bounds are omitted.
type Range struct {
	GTE any `json:"gte,omitempty"`
	GT  any `json:"gt,omitempty"`
	LTE any `json:"lte,omitempty"`
	LT  any `json:"lt,omitempty"`
}

// Bool combines clauses.
type Bool struct {
	Must    []Query `json:"must,omitempty"`
	Filter  []Query `json:"filter,omitempty"`
	Should  []Query `json:"should,omitempty"`
	MustNot []Query `json:"must_not,omitempty"`
}

// Aggregation is a single aggregation. Only terms aggregations are used.
type Aggregation struct {
	Terms *TermsAggregation `json:"terms,omitempty"`
}

// TermsAggregation buckets documents by the values of a field.
type TermsAggregation struct {
	Field string `json:"field"`
	Size  int    `json:"size,omitempty"`
}
