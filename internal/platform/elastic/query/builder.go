package query

import "github.com/imamik/esprov/internal/util/ptr"

// NewRequest returns a request that tracks exact hit totals.
func NewRequest() *Request {
	return &Request{TrackTotalHits: true}
}

// WithQuery sets the query clause.
func (r *Request) WithQuery(q Query) *Request {
	r.Query = &q
	return r
}

// WithSize sets the number of hits returned.
func (r *Request) WithSize(n int) *Request {
	r.Size = ptr.To(n)
	return r
}

// WithTermsAggregation adds a terms aggregation under name.
func (r *Request) WithTermsAggregation(name, field string, size int) *Request {
	if r.Aggs == nil {
		r.Aggs = make(map[string]Aggregation)
	}
	r.Aggs[name] = Aggregation{Terms: &TermsAggregation{Field: field, Size: size}}
	return r
}

// NewMatchAll matches every document.
func NewMatchAll() Query {
	return Query{MatchAll: &MatchAll{}}
}

// NewMultiMatch searches text across fields.
func NewMultiMatch(text string, fields ...string) Query {
	return Query{MultiMatch: &MultiMatch{Query: text, Fields: fields}}
}

// NewMatch searches text in one field.
func NewMatch(field, text string) Query {
	return Query{Match: map[string]Match{field: {Query: text}}}
}

// NewFuzzy searches text in one field, tolerating edit distance chosen by
// the cluster from the term length.
func NewFuzzy(field, text string) Query {
	return Query{Match: map[string]Match{field: {Query: text, Fuzziness: "AUTO"}}}
}

// NewTerm matches an exact value.
func NewTerm(field string, value any) Query {
	return Query{Term: map[string]Term{field: {Value: value}}}
}

// NewRangeGTE matches values greater than or equal to min.
func NewRangeGTE(field string, min any) Query {
	return Query{Range: map[string]Range{field: {GTE: min}}}
}

// NewBool starts an empty bool query.
func NewBool() *Bool {
	return &Bool{}
}

// AddMust appends scoring clauses.
func (b *Bool) AddMust(q ...Query) *Bool {
	b.Must = append(b.Must, q...)
	return b
}

// AddFilter appends non-scoring clauses.
func (b *Bool) AddFilter(q ...Query) *Bool {
	b.Filter = append(b.Filter, q...)
	return b
}

// Query wraps the bool query into a clause.
func (b *Bool) Query() Query {
	return Query{Bool: b}
}
