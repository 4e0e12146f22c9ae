package testing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/imamik/esprov/internal/platform/elastic"
	"github.com/imamik/esprov/internal/platform/elastic/query"
)

const defaultSearchSize = 10

type searchDoc struct {
	id     string
	source map[string]any
}

type scoredDoc struct {
	searchDoc
	score float64
}

// evaluate runs req over docs the way a single-shard index would, with a
// simplified scoring: one point per matching query term.
func evaluate(index string, props elastic.Properties, docs []searchDoc, req *query.Request) (*query.Response, error) {
	q := query.NewMatchAll()
	if req.Query != nil {
		q = *req.Query
	}

	var matched []scoredDoc
	for _, d := range docs {
		ok, score, err := matches(q, d)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, scoredDoc{searchDoc: d, score: score})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].score != matched[j].score {
			return matched[i].score > matched[j].score
		}
		return matched[i].id < matched[j].id
	})

	res := &query.Response{
		Took: 1,
		Hits: query.Hits{Total: query.Total{Value: int64(len(matched)), Relation: "eq"}},
	}

	size := defaultSearchSize
	if req.Size != nil {
		size = *req.Size
	}
	for i, d := range matched {
		if i == 0 {
			res.Hits.MaxScore = d.score
		}
		if i >= size {
			break
		}
		res.Hits.Hits = append(res.Hits.Hits, query.Hit{Index: index, ID: d.id, Score: d.score, Source: d.source})
	}

	for name, agg := range req.Aggs {
		if agg.Terms == nil {
			return nil, fmt.Errorf("aggregation [%s] has no supported type", name)
		}
		buckets, err := termsBuckets(props, matched, agg.Terms)
		if err != nil {
			return nil, err
		}
		if res.Aggregations == nil {
			res.Aggregations = make(map[string]query.AggregationResult)
		}
		res.Aggregations[name] = query.AggregationResult{Buckets: buckets}
	}

	return res, nil
}

// matches evaluates one clause against a document.
func matches(q query.Query, d searchDoc) (bool, float64, error) {
	switch {
	case q.MatchAll != nil:
		return true, 1, nil

	case q.MultiMatch != nil:
		terms := analyze(q.MultiMatch.Query)
		var score float64
		for _, field := range q.MultiMatch.Fields {
			field, _, _ = strings.Cut(field, "^")
			score += matchTerms(terms, lookup(d.source, field), 0)
		}
		return score > 0, score, nil

	case len(q.Match) > 0:
		var score float64
		for field, m := range q.Match {
			terms := analyze(m.Query)
			fuzzy := strings.EqualFold(m.Fuzziness, "AUTO")
			values := lookup(d.source, field)
			if strings.EqualFold(m.Operator, "and") {
				for _, t := range terms {
					if matchTerms([]string{t}, values, fuzzyDistance(fuzzy, t)) == 0 {
						return false, 0, nil
					}
				}
			}
			for _, t := range terms {
				score += matchTerms([]string{t}, values, fuzzyDistance(fuzzy, t))
			}
		}
		return score > 0, score, nil

	case len(q.Term) > 0:
		for field, t := range q.Term {
			if !anyEqual(lookup(d.source, field), t.Value) {
				return false, 0, nil
			}
		}
		return true, 1, nil

	case len(q.Range) > 0:
		for field, r := range q.Range {
			ok, err := inRange(lookup(d.source, field), r)
			if err != nil || !ok {
				return false, 0, err
			}
		}
		return true, 1, nil

	case q.Bool != nil:
		return matchBool(q.Bool, d)
	}

	return false, 0, errors.New("query malformed, empty clause found")
}

func matchBool(b *query.Bool, d searchDoc) (bool, float64, error) {
	var score float64
	for _, c := range b.Must {
		ok, s, err := matches(c, d)
		if err != nil || !ok {
			return false, 0, err
		}
		score += s
	}
	for _, c := range b.Filter {
		ok, _, err := matches(c, d)
		if err != nil || !ok {
			return false, 0, err
		}
	}
	for _, c := range b.MustNot {
		ok, _, err := matches(c, d)
		if err != nil {
			return false, 0, err
		}
		if ok {
			return false, 0, nil
		}
	}

	shouldHit := 0
	for _, c := range b.Should {
		ok, s, err := matches(c, d)
		if err != nil {
			return false, 0, err
		}
		if ok {
			shouldHit++
			score += s
		}
	}
	if len(b.Should) > 0 && len(b.Must) == 0 && len(b.Filter) == 0 && shouldHit == 0 {
		return false, 0, nil
	}
	return true, score, nil
}

// lookup returns the scalar values at a dotted path. Arrays are flattened;
// a trailing multi-field name such as ".keyword" resolves to the parent
// field's value.
func lookup(source map[string]any, path string) []any {
	var values []any
	var walk func(v any, parts []string)
	walk = func(v any, parts []string) {
		switch t := v.(type) {
		case []any:
			for _, e := range t {
				walk(e, parts)
			}
		case map[string]any:
			if len(parts) == 0 {
				return
			}
			next, ok := t[parts[0]]
			if !ok {
				return
			}
			walk(next, parts[1:])
		case nil:
		default:
			// a scalar with a remaining part is a multi-field reference
			if len(parts) <= 1 {
				values = append(values, t)
			}
		}
	}
	walk(source, strings.Split(path, "."))
	return values
}

// analyze lowercases and splits on anything that is not a letter or digit.
func analyze(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// matchTerms counts query terms found in the analyzed values.
func matchTerms(terms []string, values []any, maxEdits int) float64 {
	var tokens []string
	for _, v := range values {
		if s, ok := v.(string); ok {
			tokens = append(tokens, analyze(s)...)
		}
	}

	var score float64
	for _, term := range terms {
		for _, tok := range tokens {
			if tok == term || (maxEdits > 0 && levenshtein(tok, term) <= maxEdits) {
				score++
				break
			}
		}
	}
	return score
}

// fuzzyDistance is the AUTO fuzziness: 0 edits up to 2 characters, 1 up
// to 5, 2 beyond.
func fuzzyDistance(fuzzy bool, term string) int {
	if !fuzzy {
		return 0
	}
	switch n := len([]rune(term)); {
	case n <= 2:
		return 0
	case n <= 5:
		return 1
	default:
		return 2
	}
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func anyEqual(values []any, want any) bool {
	wf, wantNumeric := toFloat(want)
	for _, v := range values {
		if wantNumeric {
			if f, ok := toFloat(v); ok && f == wf {
				return true
			}
		}
		if fmt.Sprint(v) == fmt.Sprint(want) {
			return true
		}
	}
	return false
}

func inRange(values []any, r query.Range) (bool, error) {
	type bound struct {
		limit any
		ok    func(v, limit float64) bool
	}
	bounds := []bound{
		{r.GTE, func(v, l float64) bool { return v >= l }},
		{r.GT, func(v, l float64) bool { return v > l }},
		{r.LTE, func(v, l float64) bool { return v <= l }},
		{r.LT, func(v, l float64) bool { return v < l }},
	}

	for _, v := range values {
		f, ok := toFloat(v)
		if !ok {
			continue
		}
		all := true
		for _, b := range bounds {
			if b.limit == nil {
				continue
			}
			l, ok := toFloat(b.limit)
			if !ok {
				return false, fmt.Errorf("range bound %v is not numeric", b.limit)
			}
			if !b.ok(f, l) {
				all = false
				break
			}
		}
		if all {
			return true, nil
		}
	}
	return false, nil
}

func termsBuckets(props elastic.Properties, docs []scoredDoc, terms *query.TermsAggregation) ([]query.Bucket, error) {
	if fieldType(props, terms.Field) == elastic.TypeText {
		return nil, fmt.Errorf("text fields are not optimised for operations that require per-document field data like aggregations, use a keyword field instead: [%s]", terms.Field)
	}

	counts := make(map[string]int64)
	keys := make(map[string]any)
	for _, d := range docs {
		seen := make(map[string]struct{})
		for _, v := range lookup(d.source, terms.Field) {
			k := fmt.Sprint(v)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			counts[k]++
			keys[k] = v
		}
	}

	buckets := make([]query.Bucket, 0, len(counts))
	for k, n := range counts {
		buckets = append(buckets, query.Bucket{Key: keys[k], DocCount: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].DocCount != buckets[j].DocCount {
			return buckets[i].DocCount > buckets[j].DocCount
		}
		return fmt.Sprint(buckets[i].Key) < fmt.Sprint(buckets[j].Key)
	})

	size := terms.Size
	if size <= 0 {
		size = defaultSearchSize
	}
	if len(buckets) > size {
		buckets = buckets[:size]
	}
	return buckets, nil
}
