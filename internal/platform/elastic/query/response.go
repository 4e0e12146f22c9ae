package query

import jsoniter "github.com/json-iterator/go"

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Response is the subset of a _search answer the verification suite reads.
type Response struct {
	Took         int64                        `json:"took"`
	TimedOut     bool                         `json:"timed_out"`
	Hits         Hits                         `json:"hits"`
	Aggregations map[string]AggregationResult `json:"aggregations,omitempty"`
}

// Hits holds matching documents.
type Hits struct {
	Total    Total   `json:"total"`
	MaxScore float64 `json:"max_score"`
	Hits     []Hit   `json:"hits"`
}

// Total is the hit count. Since 7.0 the cluster reports an object.
type Total struct {
	Value    int64  `json:"value"`
	Relation string `json:"relation"`
}

// Hit is one matching document.
type Hit struct {
	Index  string         `json:"_index"`
	ID     string         `json:"_id"`
	Score  float64        `json:"_score"`
	Source map[string]any `json:"_source"`
}

// AggregationResult holds terms buckets.
type AggregationResult struct {
	Buckets []Bucket `json:"buckets"`
}

// Bucket is one terms bucket. Key is a string for keyword fields and a
// number for numeric ones.
type Bucket struct {
	Key         any    `json:"key"`
	KeyAsString string `json:"key_as_string,omitempty"`
	DocCount    int64  `json:"doc_count"`
}

// ParseResponse decodes a _search answer.
func ParseResponse(body []byte) (*Response, error) {
	var res Response
	if err := codec.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
