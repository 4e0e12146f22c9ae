package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/esprov/internal/platform/elastic/query"
)

// fakeCluster is an httptest server answering a fixed set of routes.
// Routes are keyed by "METHOD /path"; a key may list alternative methods
// separated by "|".
type fakeCluster struct {
	t      *testing.T
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []string
	bodies map[string][]byte
}

func newFakeCluster(t *testing.T, routes map[string]http.HandlerFunc) (*fakeCluster, *httptest.Server) {
	t.Helper()
	f := &fakeCluster{t: t, routes: make(map[string]http.HandlerFunc), bodies: make(map[string][]byte)}
	for key, h := range routes {
		methods, path, _ := strings.Cut(key, " ")
		for _, m := range strings.Split(methods, "|") {
			f.routes[m+" "+path] = h
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.calls = append(f.calls, key)
		f.bodies[key] = body
		h, ok := f.routes[key]
		f.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		if !ok {
			t.Errorf("unexpected request %s", key)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeCluster) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

func (f *fakeCluster) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeCluster) body(key string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// sequence answers with each handler in turn, repeating the last one.
func sequence(handlers ...http.HandlerFunc) http.HandlerFunc {
	var mu sync.Mutex
	i := 0
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		h := handlers[i]
		if i < len(handlers)-1 {
			i++
		}
		mu.Unlock()
		h(w, r)
	}
}

func fastTimeouts() Timeouts {
	return Timeouts{
		Request:      2 * time.Second,
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
	}
}

func newTestClient(t *testing.T, url string, opts ...ClientOption) *RealClient {
	t.Helper()
	opts = append([]ClientOption{WithTimeouts(fastTimeouts())}, opts...)
	c, err := NewRealClient(Connection{Addresses: []string{url}, Username: "elastic", Password: "changeme"}, opts...)
	require.NoError(t, err)
	return c
}

func TestNewRealClient_RequiresAddress(t *testing.T) {
	t.Parallel()
	_, err := NewRealClient(Connection{})
	assert.ErrorContains(t, err, "no cluster address")
}

func TestRealClient_Health(t *testing.T) {
	t.Parallel()

	_, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"GET /_cluster/health": reply(200, `{"cluster_name":"docker-cluster","status":"yellow","number_of_nodes":1,"active_shards":4,"unassigned_shards":2,"timed_out":false}`),
	})
	c := newTestClient(t, srv.URL)

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Health{ClusterName: "docker-cluster", Status: HealthYellow, NumberOfNodes: 1, ActiveShards: 4, UnassignedShards: 2}, h)
}

func TestRealClient_SendsBasicAuth(t *testing.T) {
	t.Parallel()

	var gotUser, gotPass string
	_, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"GET /_cluster/health": func(w http.ResponseWriter, r *http.Request) {
			gotUser, gotPass, _ = r.BasicAuth()
			reply(200, `{"status":"green"}`)(w, r)
		},
	})
	c := newTestClient(t, srv.URL)

	_, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "elastic", gotUser)
	assert.Equal(t, "changeme", gotPass)
}

func TestRealClient_GetUser(t *testing.T) {
	t.Parallel()

	_, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"GET /_security/user/alice": reply(200, `{"alice":{"username":"alice","roles":["viewer","editor"],"full_name":"Alice","email":"alice@example.com","metadata":{},"enabled":true}}`),
		"GET /_security/user/bob":   reply(404, `{}`),
	})
	c := newTestClient(t, srv.URL)

	u, err := c.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, []string{"viewer", "editor"}, u.Roles)
	assert.Equal(t, "Alice", u.FullName)
	assert.True(t, u.Enabled)

	missing, err := c.GetUser(context.Background(), "bob")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRealClient_PutUser(t *testing.T) {
	t.Parallel()

	f, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"PUT|POST /_security/user/alice": reply(200, `{"created":true}`),
	})
	c := newTestClient(t, srv.URL)

	created, err := c.PutUser(context.Background(), "alice", PutUserRequest{Password: "s3cret-pass", Roles: []string{"viewer"}})
	require.NoError(t, err)
	assert.True(t, created)

	key := "PUT /_security/user/alice"
	if f.count(key) == 0 {
		key = "POST /_security/user/alice"
	}
	assert.JSONEq(t, `{"password":"s3cret-pass","roles":["viewer"]}`, string(f.body(key)))
}

func TestRealClient_PutUserEmptyRolesEncodedAsArray(t *testing.T) {
	t.Parallel()

	f, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"PUT|POST /_security/user/carol": reply(200, `{"created":false}`),
	})
	c := newTestClient(t, srv.URL)

	created, err := c.PutUser(context.Background(), "carol", PutUserRequest{Roles: []string{}})
	require.NoError(t, err)
	assert.False(t, created)

	body := f.body("PUT /_security/user/carol")
	if body == nil {
		body = f.body("POST /_security/user/carol")
	}
	assert.JSONEq(t, `{"roles":[]}`, string(body))
}

func TestRealClient_AuthenticateUsesGivenCredentials(t *testing.T) {
	t.Parallel()

	_, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"GET /_security/_authenticate": func(w http.ResponseWriter, r *http.Request) {
			user, pass, _ := r.BasicAuth()
			if user == "alice" && pass == "s3cret-pass" {
				reply(200, `{"username":"alice","roles":["viewer"],"enabled":true}`)(w, r)
				return
			}
			reply(401, `{"error":{"type":"security_exception","reason":"unable to authenticate user [alice] for REST request"},"status":401}`)(w, r)
		},
	})
	c := newTestClient(t, srv.URL)

	ok, err := c.Authenticate(context.Background(), "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Authenticate(context.Background(), "alice", "rotated-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRealClient_NonRetryableStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{"unauthorized", 401, `{"error":{"type":"security_exception","reason":"missing authentication credentials"},"status":401}`, ErrAuth},
		{"forbidden", 403, `{"error":{"type":"security_exception","reason":"action [cluster:admin/xpack/security/user/put] is unauthorized"},"status":403}`, ErrAuth},
		{"bad request", 400, `{"error":{"type":"illegal_argument_exception","reason":"passwords must be at least [6] characters long"},"status":400}`, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, srv := newFakeCluster(t, map[string]http.HandlerFunc{
				"PUT|POST /_security/user/alice": reply(tt.status, tt.body),
			})
			c := newTestClient(t, srv.URL)

			_, err := c.PutUser(context.Background(), "alice", PutUserRequest{Password: "x", Roles: []string{"viewer"}})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, 1, f.total(), "must not retry")

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.body, apiErr.Body)
		})
	}
}

func TestRealClient_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	f, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"GET /_cluster/health": sequence(
			reply(503, `{"error":{"type":"cluster_block_exception","reason":"blocked"},"status":503}`),
			reply(429, `{}`),
			reply(200, `{"status":"green"}`),
		),
	})

	var mu sync.Mutex
	var retried []string
	c := newTestClient(t, srv.URL, WithRetryHook(func(op string, attempt int, _ time.Duration, err error) {
		mu.Lock()
		defer mu.Unlock()
		retried = append(retried, op)
		assert.True(t, IsRetryable(err))
	}))

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, HealthGreen, h.Status)
	assert.Equal(t, 3, f.count("GET /_cluster/health"))
	assert.Equal(t, []string{"cluster health", "cluster health"}, retried)
}

func TestRealClient_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	f, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"GET /_cluster/health": reply(502, ``),
	})
	c := newTestClient(t, srv.URL)

	_, err := c.Health(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
	assert.Equal(t, 3, f.total())
}

func TestRealClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	attempts := 0
	c := newTestClient(t, url, WithRetryHook(func(string, int, time.Duration, error) { attempts++ }))

	_, err := c.Health(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Equal(t, KindConnection, KindOf(err))
	assert.Equal(t, 2, attempts)
}

func TestRealClient_IndexExists(t *testing.T) {
	t.Parallel()

	_, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"HEAD /articles": reply(200, ``),
		"HEAD /missing":  reply(404, ``),
		"HEAD /locked":   reply(403, ``),
	})
	c := newTestClient(t, srv.URL)

	ok, err := c.IndexExists(context.Background(), "articles")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IndexExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.IndexExists(context.Background(), "locked")
	assert.ErrorIs(t, err, ErrAuth)
}

func TestRealClient_CreateIndex(t *testing.T) {
	t.Parallel()

	f, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"PUT /articles": reply(200, `{"acknowledged":true,"shards_acknowledged":true,"index":"articles"}`),
		"PUT /taken":    reply(400, `{"error":{"type":"resource_already_exists_exception","reason":"index [taken/xyz] already exists"},"status":400}`),
	})
	c := newTestClient(t, srv.URL)

	def := IndexDefinition{
		Settings: IndexSettings{NumberOfShards: 1, NumberOfReplicas: 0},
		Mappings: IndexMappings{Properties: Properties{
			{Name: "title", Mapping: FieldMapping{Type: TypeText}},
			{Name: "priority", Mapping: FieldMapping{Type: TypeInteger}},
		}},
	}
	require.NoError(t, c.CreateIndex(context.Background(), "articles", def))
	assert.Equal(t,
		`{"settings":{"number_of_shards":1,"number_of_replicas":0},"mappings":{"properties":{"title":{"type":"text"},"priority":{"type":"integer"}}}}`,
		string(f.body("PUT /articles")))

	err := c.CreateIndex(context.Background(), "taken", def)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, f.count("PUT /taken"))
}

func TestRealClient_DeleteIndex(t *testing.T) {
	t.Parallel()

	f, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"DELETE /articles": reply(200, `{"acknowledged":true}`),
		"DELETE /missing":  reply(404, `{"error":{"type":"index_not_found_exception","reason":"no such index [missing]"},"status":404}`),
	})
	c := newTestClient(t, srv.URL)

	require.NoError(t, c.DeleteIndex(context.Background(), "articles"))
	assert.Equal(t, 1, f.count("DELETE /articles"))
	assert.ErrorIs(t, c.DeleteIndex(context.Background(), "missing"), ErrNotFound)
}

func TestRealClient_GetMapping(t *testing.T) {
	t.Parallel()

	_, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"GET /articles/_mapping": reply(200, `{"articles":{"mappings":{"properties":{"priority":{"type":"integer"},"title":{"type":"text","fields":{"keyword":{"type":"keyword","ignore_above":256}}}}}}}`),
	})
	c := newTestClient(t, srv.URL)

	props, err := c.GetMapping(context.Background(), "articles")
	require.NoError(t, err)
	assert.Equal(t, []string{"priority", "title"}, props.Names())
	title, ok := props.Get("title")
	require.True(t, ok)
	assert.Equal(t, "title.keyword", AggregatableName(Property{Name: "title", Mapping: title}))
}

func TestRealClient_RefreshIsNotRetried(t *testing.T) {
	t.Parallel()

	f, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"POST|GET /articles/_refresh": reply(503, `{}`),
	})
	c := newTestClient(t, srv.URL)

	err := c.Refresh(context.Background(), "articles")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, f.total())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }
func (brokenBody) Close() error             { return nil }

func TestRealClient_RefreshBodyReadFailure(t *testing.T) {
	t.Parallel()

	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"X-Elastic-Product": []string{"Elasticsearch"}},
			Body:       brokenBody{},
			Request:    r,
		}, nil
	})
	c := newTestClient(t, "http://localhost:9200", WithHTTPTransport(rt))

	err := c.Refresh(context.Background(), "articles")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRealClient_IndexDocument(t *testing.T) {
	t.Parallel()

	f, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"PUT|POST /articles/_doc/1": sequence(
			reply(201, `{"_index":"articles","_id":"1","result":"created"}`),
			reply(200, `{"_index":"articles","_id":"1","result":"updated"}`),
		),
		"PUT|POST /articles/_doc/bad": reply(400, `{"error":{"type":"document_parsing_exception","reason":"failed to parse field [priority] of type [integer]"},"status":400}`),
	})
	c := newTestClient(t, srv.URL)
	fields := map[string]any{"title": "Hello", "priority": 1}

	res, err := c.IndexDocument(context.Background(), "articles", "1", fields)
	require.NoError(t, err)
	assert.Equal(t, DocumentCreated, res)

	res, err = c.IndexDocument(context.Background(), "articles", "1", fields)
	require.NoError(t, err)
	assert.Equal(t, DocumentUpdated, res)

	_, err = c.IndexDocument(context.Background(), "articles", "bad", map[string]any{"priority": "high"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 3, f.total())
}

func TestRealClient_GetDocument(t *testing.T) {
	t.Parallel()

	_, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"GET /articles/_doc/1": reply(200, `{"_index":"articles","_id":"1","found":true,"_source":{"title":"Hello","priority":1}}`),
		"GET /articles/_doc/9": reply(404, `{"_index":"articles","_id":"9","found":false}`),
		"GET /missing/_doc/1":  reply(404, `{"error":{"type":"index_not_found_exception","reason":"no such index [missing]"},"status":404}`),
	})
	c := newTestClient(t, srv.URL)

	doc, err := c.GetDocument(context.Background(), "articles", "1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Hello", "priority": float64(1)}, doc)

	doc, err = c.GetDocument(context.Background(), "articles", "9")
	require.NoError(t, err)
	assert.Nil(t, doc)

	_, err = c.GetDocument(context.Background(), "missing", "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRealClient_Count(t *testing.T) {
	t.Parallel()

	_, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"GET|POST /articles/_count": reply(200, `{"count":5,"_shards":{"total":1,"successful":1}}`),
	})
	c := newTestClient(t, srv.URL)

	n, err := c.Count(context.Background(), "articles")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestRealClient_Search(t *testing.T) {
	t.Parallel()

	f, srv := newFakeCluster(t, map[string]http.HandlerFunc{
		"GET|POST /articles/_search": reply(200, `{
			"took": 3, "timed_out": false,
			"hits": {"total": {"value": 3, "relation": "eq"}, "max_score": 1.0, "hits": [
				{"_index": "articles", "_id": "2", "_score": 1.0, "_source": {"title": "Second", "priority": 2}}
			]},
			"aggregations": {"by_category": {"buckets": [{"key": "news", "doc_count": 2}]}}
		}`),
	})
	c := newTestClient(t, srv.URL)

	req := query.NewRequest().
		WithQuery(query.NewRangeGTE("priority", 2)).
		WithSize(3).
		WithTermsAggregation("by_category", "category", 10)

	res, err := c.Search(context.Background(), "articles", req)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Took)
	assert.Equal(t, int64(3), res.Hits.Total.Value)
	require.Len(t, res.Hits.Hits, 1)
	assert.Equal(t, "2", res.Hits.Hits[0].ID)
	require.Contains(t, res.Aggregations, "by_category")
	assert.Equal(t, int64(2), res.Aggregations["by_category"].Buckets[0].DocCount)

	body := f.body("POST /articles/_search")
	if body == nil {
		body = f.body("GET /articles/_search")
	}
	var sent map[string]any
	require.NoError(t, json.Unmarshal(body, &sent))
	assert.Equal(t, map[string]any{"priority": map[string]any{"gte": float64(2)}}, sent["query"].(map[string]any)["range"])
	assert.Equal(t, float64(3), sent["size"])
}
