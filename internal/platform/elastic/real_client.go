package elastic

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	jsoniter "github.com/json-iterator/go"

	"github.com/imamik/esprov/internal/platform/elastic/query"
	"github.com/imamik/esprov/internal/util/retry"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Connection holds the endpoint and credentials of a cluster.
type Connection struct {
	Addresses []string
	Username  string
	Password  string
	CACert    []byte
	Insecure  bool
}

// RetryHook is called before each backoff sleep.
type RetryHook func(op string, attempt int, delay time.Duration, err error)

// RealClient implements API using the official go-elasticsearch client.
type RealClient struct {
	es        *elasticsearch.Client
	timeouts  Timeouts
	retryHook RetryHook

	transport http.RoundTripper
	logger    elastictransport.Logger
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets the per-request timeout and retry budget.
func WithTimeouts(t Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithRetryHook registers a callback for retried calls.
func WithRetryHook(h RetryHook) ClientOption {
	return func(c *RealClient) {
		c.retryHook = h
	}
}

// WithTransportLogger logs every HTTP exchange through l.
func WithTransportLogger(l elastictransport.Logger) ClientOption {
	return func(c *RealClient) {
		c.logger = l
	}
}

// WithHTTPTransport replaces the HTTP round tripper (useful for testing).
func WithHTTPTransport(rt http.RoundTripper) ClientOption {
	return func(c *RealClient) {
		c.transport = rt
	}
}

// NewRealClient creates a RealClient. The go-elasticsearch built-in retry is
// disabled; RealClient retries on its own so that only transient failures
// are repeated.
func NewRealClient(conn Connection, opts ...ClientOption) (*RealClient, error) {
	c := &RealClient{timeouts: DefaultTimeouts()}
	for _, opt := range opts {
		opt(c)
	}

	if len(conn.Addresses) == 0 {
		return nil, fmt.Errorf("no cluster address configured")
	}

	transport := c.transport
	if transport == nil && conn.Insecure {
		t := http.DefaultTransport.(*http.Transport).Clone()
		// #nosec G402 -- opt-in for self-signed development clusters
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		transport = t
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    conn.Addresses,
		Username:     conn.Username,
		Password:     conn.Password,
		CACert:       conn.CACert,
		Transport:    transport,
		Logger:       c.logger,
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	c.es = es

	return c, nil
}

// exchange is a fully read response.
type exchange struct {
	status int
	body   []byte
}

func (x exchange) ok() bool {
	return x.status >= 200 && x.status < 300
}

// perform runs call with a per-attempt timeout and retries transient
// failures. Non-retryable HTTP answers are returned as an exchange without
// error so that each caller decides which statuses it accepts.
func (c *RealClient) perform(ctx context.Context, op string, call func(ctx context.Context) (*esapi.Response, error)) (exchange, error) {
	var result exchange

	err := retry.WithExponentialBackoff(ctx, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeouts.Request)
		defer cancel()

		res, err := call(attemptCtx)
		if err != nil {
			return newConnectionError(op, err)
		}
		defer func() {
			_ = res.Body.Close()
		}()

		body, err := io.ReadAll(res.Body)
		if err != nil {
			return newConnectionError(op, fmt.Errorf("read response: %w", err))
		}

		if kindForStatus(res.StatusCode, "") == KindUnavailable {
			return newStatusError(op, res.StatusCode, body)
		}

		result = exchange{status: res.StatusCode, body: body}
		return nil
	},
		retry.WithMaxAttempts(c.timeouts.MaxAttempts),
		retry.WithInitialDelay(c.timeouts.InitialDelay),
		retry.WithMaxDelay(c.timeouts.MaxDelay),
		retry.WithOnRetry(func(attempt int, delay time.Duration, err error) {
			if c.retryHook != nil {
				c.retryHook(op, attempt, delay, err)
			}
		}),
	)

	return result, err
}

// expect returns an error for any non-2xx exchange.
func expect(op string, x exchange) error {
	if x.ok() {
		return nil
	}
	return newStatusError(op, x.status, x.body)
}

// Health implements API.
func (c *RealClient) Health(ctx context.Context) (*Health, error) {
	const op = "cluster health"
	x, err := c.perform(ctx, op, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	})
	if err != nil {
		return nil, err
	}
	if err := expect(op, x); err != nil {
		return nil, err
	}

	var h Health
	if err := codec.Unmarshal(x.body, &h); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return &h, nil
}

// GetUser implements UserManager.
func (c *RealClient) GetUser(ctx context.Context, name string) (*User, error) {
	op := "get user " + name
	x, err := c.perform(ctx, op, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Security.GetUser(
			c.es.Security.GetUser.WithContext(ctx),
			c.es.Security.GetUser.WithUsername(name),
		)
	})
	if err != nil {
		return nil, err
	}
	if x.status == http.StatusNotFound {
		return nil, nil
	}
	if err := expect(op, x); err != nil {
		return nil, err
	}

	var users map[string]User
	if err := codec.Unmarshal(x.body, &users); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	u, ok := users[name]
	if !ok {
		return nil, nil
	}
	if u.Username == "" {
		u.Username = name
	}
	return &u, nil
}

// PutUser implements UserManager.
func (c *RealClient) PutUser(ctx context.Context, name string, req PutUserRequest) (bool, error) {
	op := "put user " + name
	body, err := codec.Marshal(req)
	if err != nil {
		return false, fmt.Errorf("%s: encode request: %w", op, err)
	}

	x, err := c.perform(ctx, op, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Security.PutUser(name, bytes.NewReader(body), c.es.Security.PutUser.WithContext(ctx))
	})
	if err != nil {
		return false, err
	}
	if err := expect(op, x); err != nil {
		return false, err
	}

	var res struct {
		Created bool `json:"created"`
	}
	if err := codec.Unmarshal(x.body, &res); err != nil {
		return false, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return res.Created, nil
}

// Authenticate implements UserManager. The request carries the given
// credentials instead of the client's own.
func (c *RealClient) Authenticate(ctx context.Context, name, password string) (bool, error) {
	op := "authenticate " + name
	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(name+":"+password))

	x, err := c.perform(ctx, op, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Security.Authenticate(
			c.es.Security.Authenticate.WithContext(ctx),
			c.es.Security.Authenticate.WithHeader(map[string]string{"Authorization": auth}),
		)
	})
	if err != nil {
		return false, err
	}
	if x.status == http.StatusUnauthorized {
		return false, nil
	}
	if err := expect(op, x); err != nil {
		return false, err
	}
	return true, nil
}

// IndexExists implements IndexManager.
func (c *RealClient) IndexExists(ctx context.Context, name string) (bool, error) {
	op := "check index " + name
	x, err := c.perform(ctx, op, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Indices.Exists([]string{name}, c.es.Indices.Exists.WithContext(ctx))
	})
	if err != nil {
		return false, err
	}

	switch {
	case x.ok():
		return true, nil
	case x.status == http.StatusNotFound:
		return false, nil
	default:
		return false, newStatusError(op, x.status, x.body)
	}
}

// CreateIndex implements IndexManager.
func (c *RealClient) CreateIndex(ctx context.Context, name string, def IndexDefinition) error {
	op := "create index " + name
	body, err := codec.Marshal(def)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	x, err := c.perform(ctx, op, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Indices.Create(name,
			c.es.Indices.Create.WithContext(ctx),
			c.es.Indices.Create.WithBody(bytes.NewReader(body)),
		)
	})
	if err != nil {
		return err
	}
	return expect(op, x)
}

// DeleteIndex implements IndexManager.
func (c *RealClient) DeleteIndex(ctx context.Context, name string) error {
	op := "delete index " + name
	x, err := c.perform(ctx, op, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Indices.Delete([]string{name}, c.es.Indices.Delete.WithContext(ctx))
	})
	if err != nil {
		return err
	}
	return expect(op, x)
}

// GetMapping implements IndexManager.
func (c *RealClient) GetMapping(ctx context.Context, name string) (Properties, error) {
	op := "get mapping " + name
	x, err := c.perform(ctx, op, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Indices.GetMapping(
			c.es.Indices.GetMapping.WithContext(ctx),
			c.es.Indices.GetMapping.WithIndex(name),
		)
	})
	if err != nil {
		return nil, err
	}
	if err := expect(op, x); err != nil {
		return nil, err
	}

	var res map[string]struct {
		Mappings IndexMappings `json:"mappings"`
	}
	if err := codec.Unmarshal(x.body, &res); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	// the answer is keyed by the concrete index name, which differs from
	// name when name is an alias
	for _, m := range res {
		return m.Mappings.Properties, nil
	}
	return nil, nil
}

// Refresh implements IndexManager. It is attempted once: a failed refresh
// is not worth a retry because the cluster refreshes periodically anyway.
func (c *RealClient) Refresh(ctx context.Context, name string) error {
	op := "refresh index " + name
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Request)
	defer cancel()

	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithContext(ctx),
		c.es.Indices.Refresh.WithIndex(name),
	)
	if err != nil {
		return newConnectionError(op, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return newConnectionError(op, fmt.Errorf("read response: %w", err))
	}
	return expect(op, exchange{status: res.StatusCode, body: body})
}

// IndexDocument implements DocumentManager.
func (c *RealClient) IndexDocument(ctx context.Context, index, id string, fields map[string]any) (DocumentResult, error) {
	op := fmt.Sprintf("index document %s/%s", index, id)
	body, err := codec.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("%s: encode document: %w", op, err)
	}

	x, err := c.perform(ctx, op, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Index(index, bytes.NewReader(body),
			c.es.Index.WithContext(ctx),
			c.es.Index.WithDocumentID(id),
		)
	})
	if err != nil {
		return "", err
	}
	if err := expect(op, x); err != nil {
		return "", err
	}

	var res struct {
		Result DocumentResult `json:"result"`
	}
	if err := codec.Unmarshal(x.body, &res); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, err)
	}
	return res.Result, nil
}

// GetDocument implements DocumentManager.
func (c *RealClient) GetDocument(ctx context.Context, index, id string) (map[string]any, error) {
	op := fmt.Sprintf("get document %s/%s", index, id)
	x, err := c.perform(ctx, op, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Get(index, id, c.es.Get.WithContext(ctx))
	})
	if err != nil {
		return nil, err
	}

	var res struct {
		Found  *bool          `json:"found"`
		Source map[string]any `json:"_source"`
	}
	if x.status == http.StatusNotFound {
		// a missing index also answers 404, but without "found"
		if codec.Unmarshal(x.body, &res) == nil && res.Found != nil && !*res.Found {
			return nil, nil
		}
		return nil, newStatusError(op, x.status, x.body)
	}
	if err := expect(op, x); err != nil {
		return nil, err
	}
	if err := codec.Unmarshal(x.body, &res); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	if res.Found != nil && !*res.Found {
		return nil, nil
	}
	return res.Source, nil
}

// Count implements DocumentManager.
func (c *RealClient) Count(ctx context.Context, index string) (int64, error) {
	op := "count " + index
	x, err := c.perform(ctx, op, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Count(c.es.Count.WithContext(ctx), c.es.Count.WithIndex(index))
	})
	if err != nil {
		return 0, err
	}
	if err := expect(op, x); err != nil {
		return 0, err
	}

	var res struct {
		Count int64 `json:"count"`
	}
	if err := codec.Unmarshal(x.body, &res); err != nil {
		return 0, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return res.Count, nil
}

// Search implements Searcher.
func (c *RealClient) Search(ctx context.Context, index string, req *query.Request) (*query.Response, error) {
	op := "search " + index
	body, err := codec.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}

	x, err := c.perform(ctx, op, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Search(
			c.es.Search.WithContext(ctx),
			c.es.Search.WithIndex(index),
			c.es.Search.WithBody(bytes.NewReader(body)),
		)
	})
	if err != nil {
		return nil, err
	}
	if err := expect(op, x); err != nil {
		return nil, err
	}

	res, err := query.ParseResponse(x.body)
	if err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return res, nil
}
