package provisioning

import (
	"context"
	"fmt"

	"github.com/imamik/esprov/internal/platform/elastic"
	"golang.org/x/crypto/bcrypt"
)

// Options configures a Provisioner.
type Options struct {
	// HashPasswords sends a bcrypt password_hash instead of the plain
	// password. The cluster's password hashing algorithm must be bcrypt.
	HashPasswords bool
	// HashCost is the bcrypt cost; 0 means bcrypt.DefaultCost.
	HashCost int
	// SeedConcurrency bounds parallel document writes. Values below 2 seed
	// sequentially.
	SeedConcurrency int
	// Metrics, if set, receives reconcile and verification metrics.
	Metrics *Metrics
}

// Option is a functional option for Provisioner configuration.
type Option func(*Options)

// WithHashPasswords enables bcrypt password hashing with the given cost.
func WithHashPasswords(cost int) Option {
	return func(o *Options) {
		o.HashPasswords = true
		o.HashCost = cost
	}
}

// WithSeedConcurrency sets the number of documents written in parallel.
func WithSeedConcurrency(n int) Option {
	return func(o *Options) {
		o.SeedConcurrency = n
	}
}

// WithMetrics records metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// Provisioner reconciles resource specs against one cluster.
// It holds no per-run state and is safe for sequential reuse.
type Provisioner struct {
	api      elastic.API
	observer Observer
	opts     Options
}

// New creates a Provisioner. The cluster API carries its own connection
// settings and retry budget.
func New(api elastic.API, observer Observer, opts ...Option) *Provisioner {
	p := &Provisioner{api: api, observer: observer}
	for _, opt := range opts {
		opt(&p.opts)
	}
	return p
}

// Observer returns the observer the provisioner reports to.
func (p *Provisioner) Observer() Observer {
	return p.observer
}

// Health returns the cluster health. A red cluster is reported as an error
// wrapping ErrClusterRed together with the health it answered.
func (p *Provisioner) Health(ctx context.Context) (*elastic.Health, error) {
	h, err := p.api.Health(ctx)
	if err != nil {
		return nil, err
	}
	if h.Status == elastic.HealthRed {
		return h, fmt.Errorf("%w: cluster %q has %d unassigned shards", ErrClusterRed, h.ClusterName, h.UnassignedShards)
	}
	return h, nil
}

// GetDocument returns a document's source, or nil if it does not exist.
func (p *Provisioner) GetDocument(ctx context.Context, index, id string) (map[string]any, error) {
	return p.api.GetDocument(ctx, index, id)
}

// Count returns the number of documents in an index.
func (p *Provisioner) Count(ctx context.Context, index string) (int64, error) {
	return p.api.Count(ctx, index)
}

// Refresh makes recently written documents visible to search. It is
// attempted once; a failure is logged and returned for the caller to
// ignore or report.
func (p *Provisioner) Refresh(ctx context.Context, index string) error {
	if err := p.api.Refresh(ctx, index); err != nil {
		p.observer.Event(Event{
			Type:     EventResourceFailed,
			Phase:    phaseIndices,
			Resource: index,
			Message:  fmt.Sprintf("refresh failed, continuing: %v", err),
		})
		return err
	}
	return nil
}

// hashPassword returns the bcrypt hash of password.
func (p *Provisioner) hashPassword(password string) (string, error) {
	cost := p.opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
